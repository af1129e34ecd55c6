package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var ingestDate string

// ingestCmd pulls one trading day's files into the store.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest one trading day's exchange files",
	Long: `Pulls the full-market bhavcopy, index closes, corporate
announcements and bulk deals for a date, then refreshes rolling stats.

Without --date the most recent trading day is used, walking back past
unpublished days (holidays).

Example:
  go run ./cmd/tracker ingest
  go run ./cmd/tracker ingest --date 2026-08-28`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "trading date (YYYY-MM-DD), default most recent")
}

func runIngest(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	svc := app.ingestService()
	start := time.Now()

	var summary *ingestSummary
	if ingestDate == "" {
		s, err := svc.IngestLatest(ctx, time.Now())
		if err != nil {
			return err
		}
		summary = &ingestSummary{s.Date, s.Bars, s.Benchmarks, s.Events, s.Deals, s.Failures}
	} else {
		date, err := resolveRunDate(ingestDate)
		if err != nil {
			return err
		}
		s, err := svc.IngestDate(ctx, date)
		if err != nil {
			return err
		}
		summary = &ingestSummary{s.Date, s.Bars, s.Benchmarks, s.Events, s.Deals, s.Failures}
	}

	fmt.Printf("Ingested %s in %.1fs\n", summary.date.Format("2006-01-02"), time.Since(start).Seconds())
	fmt.Printf("  bars: %d  benchmarks: %d  events: %d  deals: %d\n",
		summary.bars, summary.benchmarks, summary.events, summary.deals)
	if len(summary.failures) > 0 {
		fmt.Printf("  unavailable endpoints: %s\n", strings.Join(summary.failures, ", "))
	}
	return nil
}

type ingestSummary struct {
	date       time.Time
	bars       int
	benchmarks int
	events     int
	deals      int
	failures   []string
}
