package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	scoreDate string
	scoreTopN int
)

// scoreCmd runs the evaluation pipeline for one date.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score the universe for one evaluation date",
	Long: `Runs the full evaluation pipeline over every security with an
ingested bar on the date: noise filter, seven signals, composite score
and phase. Writes one ScoreRecord per eligible security and prints the
top of the board.

Example:
  go run ./cmd/tracker score
  go run ./cmd/tracker score --date 2026-08-28 --top 30`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVar(&scoreDate, "date", "", "evaluation date (YYYY-MM-DD), default most recent")
	scoreCmd.Flags().IntVar(&scoreTopN, "top", 20, "how many top scorers to print")
}

func runScore(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	date, err := resolveRunDate(scoreDate)
	if err != nil {
		return err
	}

	policy, err := app.policy()
	if err != nil {
		return err
	}

	ctx := context.Background()
	start := time.Now()

	summary, err := app.engine(policy).ScoreDate(ctx, date)
	if err != nil {
		return err
	}

	fmt.Printf("Scored %s in %.1fs\n", date.Format("2006-01-02"), time.Since(start).Seconds())
	fmt.Printf("  universe: %d  scored: %d  errors: %d\n", summary.Universe, summary.Scored, summary.Errors)
	for reason, count := range summary.Skipped {
		fmt.Printf("  skipped %-24s %d\n", string(reason)+":", count)
	}
	if summary.DealFeedMissing {
		fmt.Println("  note: bulk-deal feed dark, reversal signal off, scores understated")
	}

	records, err := app.scores.TopN(ctx, date, scoreTopN)
	if err != nil {
		return fmt.Errorf("load top scores: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	fmt.Printf("\n%-12s %7s %-13s %s\n", "SYMBOL", "SCORE", "PHASE", "SIGNALS")
	for _, rec := range records {
		fmt.Printf("%-12s %7.2f %-13s %s\n",
			rec.Symbol, rec.TotalScore, rec.Phase, strings.Join(rec.SignalsTriggered, ","))
	}
	return nil
}
