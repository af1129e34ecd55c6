// Package ingest orchestrates the daily pull: bhavcopy, benchmark
// index closes, corporate announcements and bulk deals, each endpoint
// isolated so one dead source never sinks the run.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/external/nse"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/rolling"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/logger"
)

// scoredSeries is the only series worth scoring; SME, trade-for-trade
// and debt series have different microstructure.
const scoredSeries = "EQ"

// walkBackDays bounds how far IngestLatest steps back looking for a
// published bhavcopy when the wanted date turns out to be a holiday.
const walkBackDays = 5

// rollingHistoryFetch bounds the per-symbol history load when deriving
// rolling stats after a bar ingest.
const rollingHistoryFetch = 300

// Service pulls one date's data from the exchange into the stores.
type Service struct {
	client *nse.Client
	logger *logger.Logger

	bars       contracts.BarRepository
	benchmarks contracts.BenchmarkRepository
	events     contracts.EventRepository
	deals      contracts.DealRepository
	stats      contracts.RollingStatsRepository
}

// NewService wires an ingest service.
func NewService(
	client *nse.Client,
	log *logger.Logger,
	bars contracts.BarRepository,
	benchmarks contracts.BenchmarkRepository,
	events contracts.EventRepository,
	deals contracts.DealRepository,
	stats contracts.RollingStatsRepository,
) *Service {
	return &Service{
		client:     client,
		logger:     log,
		bars:       bars,
		benchmarks: benchmarks,
		events:     events,
		deals:      deals,
		stats:      stats,
	}
}

// Summary reports what one ingest run landed, per endpoint.
type Summary struct {
	Date       time.Time
	Bars       int
	Benchmarks int
	Events     int
	Deals      int

	// Failures lists endpoints that stayed unavailable after retries.
	Failures []string
}

// IngestLatest resolves the most recent trading day and ingests it,
// walking back up to walkBackDays when the exchange has not published
// for the wanted date (surprise holiday, late file).
func (s *Service) IngestLatest(ctx context.Context, now time.Time) (*Summary, error) {
	date := MostRecentTradingDay(now)

	for i := 0; i <= walkBackDays; i++ {
		summary, err := s.IngestDate(ctx, date)
		if err == nil {
			return summary, nil
		}
		if !errors.Is(err, nse.ErrSourceUnavailable) {
			return nil, err
		}
		s.logger.WithField("date", date.Format("2006-01-02")).Warn("No bhavcopy published, stepping back one day")
		date = MostRecentTradingDay(date.AddDate(0, 0, -1))
	}
	return nil, fmt.Errorf("no bhavcopy within %d days of %s: %w",
		walkBackDays, now.Format("2006-01-02"), nse.ErrSourceUnavailable)
}

// IngestDate pulls every endpoint for one date. The bhavcopy is the
// backbone: if it is unavailable the whole date fails so the caller
// can walk back. The ancillary endpoints are each allowed to fail
// independently and land in Summary.Failures instead.
func (s *Service) IngestDate(ctx context.Context, date time.Time) (*Summary, error) {
	summary := &Summary{Date: date}

	bars, err := s.ingestBars(ctx, date)
	if err != nil {
		return nil, err
	}
	summary.Bars = bars

	if n, err := s.ingestBenchmarks(ctx, date); err != nil {
		summary.Failures = append(summary.Failures, "indices")
		s.logger.WithError(err).Warn("Index closes unavailable for date")
	} else {
		summary.Benchmarks = n
	}

	if n, err := s.ingestAnnouncements(ctx, date); err != nil {
		summary.Failures = append(summary.Failures, "announcements")
		s.logger.WithError(err).Warn("Announcements unavailable for date")
	} else {
		summary.Events = n
	}

	if n, err := s.ingestDeals(ctx, date); err != nil {
		summary.Failures = append(summary.Failures, "bulk_deals")
		s.logger.WithError(err).Warn("Bulk deals unavailable for date")
	} else {
		summary.Deals = n
	}

	s.logger.WithFields(map[string]interface{}{
		"date":       date.Format("2006-01-02"),
		"bars":       summary.Bars,
		"benchmarks": summary.Benchmarks,
		"events":     summary.Events,
		"deals":      summary.Deals,
		"failures":   summary.Failures,
	}).Info("Ingest run finished")

	return summary, nil
}

// ingestBars saves the date's equity bars, then refreshes rolling
// stats for every symbol that got a new bar.
func (s *Service) ingestBars(ctx context.Context, date time.Time) (int, error) {
	all, err := s.client.FetchDailyBars(ctx, date)
	if err != nil {
		return 0, err
	}

	var bars []*contracts.DailyBar
	for _, bar := range all {
		if bar.Series == scoredSeries {
			bars = append(bars, bar)
		}
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("bhavcopy for %s has no %s rows: %w",
			date.Format("2006-01-02"), scoredSeries, nse.ErrSourceUnavailable)
	}

	if err := s.bars.SaveBatch(ctx, bars); err != nil {
		return 0, fmt.Errorf("save bars: %w", err)
	}

	if err := s.refreshRollingStats(ctx, bars, date); err != nil {
		return 0, err
	}
	return len(bars), nil
}

func (s *Service) refreshRollingStats(ctx context.Context, bars []*contracts.DailyBar, date time.Time) error {
	stats := make([]*contracts.RollingStats, 0, len(bars))
	for _, bar := range bars {
		history, err := s.bars.History(ctx, bar.Symbol, date, rollingHistoryFetch)
		if err != nil {
			return fmt.Errorf("history for %s: %w", bar.Symbol, err)
		}
		if st := rolling.Compute(history); st != nil {
			stats = append(stats, st)
		}
	}
	if err := s.stats.SaveBatch(ctx, stats); err != nil {
		return fmt.Errorf("save rolling stats: %w", err)
	}
	return nil
}

func (s *Service) ingestBenchmarks(ctx context.Context, date time.Time) (int, error) {
	closes, err := s.client.FetchIndexCloses(ctx, date)
	if err != nil {
		return 0, err
	}
	if err := s.benchmarks.SaveBatch(ctx, closes); err != nil {
		return 0, fmt.Errorf("save index closes: %w", err)
	}
	return len(closes), nil
}

func (s *Service) ingestAnnouncements(ctx context.Context, date time.Time) (int, error) {
	events, err := s.client.FetchAnnouncements(ctx, date)
	if err != nil {
		return 0, err
	}
	if err := s.events.SaveBatch(ctx, events); err != nil {
		return 0, fmt.Errorf("save events: %w", err)
	}
	return len(events), nil
}

func (s *Service) ingestDeals(ctx context.Context, date time.Time) (int, error) {
	deals, err := s.client.FetchBulkDeals(ctx, date)
	if err != nil {
		return 0, err
	}
	if err := s.deals.SaveBatch(ctx, deals); err != nil {
		return 0, fmt.Errorf("save deals: %w", err)
	}
	return len(deals), nil
}

// MostRecentTradingDay walks a date back off weekends. Exchange
// holidays are handled by the caller's walk-back, not a calendar.
func MostRecentTradingDay(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
