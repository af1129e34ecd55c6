package contracts

import (
	"context"
	"time"
)

// BarRepository stores daily per-security bars.
type BarRepository interface {
	// SaveBatch upserts bars keyed by (symbol, trade_date).
	SaveBatch(ctx context.Context, bars []*DailyBar) error
	// History returns up to limit bars for a symbol at or before date,
	// most recent first.
	History(ctx context.Context, symbol string, date time.Time, limit int) ([]*DailyBar, error)
	// SymbolsOn returns every symbol with a bar on the given date.
	SymbolsOn(ctx context.Context, date time.Time) ([]string, error)
	// LatestDate returns the most recent trade date in the store.
	LatestDate(ctx context.Context) (time.Time, error)
	// CountBefore returns the number of trading days of history a
	// symbol has at or before date.
	CountBefore(ctx context.Context, symbol string, date time.Time) (int, error)
}

// BenchmarkRepository stores reference index closes.
type BenchmarkRepository interface {
	SaveBatch(ctx context.Context, bars []*BenchmarkBar) error
	// History returns up to limit closes for an index at or before
	// date, most recent first.
	History(ctx context.Context, indexName string, date time.Time, limit int) ([]*BenchmarkBar, error)
}

// EventRepository stores keyword-matched corporate announcements.
type EventRepository interface {
	SaveBatch(ctx context.Context, events []*CorporateEvent) error
	// Recent returns events for a symbol within (from, to].
	Recent(ctx context.Context, symbol string, from, to time.Time) ([]*CorporateEvent, error)
}

// DealRepository stores bulk/block deal records.
type DealRepository interface {
	SaveBatch(ctx context.Context, deals []*BulkDeal) error
	Recent(ctx context.Context, symbol string, from, to time.Time) ([]*BulkDeal, error)
	// CountSince reports how many deal rows exist store-wide after
	// from; zero for a long window means the feed is dark.
	CountSince(ctx context.Context, from time.Time) (int, error)
}

// RollingStatsRepository stores derived trailing-window metrics.
type RollingStatsRepository interface {
	SaveBatch(ctx context.Context, stats []*RollingStats) error
	Get(ctx context.Context, symbol string, date time.Time) (*RollingStats, error)
}

// ScoreRepository stores the daily scoring output.
type ScoreRepository interface {
	Save(ctx context.Context, record *ScoreRecord) error
	// TopN returns the highest-scoring records for a date.
	TopN(ctx context.Context, date time.Time, n int) ([]*ScoreRecord, error)
	// History returns a symbol's score records in [from, to], oldest first.
	History(ctx context.Context, symbol string, from, to time.Time) ([]*ScoreRecord, error)
}
