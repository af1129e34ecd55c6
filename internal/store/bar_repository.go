package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

// BarRepository implements contracts.BarRepository on Postgres.
type BarRepository struct {
	pool *pgxpool.Pool
}

// NewBarRepository creates a new bar repository.
func NewBarRepository(pool *pgxpool.Pool) *BarRepository {
	return &BarRepository{pool: pool}
}

// Save upserts a single bar keyed by (symbol, trade_date).
func (r *BarRepository) Save(ctx context.Context, bar *contracts.DailyBar) error {
	query := `
		INSERT INTO daily_bars (
			symbol, series, trade_date,
			open_price, high_price, low_price, close_price, prev_close,
			pct_change, total_volume, delivered_volume, delivered_pct, trades
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			series = EXCLUDED.series,
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			prev_close = EXCLUDED.prev_close,
			pct_change = EXCLUDED.pct_change,
			total_volume = EXCLUDED.total_volume,
			delivered_volume = EXCLUDED.delivered_volume,
			delivered_pct = EXCLUDED.delivered_pct,
			trades = EXCLUDED.trades
	`

	_, err := r.pool.Exec(ctx, query,
		bar.Symbol, bar.Series, bar.TradeDate,
		bar.Open, bar.High, bar.Low, bar.Close, bar.PrevClose,
		bar.PctChange, bar.TotalVolume, bar.DeliveredVolume, bar.DeliveredPct, bar.Trades,
	)
	return err
}

// SaveBatch upserts multiple bars.
func (r *BarRepository) SaveBatch(ctx context.Context, bars []*contracts.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}

	for _, bar := range bars {
		if err := r.Save(ctx, bar); err != nil {
			return err
		}
	}
	return nil
}

// History returns up to limit bars for a symbol at or before date,
// most recent first.
func (r *BarRepository) History(ctx context.Context, symbol string, date time.Time, limit int) ([]*contracts.DailyBar, error) {
	query := `
		SELECT symbol, series, trade_date,
		       open_price, high_price, low_price, close_price, prev_close,
		       pct_change, total_volume, delivered_volume, delivered_pct, trades
		FROM daily_bars
		WHERE symbol = $1 AND trade_date <= $2
		ORDER BY trade_date DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, symbol, date, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []*contracts.DailyBar
	for rows.Next() {
		var b contracts.DailyBar
		if err := rows.Scan(
			&b.Symbol, &b.Series, &b.TradeDate,
			&b.Open, &b.High, &b.Low, &b.Close, &b.PrevClose,
			&b.PctChange, &b.TotalVolume, &b.DeliveredVolume, &b.DeliveredPct, &b.Trades,
		); err != nil {
			return nil, err
		}
		bars = append(bars, &b)
	}
	return bars, rows.Err()
}

// SymbolsOn returns every symbol with a bar on the given date.
func (r *BarRepository) SymbolsOn(ctx context.Context, date time.Time) ([]string, error) {
	query := `
		SELECT symbol
		FROM daily_bars
		WHERE trade_date = $1
		ORDER BY symbol
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// LatestDate returns the most recent trade date in the store.
func (r *BarRepository) LatestDate(ctx context.Context) (time.Time, error) {
	query := `SELECT MAX(trade_date) FROM daily_bars`

	var latest *time.Time
	if err := r.pool.QueryRow(ctx, query).Scan(&latest); err != nil {
		return time.Time{}, err
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return *latest, nil
}

// CountBefore returns how many trading days of history a symbol has at
// or before date.
func (r *BarRepository) CountBefore(ctx context.Context, symbol string, date time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM daily_bars
		WHERE symbol = $1 AND trade_date <= $2
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, symbol, date).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
