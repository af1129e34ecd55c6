package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

// RollingStatsRepository implements contracts.RollingStatsRepository on Postgres.
type RollingStatsRepository struct {
	pool *pgxpool.Pool
}

// NewRollingStatsRepository creates a new rolling-stats repository.
func NewRollingStatsRepository(pool *pgxpool.Pool) *RollingStatsRepository {
	return &RollingStatsRepository{pool: pool}
}

// SaveBatch upserts stats keyed by (symbol, trade_date).
func (r *RollingStatsRepository) SaveBatch(ctx context.Context, stats []*contracts.RollingStats) error {
	if len(stats) == 0 {
		return nil
	}

	query := `
		INSERT INTO rolling_stats (
			symbol, trade_date,
			avg_volume_30d, vol_ratio,
			price_change_30d, price_change_60d,
			upper_circuit_streak, week52_high, week52_low
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			avg_volume_30d = EXCLUDED.avg_volume_30d,
			vol_ratio = EXCLUDED.vol_ratio,
			price_change_30d = EXCLUDED.price_change_30d,
			price_change_60d = EXCLUDED.price_change_60d,
			upper_circuit_streak = EXCLUDED.upper_circuit_streak,
			week52_high = EXCLUDED.week52_high,
			week52_low = EXCLUDED.week52_low
	`

	for _, s := range stats {
		if _, err := r.pool.Exec(ctx, query,
			s.Symbol, s.TradeDate,
			s.AvgVolume30d, s.VolRatio,
			s.PriceChange30d, s.PriceChange60d,
			s.UpperCircuitStreak, s.Week52High, s.Week52Low,
		); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves stats for a symbol on a date.
func (r *RollingStatsRepository) Get(ctx context.Context, symbol string, date time.Time) (*contracts.RollingStats, error) {
	query := `
		SELECT symbol, trade_date,
		       avg_volume_30d, vol_ratio,
		       price_change_30d, price_change_60d,
		       upper_circuit_streak, week52_high, week52_low
		FROM rolling_stats
		WHERE symbol = $1 AND trade_date = $2
	`

	var s contracts.RollingStats
	err := r.pool.QueryRow(ctx, query, symbol, date).Scan(
		&s.Symbol, &s.TradeDate,
		&s.AvgVolume30d, &s.VolRatio,
		&s.PriceChange30d, &s.PriceChange60d,
		&s.UpperCircuitStreak, &s.Week52High, &s.Week52Low,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
