package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

// BenchmarkRepository implements contracts.BenchmarkRepository on Postgres.
type BenchmarkRepository struct {
	pool *pgxpool.Pool
}

// NewBenchmarkRepository creates a new benchmark repository.
func NewBenchmarkRepository(pool *pgxpool.Pool) *BenchmarkRepository {
	return &BenchmarkRepository{pool: pool}
}

// SaveBatch upserts index closes keyed by (index_name, trade_date).
func (r *BenchmarkRepository) SaveBatch(ctx context.Context, bars []*contracts.BenchmarkBar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO benchmark_closes (index_name, trade_date, close_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (index_name, trade_date) DO UPDATE SET
			close_price = EXCLUDED.close_price
	`

	for _, bar := range bars {
		if _, err := r.pool.Exec(ctx, query, bar.IndexName, bar.TradeDate, bar.Close); err != nil {
			return err
		}
	}
	return nil
}

// History returns up to limit closes for an index at or before date,
// most recent first.
func (r *BenchmarkRepository) History(ctx context.Context, indexName string, date time.Time, limit int) ([]*contracts.BenchmarkBar, error) {
	query := `
		SELECT index_name, trade_date, close_price
		FROM benchmark_closes
		WHERE index_name = $1 AND trade_date <= $2
		ORDER BY trade_date DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, indexName, date, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []*contracts.BenchmarkBar
	for rows.Next() {
		var b contracts.BenchmarkBar
		if err := rows.Scan(&b.IndexName, &b.TradeDate, &b.Close); err != nil {
			return nil, err
		}
		bars = append(bars, &b)
	}
	return bars, rows.Err()
}
