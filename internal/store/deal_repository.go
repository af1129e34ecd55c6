package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

// DealRepository implements contracts.DealRepository on Postgres.
type DealRepository struct {
	pool *pgxpool.Pool
}

// NewDealRepository creates a new deal repository.
func NewDealRepository(pool *pgxpool.Pool) *DealRepository {
	return &DealRepository{pool: pool}
}

// SaveBatch upserts deals keyed by (symbol, trade_date, client_name, buy_sell).
func (r *DealRepository) SaveBatch(ctx context.Context, deals []*contracts.BulkDeal) error {
	if len(deals) == 0 {
		return nil
	}

	query := `
		INSERT INTO bulk_deals (symbol, trade_date, client_name, buy_sell, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol, trade_date, client_name, buy_sell) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			price = EXCLUDED.price
	`

	for _, d := range deals {
		if _, err := r.pool.Exec(ctx, query,
			d.Symbol, d.TradeDate, d.ClientName, d.BuySell, d.Quantity, d.Price,
		); err != nil {
			return err
		}
	}
	return nil
}

// Recent returns deals for a symbol within (from, to].
func (r *DealRepository) Recent(ctx context.Context, symbol string, from, to time.Time) ([]*contracts.BulkDeal, error) {
	query := `
		SELECT symbol, trade_date, client_name, buy_sell, quantity, price
		FROM bulk_deals
		WHERE symbol = $1 AND trade_date > $2 AND trade_date <= $3
		ORDER BY trade_date DESC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []*contracts.BulkDeal
	for rows.Next() {
		var d contracts.BulkDeal
		if err := rows.Scan(&d.Symbol, &d.TradeDate, &d.ClientName, &d.BuySell, &d.Quantity, &d.Price); err != nil {
			return nil, err
		}
		deals = append(deals, &d)
	}
	return deals, rows.Err()
}

// CountSince reports how many deal rows exist store-wide after from.
// Zero over a long window means the feed has gone dark.
func (r *DealRepository) CountSince(ctx context.Context, from time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM bulk_deals WHERE trade_date > $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, from).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
