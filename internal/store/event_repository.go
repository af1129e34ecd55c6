package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

// EventRepository implements contracts.EventRepository on Postgres.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new event repository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// SaveBatch upserts events keyed by (symbol, event_date, event_type).
// The same announcement re-ingested on a later run must not duplicate.
func (r *EventRepository) SaveBatch(ctx context.Context, events []*contracts.CorporateEvent) error {
	if len(events) == 0 {
		return nil
	}

	query := `
		INSERT INTO corporate_events (symbol, event_date, event_type, description, source)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol, event_date, event_type) DO UPDATE SET
			description = EXCLUDED.description,
			source = EXCLUDED.source
	`

	for _, ev := range events {
		if _, err := r.pool.Exec(ctx, query,
			ev.Symbol, ev.EventDate, ev.EventType, ev.Description, ev.Source,
		); err != nil {
			return err
		}
	}
	return nil
}

// Recent returns events for a symbol within (from, to].
func (r *EventRepository) Recent(ctx context.Context, symbol string, from, to time.Time) ([]*contracts.CorporateEvent, error) {
	query := `
		SELECT symbol, event_date, event_type, description, source
		FROM corporate_events
		WHERE symbol = $1 AND event_date > $2 AND event_date <= $3
		ORDER BY event_date DESC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*contracts.CorporateEvent
	for rows.Next() {
		var ev contracts.CorporateEvent
		if err := rows.Scan(&ev.Symbol, &ev.EventDate, &ev.EventType, &ev.Description, &ev.Source); err != nil {
			return nil, err
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}
