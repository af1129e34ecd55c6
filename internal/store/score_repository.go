package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

// ScoreRepository implements contracts.ScoreRepository on Postgres.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// Save upserts a score record keyed by (symbol, eval_date).
func (r *ScoreRepository) Save(ctx context.Context, rec *contracts.ScoreRecord) error {
	query := `
		INSERT INTO score_records (
			symbol, eval_date, total_score,
			s_volume_consistency, s_low_delivery, s_steady_grind,
			s_price_detachment, s_velocity, s_micro_cap, s_reversal,
			phase, signals_triggered, deal_feed_missing
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (symbol, eval_date) DO UPDATE SET
			total_score = EXCLUDED.total_score,
			s_volume_consistency = EXCLUDED.s_volume_consistency,
			s_low_delivery = EXCLUDED.s_low_delivery,
			s_steady_grind = EXCLUDED.s_steady_grind,
			s_price_detachment = EXCLUDED.s_price_detachment,
			s_velocity = EXCLUDED.s_velocity,
			s_micro_cap = EXCLUDED.s_micro_cap,
			s_reversal = EXCLUDED.s_reversal,
			phase = EXCLUDED.phase,
			signals_triggered = EXCLUDED.signals_triggered,
			deal_feed_missing = EXCLUDED.deal_feed_missing
	`

	_, err := r.pool.Exec(ctx, query,
		rec.Symbol, rec.EvalDate, rec.TotalScore,
		rec.Signals[0], rec.Signals[1], rec.Signals[2],
		rec.Signals[3], rec.Signals[4], rec.Signals[5], rec.Signals[6],
		string(rec.Phase), rec.TriggeredString(), rec.DealFeedMissing,
	)
	return err
}

const scoreColumns = `
	symbol, eval_date, total_score,
	s_volume_consistency, s_low_delivery, s_steady_grind,
	s_price_detachment, s_velocity, s_micro_cap, s_reversal,
	phase, signals_triggered, deal_feed_missing
`

func scanScore(row interface{ Scan(dest ...any) error }) (*contracts.ScoreRecord, error) {
	var rec contracts.ScoreRecord
	var phase, triggered string
	if err := row.Scan(
		&rec.Symbol, &rec.EvalDate, &rec.TotalScore,
		&rec.Signals[0], &rec.Signals[1], &rec.Signals[2],
		&rec.Signals[3], &rec.Signals[4], &rec.Signals[5], &rec.Signals[6],
		&phase, &triggered, &rec.DealFeedMissing,
	); err != nil {
		return nil, err
	}
	rec.Phase = contracts.Phase(phase)
	rec.SignalsTriggered = contracts.ParseTriggered(triggered)
	return &rec, nil
}

// TopN returns the highest-scoring records for a date.
func (r *ScoreRepository) TopN(ctx context.Context, date time.Time, n int) ([]*contracts.ScoreRecord, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM score_records
		WHERE eval_date = $1
		ORDER BY total_score DESC, symbol ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, date, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*contracts.ScoreRecord
	for rows.Next() {
		rec, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// History returns a symbol's score records in [from, to], oldest first.
func (r *ScoreRepository) History(ctx context.Context, symbol string, from, to time.Time) ([]*contracts.ScoreRecord, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM score_records
		WHERE symbol = $1 AND eval_date BETWEEN $2 AND $3
		ORDER BY eval_date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*contracts.ScoreRecord
	for rows.Next() {
		rec, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
