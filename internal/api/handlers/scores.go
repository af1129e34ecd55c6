package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/logger"
)

// ScoreHandler serves score store reads.
type ScoreHandler struct {
	scores contracts.ScoreRepository
	bars   contracts.BarRepository
	logger *logger.Logger
}

// NewScoreHandler creates a score handler.
func NewScoreHandler(scores contracts.ScoreRepository, bars contracts.BarRepository, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{scores: scores, bars: bars, logger: log}
}

// scoreItem is the wire shape of one score row.
type scoreItem struct {
	Symbol           string    `json:"symbol"`
	EvalDate         string    `json:"eval_date"`
	TotalScore       float64   `json:"total_score"`
	Signals          []float64 `json:"signals"`
	Phase            string    `json:"phase"`
	SignalsTriggered []string  `json:"signals_triggered"`
	DealFeedMissing  bool      `json:"deal_feed_missing"`
}

func toScoreItem(rec *contracts.ScoreRecord) scoreItem {
	return scoreItem{
		Symbol:           rec.Symbol,
		EvalDate:         rec.EvalDate.Format("2006-01-02"),
		TotalScore:       rec.TotalScore,
		Signals:          rec.Signals[:],
		Phase:            string(rec.Phase),
		SignalsTriggered: rec.SignalsTriggered,
		DealFeedMissing:  rec.DealFeedMissing,
	}
}

// GetTop returns the highest-scoring securities for a date.
// GET /api/scores/top?date=2026-08-28&limit=25
func (h *ScoreHandler) GetTop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, err := h.resolveDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 25
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	records, err := h.scores.TopN(ctx, date, limit)
	if err != nil {
		h.logger.WithError(err).Error("Top scores query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	items := make([]scoreItem, 0, len(records))
	for _, rec := range records {
		items = append(items, toScoreItem(rec))
	}

	writeJSON(w, map[string]interface{}{
		"date":  date.Format("2006-01-02"),
		"count": len(items),
		"items": items,
	})
}

// GetHistory returns one security's score timeline.
// GET /api/scores/{symbol}?from=2026-07-01&to=2026-08-28
func (h *ScoreHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := mux.Vars(r)["symbol"]

	to, err := h.resolveDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from := to.AddDate(0, 0, -90)
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		from = parsed
	}

	records, err := h.scores.History(ctx, symbol, from, to)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Score history query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	items := make([]scoreItem, 0, len(records))
	for _, rec := range records {
		items = append(items, toScoreItem(rec))
	}

	writeJSON(w, map[string]interface{}{
		"symbol": symbol,
		"count":  len(items),
		"items":  items,
	})
}

// resolveDate reads ?date= (or ?to=), defaulting to the latest
// ingested trade date.
func (h *ScoreHandler) resolveDate(r *http.Request) (time.Time, error) {
	v := r.URL.Query().Get("date")
	if v == "" {
		v = r.URL.Query().Get("to")
	}
	if v != "" {
		return time.Parse("2006-01-02", v)
	}
	return h.bars.LatestDate(r.Context())
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
