package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/logger"
)

// PriceHandler serves price store and rolling-stats reads.
type PriceHandler struct {
	bars  contracts.BarRepository
	stats contracts.RollingStatsRepository

	logger *logger.Logger
}

// NewPriceHandler creates a price handler.
func NewPriceHandler(bars contracts.BarRepository, stats contracts.RollingStatsRepository, log *logger.Logger) *PriceHandler {
	return &PriceHandler{bars: bars, stats: stats, logger: log}
}

type barItem struct {
	TradeDate       string   `json:"trade_date"`
	Open            float64  `json:"open"`
	High            float64  `json:"high"`
	Low             float64  `json:"low"`
	Close           float64  `json:"close"`
	PctChange       *float64 `json:"pct_change"`
	TotalVolume     int64    `json:"total_volume"`
	DeliveredVolume *int64   `json:"delivered_volume"`
	DeliveredPct    *float64 `json:"delivered_pct"`
	Trades          int64    `json:"trades"`
}

// GetBars returns a security's recent bars, most recent first.
// GET /api/prices/{symbol}?date=2026-08-28&limit=90
func (h *PriceHandler) GetBars(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := mux.Vars(r)["symbol"]

	date, err := h.resolveDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 90
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	bars, err := h.bars.History(ctx, symbol, date, limit)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Bar history query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	items := make([]barItem, 0, len(bars))
	for _, bar := range bars {
		items = append(items, barItem{
			TradeDate:       bar.TradeDate.Format("2006-01-02"),
			Open:            bar.Open,
			High:            bar.High,
			Low:             bar.Low,
			Close:           bar.Close,
			PctChange:       bar.PctChange,
			TotalVolume:     bar.TotalVolume,
			DeliveredVolume: bar.DeliveredVolume,
			DeliveredPct:    bar.DeliveredPct,
			Trades:          bar.Trades,
		})
	}

	writeJSON(w, map[string]interface{}{
		"symbol": symbol,
		"count":  len(items),
		"items":  items,
	})
}

// GetRollingStats returns a security's derived metrics for a date.
// GET /api/stats/{symbol}?date=2026-08-28
func (h *PriceHandler) GetRollingStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := mux.Vars(r)["symbol"]

	date, err := h.resolveDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.stats.Get(ctx, symbol, date)
	if err != nil {
		writeError(w, http.StatusNotFound, "no stats for symbol and date")
		return
	}

	writeJSON(w, map[string]interface{}{
		"symbol":               stats.Symbol,
		"trade_date":           stats.TradeDate.Format("2006-01-02"),
		"avg_volume_30d":       stats.AvgVolume30d,
		"vol_ratio":            stats.VolRatio,
		"price_change_30d":     stats.PriceChange30d,
		"price_change_60d":     stats.PriceChange60d,
		"upper_circuit_streak": stats.UpperCircuitStreak,
		"week52_high":          stats.Week52High,
		"week52_low":           stats.Week52Low,
	})
}

func (h *PriceHandler) resolveDate(r *http.Request) (time.Time, error) {
	if v := r.URL.Query().Get("date"); v != "" {
		return time.Parse("2006-01-02", v)
	}
	return h.bars.LatestDate(r.Context())
}
