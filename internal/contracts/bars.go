package contracts

import "time"

// DailyBar is one security's end-of-day record: OHLC, traded volume and
// delivered (non-intraday) volume. Unique per (symbol, trade date);
// re-ingestion of the same date upserts by that key.
type DailyBar struct {
	Symbol    string
	Series    string
	TradeDate time.Time

	Open      float64
	High      float64
	Low       float64
	Close     float64
	PrevClose float64

	// PctChange is nil when no previous close is known.
	PctChange *float64

	TotalVolume int64

	// Delivery fields are nil when the bar came from the CM bhavcopy
	// fallback, which carries no delivery data.
	DeliveredVolume *int64
	DeliveredPct    *float64

	Trades int64
}

// UpDay reports whether the bar closed above the previous close.
func (b *DailyBar) UpDay() bool {
	return b.PctChange != nil && *b.PctChange > 0
}

// DownDay reports whether the bar closed below the previous close.
func (b *DailyBar) DownDay() bool {
	return b.PctChange != nil && *b.PctChange < 0
}

// Turnover approximates the bar's traded value in rupees.
func (b *DailyBar) Turnover() float64 {
	return b.Close * float64(b.TotalVolume)
}

// HitUpperCircuit reports whether the bar closed pinned at its high,
// the bar-level proxy for an upper price-band hit.
func (b *DailyBar) HitUpperCircuit() bool {
	return b.High > 0 && b.Close == b.High
}

// BenchmarkBar is one reference index's end-of-day close, used by the
// relative-strength signals. Unique per (index name, trade date).
type BenchmarkBar struct {
	IndexName string
	TradeDate time.Time
	Close     float64
}
