package contracts

import "time"

// RollingStats holds trailing-window metrics for one security on one
// trading day, derived entirely from DailyBar history up to and
// including that day. Windows count trading days present in the store,
// not calendar days.
type RollingStats struct {
	Symbol    string
	TradeDate time.Time

	AvgVolume30d float64

	// VolRatio is the day's volume over the 90-day average volume.
	// Nil when the 90-day average is zero or undefined; signals that
	// depend on it do not fire.
	VolRatio *float64

	PriceChange30d *float64
	PriceChange60d *float64

	UpperCircuitStreak int

	Week52High float64
	Week52Low  float64
}
