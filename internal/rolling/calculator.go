// Package rolling derives trailing-window metrics from daily bar
// history. All functions are pure: they read an in-memory history
// slice and never touch storage.
package rolling

import (
	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

const (
	// Window lengths count trading days, not calendar days.
	volAvgWindow   = 30
	volRatioWindow = 90
	change30Window = 30
	change60Window = 60
	week52Window   = 252
)

// Compute derives RollingStats for the most recent bar in history.
// history must be ordered most recent first, as BarRepository.History
// returns it. Returns nil when history is empty.
//
// Metrics degrade gracefully on short history: averages use whatever
// bars exist, change metrics are nil until the lookback bar exists,
// and the 52-week range covers at most 252 bars.
func Compute(history []*contracts.DailyBar) *contracts.RollingStats {
	if len(history) == 0 {
		return nil
	}

	today := history[0]
	stats := &contracts.RollingStats{
		Symbol:    today.Symbol,
		TradeDate: today.TradeDate,
	}

	stats.AvgVolume30d = avgVolume(history, volAvgWindow)

	// The ratio denominator is the long 90-day average so that a
	// sustained month of pumped volume cannot normalize itself away.
	if avg90 := avgVolume(history, volRatioWindow); avg90 > 0 {
		ratio := float64(today.TotalVolume) / avg90
		stats.VolRatio = &ratio
	}

	stats.PriceChange30d = changeOver(history, change30Window)
	stats.PriceChange60d = changeOver(history, change60Window)

	for _, bar := range history {
		if !bar.HitUpperCircuit() {
			break
		}
		stats.UpperCircuitStreak++
	}

	// The 52-week range is over closes, matching how the upstream
	// files report adjusted levels.
	window := history
	if len(window) > week52Window {
		window = window[:week52Window]
	}
	stats.Week52High = window[0].Close
	stats.Week52Low = window[0].Close
	for _, bar := range window[1:] {
		if bar.Close > stats.Week52High {
			stats.Week52High = bar.Close
		}
		if bar.Close < stats.Week52Low {
			stats.Week52Low = bar.Close
		}
	}

	return stats
}

// ComputeAll derives stats for every symbol's history map.
func ComputeAll(histories map[string][]*contracts.DailyBar) []*contracts.RollingStats {
	stats := make([]*contracts.RollingStats, 0, len(histories))
	for _, history := range histories {
		if s := Compute(history); s != nil {
			stats = append(stats, s)
		}
	}
	return stats
}

// avgVolume averages TotalVolume over up to n most recent bars.
func avgVolume(history []*contracts.DailyBar, n int) float64 {
	if len(history) < n {
		n = len(history)
	}
	if n == 0 {
		return 0
	}
	var sum int64
	for _, bar := range history[:n] {
		sum += bar.TotalVolume
	}
	return float64(sum) / float64(n)
}

// changeOver returns the percent change of the latest close against the
// oldest close inside the trailing n-bar window, nil when fewer than n
// bars exist. The window edge is the baseline, so a security with
// exactly n bars still gets a value.
func changeOver(history []*contracts.DailyBar, n int) *float64 {
	if len(history) < n || n < 2 {
		return nil
	}
	base := history[n-1].Close
	if base == 0 {
		return nil
	}
	change := (history[0].Close - base) / base * 100
	return &change
}
