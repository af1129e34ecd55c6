package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

func TestNoiseFilter(t *testing.T) {
	filter := NewNoiseFilter(DefaultPolicy())
	quiet := uniformHistory(100, barSpec{close: 10, pctChange: 0.1, volume: 1000, delivered: 50})

	t.Run("seasoned quiet security is eligible", func(t *testing.T) {
		eligible, reason := filter.Check(NoiseInput{Symbol: "SMALLCO", History: quiet})
		assert.True(t, eligible)
		assert.Equal(t, ReasonNone, reason)
	})

	t.Run("index constituent is excluded", func(t *testing.T) {
		eligible, reason := filter.Check(NoiseInput{Symbol: "RELIANCE", History: quiet})
		assert.False(t, eligible)
		assert.Equal(t, ReasonIndexConstituent, reason)
	})

	t.Run("under sixty days of history is excluded regardless of anything else", func(t *testing.T) {
		short := uniformHistory(59, barSpec{close: 10, pctChange: 0.1, volume: 1000, delivered: 50})
		eligible, reason := filter.Check(NoiseInput{Symbol: "NEWLISTING", History: short})
		assert.False(t, eligible)
		assert.Equal(t, ReasonInsufficientHistory, reason)
	})

	t.Run("recent earnings announcement is excluded", func(t *testing.T) {
		// History is most recent first; an event two trading days back
		// sits inside the five-day quiet window.
		ev := &contracts.CorporateEvent{
			Symbol:    "SMALLCO",
			EventDate: quiet[2].TradeDate,
			EventType: "results",
		}
		eligible, reason := filter.Check(NoiseInput{Symbol: "SMALLCO", History: quiet, Events: []*contracts.CorporateEvent{ev}})
		assert.False(t, eligible)
		assert.Equal(t, ReasonRecentEvent, reason)
	})

	t.Run("old announcement does not exclude", func(t *testing.T) {
		ev := &contracts.CorporateEvent{
			Symbol:    "SMALLCO",
			EventDate: quiet[10].TradeDate,
			EventType: "results",
		}
		eligible, _ := filter.Check(NoiseInput{Symbol: "SMALLCO", History: quiet, Events: []*contracts.CorporateEvent{ev}})
		assert.True(t, eligible)
	})

	t.Run("non-disqualifying event types are ignored", func(t *testing.T) {
		ev := &contracts.CorporateEvent{
			Symbol:    "SMALLCO",
			EventDate: quiet[0].TradeDate,
			EventType: "bonus",
		}
		eligible, _ := filter.Check(NoiseInput{Symbol: "SMALLCO", History: quiet, Events: []*contracts.CorporateEvent{ev}})
		assert.True(t, eligible)
	})

	t.Run("turnover above the ceiling is excluded", func(t *testing.T) {
		// 500 × 1M shares = ₹50 crore a day, five times the ceiling.
		liquid := uniformHistory(100, barSpec{close: 500, pctChange: 0.1, volume: 1_000_000, delivered: 50})
		eligible, reason := filter.Check(NoiseInput{Symbol: "LIQUIDCO", History: liquid})
		assert.False(t, eligible)
		assert.Equal(t, ReasonTurnoverCeiling, reason)
	})
}

func TestNoiseFilterEventWindowCountsTradingDays(t *testing.T) {
	filter := NewNoiseFilter(DefaultPolicy())

	// Build history with a weekend-sized calendar gap between trading
	// days; the quiet window must still cover five bars, not five
	// calendar days.
	end := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	bars := make([]*contracts.DailyBar, 80)
	for i := range bars {
		bars[i] = &contracts.DailyBar{
			Symbol:      "GAPPY",
			TradeDate:   end.AddDate(0, 0, -i*3),
			Close:       10,
			High:        10,
			PrevClose:   10,
			PctChange:   fp(0.1),
			TotalVolume: 1000,
		}
	}

	ev := &contracts.CorporateEvent{
		Symbol:    "GAPPY",
		EventDate: bars[4].TradeDate, // fifth trading day back, 12 calendar days
		EventType: "dividend",
	}
	eligible, reason := filter.Check(NoiseInput{Symbol: "GAPPY", History: bars, Events: []*contracts.CorporateEvent{ev}})
	assert.False(t, eligible)
	assert.Equal(t, ReasonRecentEvent, reason)
}
