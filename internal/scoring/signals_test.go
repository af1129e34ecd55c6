package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

func fp(v float64) *float64 { return &v }

// barSpec drives the history builder; one spec per day, most recent
// first, matching repository order.
type barSpec struct {
	close     float64
	pctChange float64
	volume    int64
	delivered float64 // delivered pct; negative means absent
}

func buildHistory(symbol string, specs []barSpec) []*contracts.DailyBar {
	end := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	bars := make([]*contracts.DailyBar, len(specs))
	for i, spec := range specs {
		bar := &contracts.DailyBar{
			Symbol:      symbol,
			Series:      "EQ",
			TradeDate:   end.AddDate(0, 0, -i),
			Open:        spec.close,
			High:        spec.close,
			Low:         spec.close,
			Close:       spec.close,
			PrevClose:   spec.close / (1 + spec.pctChange/100),
			PctChange:   fp(spec.pctChange),
			TotalVolume: spec.volume,
			Trades:      100,
		}
		if spec.delivered >= 0 {
			bar.DeliveredPct = fp(spec.delivered)
		}
		bars[i] = bar
	}
	return bars
}

// uniformHistory builds n identical days.
func uniformHistory(n int, spec barSpec) []*contracts.DailyBar {
	specs := make([]barSpec, n)
	for i := range specs {
		specs[i] = spec
	}
	return buildHistory("TEST", specs)
}

// pumpedHistory is the canonical pump fixture: 100 straight 1% up-days
// at 10% delivery, with volume spiked tenfold over the last 30 days.
// Every recent day's volume clears twice the 90-day average.
func pumpedHistory() []*contracts.DailyBar {
	specs := make([]barSpec, 100)
	price := 10.0
	// Fill closes back-to-front so the series compounds upward.
	for i := 99; i >= 0; i-- {
		price *= 1.01
		volume := int64(1_000)
		if i < 30 {
			volume = 100_000
		}
		specs[i] = barSpec{close: price, pctChange: 1.0, volume: volume, delivered: 10}
	}
	return buildHistory("PUMPED", specs)
}

func TestVolumeConsistency(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	t.Run("fires on a month of spiked volume", func(t *testing.T) {
		in := SignalInput{History: pumpedHistory()}
		assert.Equal(t, maxVolumeConsistency, e.volumeConsistency(in))
	})

	t.Run("does not fire on uniform volume", func(t *testing.T) {
		in := SignalInput{History: uniformHistory(100, barSpec{close: 10, pctChange: 1, volume: 1000, delivered: 50})}
		assert.Zero(t, e.volumeConsistency(in))
	})

	t.Run("zero average volume never fires", func(t *testing.T) {
		in := SignalInput{History: uniformHistory(100, barSpec{close: 10, pctChange: 1, volume: 0, delivered: 50})}
		assert.Zero(t, e.volumeConsistency(in))
	})

	t.Run("empty history scores zero", func(t *testing.T) {
		assert.Zero(t, e.volumeConsistency(SignalInput{}))
	})
}

func TestLowDelivery(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	build := func(qualifyingUpDays int) []*contracts.DailyBar {
		specs := make([]barSpec, 60)
		for i := range specs {
			if i < qualifyingUpDays {
				specs[i] = barSpec{close: 10, pctChange: 1, volume: 1000, delivered: 10}
			} else {
				specs[i] = barSpec{close: 10, pctChange: -1, volume: 1000, delivered: 60}
			}
		}
		return buildHistory("TEST", specs)
	}

	tests := []struct {
		name string
		days int
		want float64
	}{
		{"below band", 5, 0},
		{"half score at band low", 8, 1.0},
		{"half score inside band", 14, 1.0},
		{"full score at band high", 15, 2.0},
		{"full score above band", 30, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := SignalInput{History: build(tt.days)}
			assert.Equal(t, tt.want, e.lowDelivery(in))
		})
	}

	t.Run("ignores days without delivery data", func(t *testing.T) {
		in := SignalInput{History: uniformHistory(60, barSpec{close: 10, pctChange: 1, volume: 1000, delivered: -1})}
		assert.Zero(t, e.lowDelivery(in))
	})
}

func TestSteadyGrind(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	t.Run("fires on a smooth climb", func(t *testing.T) {
		in := SignalInput{History: uniformHistory(60, barSpec{close: 10, pctChange: 0.8, volume: 1000, delivered: 50})}
		assert.Equal(t, maxSteadyGrind, e.steadyGrind(in))
	})

	t.Run("does not fire on a volatile climb", func(t *testing.T) {
		specs := make([]barSpec, 60)
		for i := range specs {
			// Alternate +5 / -3: still mostly rising, far too noisy.
			if i%2 == 0 {
				specs[i] = barSpec{close: 10, pctChange: 5, volume: 1000, delivered: 50}
			} else {
				specs[i] = barSpec{close: 10, pctChange: -3, volume: 1000, delivered: 50}
			}
		}
		in := SignalInput{History: buildHistory("TEST", specs)}
		assert.Zero(t, e.steadyGrind(in))
	})

	t.Run("short history scores zero", func(t *testing.T) {
		in := SignalInput{History: uniformHistory(10, barSpec{close: 10, pctChange: 0.8, volume: 1000, delivered: 50})}
		assert.Zero(t, e.steadyGrind(in))
	})
}

func TestPriceDetachment(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	flatBenchmark := func(n int, close float64) []*contracts.BenchmarkBar {
		end := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
		bars := make([]*contracts.BenchmarkBar, n)
		for i := range bars {
			bars[i] = &contracts.BenchmarkBar{
				IndexName: "NIFTY 500",
				TradeDate: end.AddDate(0, 0, -i),
				Close:     close,
			}
		}
		return bars
	}

	t.Run("fires when the security outruns the benchmark", func(t *testing.T) {
		in := SignalInput{
			History:   pumpedHistory(), // ~+81% in 60 days
			Benchmark: flatBenchmark(100, 25000),
		}
		assert.Equal(t, maxPriceDetachment, e.priceDetachment(in))
	})

	t.Run("missing benchmark scores zero", func(t *testing.T) {
		in := SignalInput{History: pumpedHistory()}
		assert.Zero(t, e.priceDetachment(in))
	})

	t.Run("short benchmark history scores zero", func(t *testing.T) {
		in := SignalInput{
			History:   pumpedHistory(),
			Benchmark: flatBenchmark(10, 25000),
		}
		assert.Zero(t, e.priceDetachment(in))
	})
}

func TestVelocity(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	t.Run("fires on steep relentless climb", func(t *testing.T) {
		// 1% per day for 100 days: 60-day return ~81%, all up-days.
		in := SignalInput{History: uniformGrowthHistory(100, 1.0)}
		assert.Equal(t, maxVelocity, e.velocity(in))
	})

	t.Run("does not fire on modest return", func(t *testing.T) {
		in := SignalInput{History: uniformGrowthHistory(100, 0.2)}
		assert.Zero(t, e.velocity(in))
	})

	t.Run("fires with exactly window-length history", func(t *testing.T) {
		// The return baseline is the oldest bar inside the window, so
		// sixty bars are enough for the sixty-day signals.
		in := SignalInput{History: uniformGrowthHistory(60, 1.0)}
		assert.Equal(t, maxVelocity, e.velocity(in))
	})
}

// uniformGrowthHistory compounds dailyPct per day over n days.
func uniformGrowthHistory(n int, dailyPct float64) []*contracts.DailyBar {
	specs := make([]barSpec, n)
	price := 10.0
	for i := n - 1; i >= 0; i-- {
		price *= 1 + dailyPct/100
		specs[i] = barSpec{close: price, pctChange: dailyPct, volume: 1000, delivered: 50}
	}
	return buildHistory("TEST", specs)
}

func TestMicroCap(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	t.Run("fires on thin turnover with a big move", func(t *testing.T) {
		in := SignalInput{History: uniformGrowthHistory(100, 1.0)}
		assert.Equal(t, maxMicroCap, e.microCap(in))
	})

	t.Run("does not fire above the turnover ceiling", func(t *testing.T) {
		specs := make([]barSpec, 100)
		price := 100.0
		for i := 99; i >= 0; i-- {
			price *= 1.01
			specs[i] = barSpec{close: price, pctChange: 1.0, volume: 10_000_000, delivered: 50}
		}
		in := SignalInput{History: buildHistory("TEST", specs)}
		assert.Zero(t, e.microCap(in))
	})
}

func TestReversal(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	// Declining close, rising delivery on down-days, collapsed volume.
	distribution := func() []*contracts.DailyBar {
		specs := make([]barSpec, 60)
		for i := range specs {
			switch {
			case i < 5:
				specs[i] = barSpec{close: 8 - float64(i)*0.1, pctChange: -2, volume: 100, delivered: 80}
			default:
				specs[i] = barSpec{close: 10, pctChange: 1, volume: 10_000, delivered: 10}
			}
		}
		return buildHistory("TEST", specs)
	}

	t.Run("fires when at least two conditions hold", func(t *testing.T) {
		in := SignalInput{History: distribution(), DealFeedAvailable: true}
		assert.Equal(t, maxReversal, e.reversal(in))
	})

	t.Run("deterministically zero when the deal feed is dark", func(t *testing.T) {
		in := SignalInput{History: distribution(), DealFeedAvailable: false}
		assert.Zero(t, e.reversal(in))
	})

	t.Run("does not fire mid-pump", func(t *testing.T) {
		in := SignalInput{History: pumpedHistory(), DealFeedAvailable: true}
		assert.Zero(t, e.reversal(in))
	})
}

// TestSubScoreCeilings pins each sub-score to its documented maximum
// on an input engineered to fire everything at once.
func TestSubScoreCeilings(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())
	maxes := [7]float64{
		maxVolumeConsistency, maxLowDelivery, maxSteadyGrind,
		maxPriceDetachment, maxVelocity, maxMicroCap, maxReversal,
	}

	scores := e.Evaluate(SignalInput{History: pumpedHistory(), DealFeedAvailable: true})
	var total float64
	for i, score := range scores {
		assert.LessOrEqual(t, score, maxes[i], "signal %d exceeds ceiling", i)
		assert.GreaterOrEqual(t, score, 0.0, "signal %d negative", i)
		total += score
	}
	assert.LessOrEqual(t, total, contracts.MaxTotalScore)
}

// TestPumpFixture walks the canonical fixture through signals,
// composite and phase: a month of all-up days on doubled volume with
// 10% delivery must max the volume and delivery signals and land in
// EXTREME.
func TestPumpFixture(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	scores := e.Evaluate(SignalInput{History: pumpedHistory(), DealFeedAvailable: false})
	require.Equal(t, maxVolumeConsistency, scores[0], "volume consistency must fire at max")
	require.Equal(t, maxLowDelivery, scores[1], "low delivery must fire at full band")

	total, triggered := Compose(scores)
	assert.GreaterOrEqual(t, total, 8.0)
	assert.Contains(t, triggered, contracts.SignalVolumeConsistency)
	assert.Contains(t, triggered, contracts.SignalLowDelivery)

	phase := ClassifyPhase(total, scores[6] > 0)
	assert.Equal(t, contracts.PhaseExtreme, phase)
}
