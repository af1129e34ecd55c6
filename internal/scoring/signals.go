package scoring

import (
	"math"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

// Per-signal score ceilings. These are structural weights of the
// composite scale, not tunable policy.
const (
	maxVolumeConsistency = 2.0
	maxLowDelivery       = 2.0
	maxSteadyGrind       = 2.0
	maxPriceDetachment   = 1.5
	maxVelocity          = 1.5
	maxMicroCap          = 1.5
	maxReversal          = 2.0
)

// SignalInput is the read-only snapshot one security is scored from.
// History and Benchmark are most recent first. Stats is derived from
// History. Every evaluator tolerates missing pieces by scoring 0.
type SignalInput struct {
	History   []*contracts.DailyBar
	Stats     *contracts.RollingStats
	Benchmark []*contracts.BenchmarkBar

	// DealFeedAvailable gates the reversal signal. When the bulk-deal
	// feed produced nothing for the run, reversal is deterministically
	// 0 and the record carries the DealFeedMissing flag.
	DealFeedAvailable bool
}

// Evaluator scores all seven signals from a policy.
type Evaluator struct {
	policy *Policy
}

// NewEvaluator creates an evaluator over the given policy.
func NewEvaluator(policy *Policy) *Evaluator {
	return &Evaluator{policy: policy}
}

// Evaluate returns the seven sub-scores in canonical order.
func (e *Evaluator) Evaluate(in SignalInput) [7]float64 {
	return [7]float64{
		e.volumeConsistency(in),
		e.lowDelivery(in),
		e.steadyGrind(in),
		e.priceDetachment(in),
		e.velocity(in),
		e.microCap(in),
		e.reversal(in),
	}
}

// volumeConsistency fires when a large fraction of recent days traded
// at a multiple of the long-run average. One spike is news; a month of
// spikes is a campaign. The comparison is >= so a security pinned at
// exactly the multiplier still qualifies.
func (e *Evaluator) volumeConsistency(in SignalInput) float64 {
	p := e.policy.Signals.VolumeConsistency
	window := lastN(in.History, p.WindowDays)
	if len(window) == 0 {
		return 0
	}

	avg90 := avgVolumeOver(in.History, 90)
	if avg90 <= 0 {
		return 0
	}

	spikes := 0
	for _, bar := range window {
		if float64(bar.TotalVolume) >= p.SpikeMultiplier*avg90 {
			spikes++
		}
	}

	if float64(spikes)/float64(len(window)) >= p.MinFraction {
		return maxVolumeConsistency
	}
	return 0
}

// lowDelivery counts up-days where almost nothing was actually
// delivered. Price rising on intraday churn is the classic circular
// trading footprint. Counts above the high band score full; the band
// is open-ended upward, so 30 of 30 qualifying days still fires.
func (e *Evaluator) lowDelivery(in SignalInput) float64 {
	p := e.policy.Signals.LowDelivery
	window := lastN(in.History, p.WindowDays)

	qualifying := 0
	for _, bar := range window {
		if !bar.UpDay() || bar.DeliveredPct == nil {
			continue
		}
		if *bar.DeliveredPct < p.DeliveryFloor {
			qualifying++
		}
	}

	switch {
	case qualifying >= p.BandHigh:
		return maxLowDelivery
	case qualifying >= p.BandLow:
		return maxLowDelivery / 2
	default:
		return 0
	}
}

// steadyGrind looks for an unnaturally smooth climb: almost every day
// positive, with tiny dispersion. Organic rallies are volatile.
func (e *Evaluator) steadyGrind(in SignalInput) float64 {
	p := e.policy.Signals.SteadyGrind
	window := lastN(in.History, p.WindowDays)

	var returns []float64
	up := 0
	for _, bar := range window {
		if bar.PctChange == nil {
			continue
		}
		returns = append(returns, *bar.PctChange)
		if *bar.PctChange > 0 {
			up++
		}
	}
	if len(returns) < p.WindowDays/2 {
		return 0
	}

	upFraction := float64(up) / float64(len(returns))
	if upFraction >= p.MinUpFraction && stddev(returns) < p.MaxStddevPct {
		return maxSteadyGrind
	}
	return 0
}

// priceDetachment compares the security's trailing return against the
// benchmark index over the same window. A micro-cap outrunning the
// market by fifty points with no news has a story to tell.
func (e *Evaluator) priceDetachment(in SignalInput) float64 {
	p := e.policy.Signals.PriceDetachment

	secReturn := closeReturn(in.History, p.WindowDays)
	benchReturn := benchmarkReturn(in.Benchmark, p.WindowDays)
	if secReturn == nil || benchReturn == nil {
		return 0
	}

	if *secReturn-*benchReturn > p.MarginPP {
		return maxPriceDetachment
	}
	return 0
}

// velocity fires on a steep climb made of relentless up-days: both the
// magnitude and the path shape must look engineered.
func (e *Evaluator) velocity(in SignalInput) float64 {
	p := e.policy.Signals.Velocity

	ret := closeReturn(in.History, p.WindowDays)
	if ret == nil || *ret <= p.MinReturnPct {
		return 0
	}

	window := lastN(in.History, p.WindowDays)
	up := 0
	for _, bar := range window {
		if bar.UpDay() {
			up++
		}
	}
	if len(window) > 0 && float64(up)/float64(len(window)) > p.MinUpFraction {
		return maxVelocity
	}
	return 0
}

// microCap flags a big move in a security too thin for real money:
// tiny average turnover plus a large trailing move.
func (e *Evaluator) microCap(in SignalInput) float64 {
	p := e.policy.Signals.MicroCap

	turnover := avgTurnover(in.History, 90)
	if turnover <= 0 || turnover >= p.TurnoverCeiling {
		return 0
	}

	ret := closeReturn(in.History, 60)
	if ret != nil && *ret > p.MinReturnPct {
		return maxMicroCap
	}
	return 0
}

// reversal detects the exit: price rolling over, delivery climbing on
// down-days (operators actually offloading), and volume drying up.
// Two of the three conditions fire the signal. Gated on the bulk-deal
// feed being alive for the run.
func (e *Evaluator) reversal(in SignalInput) float64 {
	if !in.DealFeedAvailable {
		return 0
	}

	p := e.policy.Signals.Reversal
	if len(in.History) <= p.DeclineDays {
		return 0
	}

	conditions := 0

	// Price declining over the lookback.
	base := in.History[p.DeclineDays].Close
	if base > 0 && in.History[0].Close < base {
		conditions++
	}

	// Delivery rising on down-days versus the 30-day norm.
	if downDayDeliveryRising(in.History, p.DeclineDays) {
		conditions++
	}

	// Volume contraction against the 30-day average.
	avg30 := avgVolumeOver(in.History, 30)
	if in.Stats != nil {
		avg30 = in.Stats.AvgVolume30d
	}
	if avg30 > 0 && float64(in.History[0].TotalVolume) < p.ContractionRatio*avg30 {
		conditions++
	}

	if conditions >= p.MinConditions {
		return maxReversal
	}
	return 0
}

// downDayDeliveryRising compares delivered_pct on recent down-days to
// the 30-day baseline. Rising delivery while price falls means shares
// are genuinely changing hands on the way down.
func downDayDeliveryRising(history []*contracts.DailyBar, days int) bool {
	var recent []float64
	for _, bar := range lastN(history, days) {
		if bar.DownDay() && bar.DeliveredPct != nil {
			recent = append(recent, *bar.DeliveredPct)
		}
	}
	if len(recent) == 0 {
		return false
	}

	var baseline []float64
	for _, bar := range lastN(history, 30) {
		if bar.DeliveredPct != nil {
			baseline = append(baseline, *bar.DeliveredPct)
		}
	}
	if len(baseline) == 0 {
		return false
	}

	return mean(recent) > mean(baseline)
}

func lastN(history []*contracts.DailyBar, n int) []*contracts.DailyBar {
	if len(history) < n {
		return history
	}
	return history[:n]
}

func avgVolumeOver(history []*contracts.DailyBar, n int) float64 {
	window := lastN(history, n)
	if len(window) == 0 {
		return 0
	}
	var sum int64
	for _, bar := range window {
		sum += bar.TotalVolume
	}
	return float64(sum) / float64(len(window))
}

// closeReturn is the percent change of the latest close versus the
// oldest close inside the trailing n-bar window, nil when fewer than
// n bars exist. Using the window edge rather than bar n means a
// security with exactly n bars of history still gets a value.
func closeReturn(history []*contracts.DailyBar, n int) *float64 {
	if len(history) < n || n < 2 {
		return nil
	}
	base := history[n-1].Close
	if base == 0 {
		return nil
	}
	ret := (history[0].Close - base) / base * 100
	return &ret
}

// benchmarkReturn is closeReturn over benchmark bars.
func benchmarkReturn(bars []*contracts.BenchmarkBar, n int) *float64 {
	if len(bars) < n || n < 2 {
		return nil
	}
	base := bars[n-1].Close
	if base == 0 {
		return nil
	}
	ret := (bars[0].Close - base) / base * 100
	return &ret
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
