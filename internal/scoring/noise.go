package scoring

import (
	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

// ExclusionReason says why the noise filter rejected a security.
type ExclusionReason string

const (
	ReasonNone                ExclusionReason = ""
	ReasonIndexConstituent    ExclusionReason = "index_constituent"
	ReasonRecentEvent         ExclusionReason = "recent_corporate_event"
	ReasonTurnoverCeiling     ExclusionReason = "turnover_above_ceiling"
	ReasonInsufficientHistory ExclusionReason = "insufficient_history"
)

// NoiseInput is everything the filter reads for one security. history
// is most recent first; events are the security's announcements in the
// recent lookback.
type NoiseInput struct {
	Symbol  string
	History []*contracts.DailyBar
	Events  []*contracts.CorporateEvent
}

// NoiseFilter gates which securities get scored. Scoring is only
// meaningful for a low-liquidity, news-quiet, seasoned universe;
// anything the filter rejects gets no ScoreRecord at all.
type NoiseFilter struct {
	policy *Policy
}

// NewNoiseFilter creates a filter over the given policy.
func NewNoiseFilter(policy *Policy) *NoiseFilter {
	return &NoiseFilter{policy: policy}
}

// Check returns whether a security is eligible for scoring, and the
// first matching exclusion reason when it is not. Rules are evaluated
// cheapest first.
func (f *NoiseFilter) Check(in NoiseInput) (bool, ExclusionReason) {
	if f.policy.Excluded(in.Symbol) {
		return false, ReasonIndexConstituent
	}

	if len(in.History) < f.policy.Noise.MinHistoryDays {
		return false, ReasonInsufficientHistory
	}

	if f.recentDisqualifyingEvent(in) {
		return false, ReasonRecentEvent
	}

	if avgTurnover(in.History, 90) > f.policy.Noise.TurnoverCeiling {
		return false, ReasonTurnoverCeiling
	}

	return true, ReasonNone
}

// recentDisqualifyingEvent reports an earnings or dividend announcement
// within the last EventQuietDays trading days. The window is counted in
// trading days present in the bar history, not calendar days.
func (f *NoiseFilter) recentDisqualifyingEvent(in NoiseInput) bool {
	quiet := f.policy.Noise.EventQuietDays
	if quiet <= 0 || len(in.Events) == 0 {
		return false
	}

	n := quiet
	if n > len(in.History) {
		n = len(in.History)
	}
	cutoff := in.History[n-1].TradeDate

	for _, ev := range in.Events {
		if !ev.IsEarningsOrDividend() {
			continue
		}
		if !ev.EventDate.Before(cutoff) {
			return true
		}
	}
	return false
}

// avgTurnover is the mean daily traded value over up to n recent bars.
func avgTurnover(history []*contracts.DailyBar, n int) float64 {
	if len(history) < n {
		n = len(history)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for _, bar := range history[:n] {
		sum += bar.Turnover()
	}
	return sum / float64(n)
}
