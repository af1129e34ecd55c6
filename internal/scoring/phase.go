package scoring

import (
	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

// Phase band boundaries on the raw composite scale.
const (
	watchFloor   = 3.0
	pumpFloor    = 5.0
	distribFloor = 6.0
	extremeFloor = 8.0
)

// ClassifyPhase maps (composite score, reversal fired) to a phase.
// Rules are evaluated in order, first match wins. In the [6, 8) band
// the reversal-dependent rule is checked before the plain range rule:
// a high score WITH reversal evidence means distribution is underway,
// the same score without it is still the pump. That ordering is load
// bearing; collapsing the bands changes classifications.
func ClassifyPhase(total float64, reversalFired bool) contracts.Phase {
	switch {
	case total < watchFloor:
		return contracts.PhaseClean
	case total < pumpFloor:
		return contracts.PhaseWatch
	case total < distribFloor:
		return contracts.PhasePump
	case total < extremeFloor && reversalFired:
		return contracts.PhaseDistribution
	case total < extremeFloor:
		return contracts.PhasePump
	default:
		return contracts.PhaseExtreme
	}
}
