package contracts

import (
	"strings"
	"time"
)

// Phase is the discrete risk category derived from the composite score
// and the reversal signal.
type Phase string

const (
	PhaseClean        Phase = "CLEAN"
	PhaseWatch        Phase = "WATCH"
	PhasePump         Phase = "PUMP_PHASE"
	PhaseDistribution Phase = "DISTRIBUTION"
	PhaseExtreme      Phase = "EXTREME"
)

// Signal identifiers, in evaluation order. These are the names recorded
// in ScoreRecord.SignalsTriggered.
const (
	SignalVolumeConsistency = "volume_consistency"
	SignalLowDelivery       = "low_delivery"
	SignalSteadyGrind       = "steady_grind"
	SignalPriceDetachment   = "price_detachment"
	SignalVelocity          = "velocity"
	SignalMicroCap          = "micro_cap"
	SignalReversal          = "reversal"
)

// SignalNames lists the seven signal identifiers in evaluation order.
var SignalNames = [7]string{
	SignalVolumeConsistency,
	SignalLowDelivery,
	SignalSteadyGrind,
	SignalPriceDetachment,
	SignalVelocity,
	SignalMicroCap,
	SignalReversal,
}

// MaxTotalScore is the raw composite ceiling: 2+2+2+1.5+1.5+1.5+2.
const MaxTotalScore = 12.5

// ScoreRecord is the persisted daily output for one security: the
// composite score, every sub-score, which signals fired, and the phase.
// One row per (symbol, evaluation date), upserted on re-run.
type ScoreRecord struct {
	Symbol   string
	EvalDate time.Time

	TotalScore float64
	Signals    [7]float64

	Phase            Phase
	SignalsTriggered []string

	// DealFeedMissing marks that the bulk-deal feed produced no data
	// for this run, so the reversal signal is deterministically 0 and
	// the composite score is understated.
	DealFeedMissing bool
}

// TriggeredString renders the triggered-signal list for storage.
func (r *ScoreRecord) TriggeredString() string {
	return strings.Join(r.SignalsTriggered, ",")
}

// ParseTriggered parses a stored triggered-signal string.
func ParseTriggered(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
