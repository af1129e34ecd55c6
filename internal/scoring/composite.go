package scoring

import (
	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

// Compose sums the seven sub-scores and records which signals fired, in
// canonical evaluation order. The raw 0–12.5 value is the value of
// record; any 0–10 presentation rescale belongs to the dashboard.
func Compose(signals [7]float64) (total float64, triggered []string) {
	for i, score := range signals {
		total += score
		if score > 0 {
			triggered = append(triggered, contracts.SignalNames[i])
		}
	}
	return total, triggered
}
