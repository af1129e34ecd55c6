package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

func TestClassifyPhase(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		reversal bool
		want     contracts.Phase
	}{
		{"zero is clean", 0, false, contracts.PhaseClean},
		{"just under watch", 2.99, false, contracts.PhaseClean},
		{"watch floor", 3.0, false, contracts.PhaseWatch},
		{"upper watch", 4.99, false, contracts.PhaseWatch},
		{"pump floor", 5.0, false, contracts.PhasePump},
		{"pump band ignores reversal", 5.5, true, contracts.PhasePump},
		{"six with reversal is distribution", 6.0, true, contracts.PhaseDistribution},
		{"six without reversal stays pump", 6.0, false, contracts.PhasePump},
		{"upper distribution band", 7.99, true, contracts.PhaseDistribution},
		{"upper pump band", 7.99, false, contracts.PhasePump},
		{"extreme floor", 8.0, false, contracts.PhaseExtreme},
		{"extreme ignores reversal", 9.0, true, contracts.PhaseExtreme},
		{"max scale", contracts.MaxTotalScore, true, contracts.PhaseExtreme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPhase(tt.total, tt.reversal))
		})
	}
}

// The classifier is a pure function: identical inputs must classify
// identically across repeated calls.
func TestClassifyPhaseDeterministic(t *testing.T) {
	for _, total := range []float64{0, 2.5, 3, 4.9, 5, 6, 7.3, 8, 12.5} {
		for _, reversal := range []bool{true, false} {
			first := ClassifyPhase(total, reversal)
			for i := 0; i < 10; i++ {
				assert.Equal(t, first, ClassifyPhase(total, reversal))
			}
		}
	}
}
