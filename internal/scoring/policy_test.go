package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyIsValid(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())
}

func TestLoadPolicy(t *testing.T) {
	writeTemp := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("overrides merge onto defaults", func(t *testing.T) {
		path := writeTemp(t, `
noise:
  min_history_days: 90
signals:
  velocity:
    min_return_pct: 100.0
`)
		policy, err := LoadPolicy(path)
		require.NoError(t, err)

		assert.Equal(t, 90, policy.Noise.MinHistoryDays)
		assert.Equal(t, 100.0, policy.Signals.Velocity.MinReturnPct)
		// Untouched fields keep their defaults.
		assert.Equal(t, 2.0, policy.Signals.VolumeConsistency.SpikeMultiplier)
		assert.NotEmpty(t, policy.Noise.Exclusions)
	})

	t.Run("unknown field fails the load", func(t *testing.T) {
		path := writeTemp(t, `
signals:
  velocity:
    min_retrun_pct: 100.0
`)
		_, err := LoadPolicy(path)
		assert.Error(t, err)
	})

	t.Run("invalid value fails validation", func(t *testing.T) {
		path := writeTemp(t, `
signals:
  low_delivery:
    band_low: 20
    band_high: 10
`)
		_, err := LoadPolicy(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "band_low")
	})

	t.Run("shipped policy file parses", func(t *testing.T) {
		path := "../../configs/policy.yaml"
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Skip("policy file not found")
		}
		policy, err := LoadPolicy(path)
		require.NoError(t, err)
		assert.Equal(t, 5, policy.Noise.EventQuietDays)
		assert.Equal(t, 0.40, policy.Signals.VolumeConsistency.MinFraction)
	})

	t.Run("missing file returns os error", func(t *testing.T) {
		_, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestPolicyExcluded(t *testing.T) {
	policy := DefaultPolicy()
	assert.True(t, policy.Excluded("TCS"))
	assert.False(t, policy.Excluded("SOMESMALLCO"))
}
