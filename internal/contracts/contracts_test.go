package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pct(v float64) *float64 { return &v }

func TestDailyBarDirection(t *testing.T) {
	up := &DailyBar{PctChange: pct(1.2)}
	down := &DailyBar{PctChange: pct(-0.4)}
	flat := &DailyBar{PctChange: pct(0)}
	unknown := &DailyBar{}

	assert.True(t, up.UpDay())
	assert.False(t, up.DownDay())

	assert.True(t, down.DownDay())
	assert.False(t, down.UpDay())

	// A flat day is neither, and a bar with no previous close is
	// neither rather than a guess.
	assert.False(t, flat.UpDay())
	assert.False(t, flat.DownDay())
	assert.False(t, unknown.UpDay())
	assert.False(t, unknown.DownDay())
}

func TestDailyBarTurnover(t *testing.T) {
	bar := &DailyBar{Close: 12.5, TotalVolume: 40_000}
	assert.Equal(t, 500_000.0, bar.Turnover())
}

func TestHitUpperCircuit(t *testing.T) {
	assert.True(t, (&DailyBar{High: 10, Close: 10}).HitUpperCircuit())
	assert.False(t, (&DailyBar{High: 10, Close: 9.8}).HitUpperCircuit())
	// Zero high means no usable range, not a circuit hit.
	assert.False(t, (&DailyBar{High: 0, Close: 0}).HitUpperCircuit())
}

func TestIsEarningsOrDividend(t *testing.T) {
	assert.True(t, (&CorporateEvent{EventType: "results"}).IsEarningsOrDividend())
	assert.True(t, (&CorporateEvent{EventType: "dividend"}).IsEarningsOrDividend())
	assert.False(t, (&CorporateEvent{EventType: "bonus"}).IsEarningsOrDividend())
}

func TestTriggeredRoundTrip(t *testing.T) {
	rec := &ScoreRecord{SignalsTriggered: []string{SignalVolumeConsistency, SignalReversal}}
	stored := rec.TriggeredString()

	assert.Equal(t, "volume_consistency,reversal", stored)
	assert.Equal(t, rec.SignalsTriggered, ParseTriggered(stored))
	assert.Nil(t, ParseTriggered(""))
}
