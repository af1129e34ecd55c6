package nse

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

const fullBhavcopySample = `SYMBOL, SERIES, DATE1, PREV_CLOSE, OPEN_PRICE, HIGH_PRICE, LOW_PRICE, LAST_PRICE, CLOSE_PRICE, AVG_PRICE, TTL_TRD_QNTY, TURNOVER_LACS, NO_OF_TRADES, DELIV_QTY, DELIV_PER
SMALLCO, EQ, 28-Aug-2026, 100.00, 101.00, 110.00, 100.50, 109.00, 110.00, 105.00, 50000, 52.5, 1200, 5000, 10.00
BIGCO, EQ, 28-Aug-2026, 500.00, 502.00, 510.00, 495.00, 505.00, 505.00, 503.00, 2000000, 10060.0, 85000, 1400000, 70.00
BOND01, GB, 28-Aug-2026, 99.00, 99.00, 99.50, 98.50, 99.20, 99.20, 99.10, 300, 0.3, 12, -, -
`

func TestParseFullBhavcopy(t *testing.T) {
	bars, err := parseFullBhavcopy(strings.NewReader(fullBhavcopySample), testDate)
	require.NoError(t, err)
	require.Len(t, bars, 3)

	small := bars[0]
	assert.Equal(t, "SMALLCO", small.Symbol)
	assert.Equal(t, "EQ", small.Series)
	assert.Equal(t, testDate, small.TradeDate)
	assert.Equal(t, 110.0, small.Close)
	assert.Equal(t, 100.0, small.PrevClose)
	assert.Equal(t, int64(50000), small.TotalVolume)
	assert.Equal(t, int64(1200), small.Trades)

	require.NotNil(t, small.DeliveredVolume)
	assert.Equal(t, int64(5000), *small.DeliveredVolume)
	require.NotNil(t, small.DeliveredPct)
	assert.Equal(t, 10.0, *small.DeliveredPct)

	require.NotNil(t, small.PctChange)
	assert.InDelta(t, 10.0, *small.PctChange, 1e-9)

	// Close pinned at the session high is the upper-circuit proxy.
	assert.True(t, small.HitUpperCircuit())
	assert.False(t, bars[1].HitUpperCircuit())

	// "-" in the delivery columns means no data, not zero.
	bond := bars[2]
	assert.Equal(t, "GB", bond.Series)
	assert.Nil(t, bond.DeliveredVolume)
	assert.Nil(t, bond.DeliveredPct)
}

const cmBhavcopySample = `SYMBOL,SERIES,OPEN,HIGH,LOW,CLOSE,LAST,PREVCLOSE,TOTTRDQTY,TOTTRDVAL,TIMESTAMP,TOTALTRADES,ISIN
SMALLCO,EQ,101.00,110.00,100.50,110.00,109.00,100.00,50000,5250000,28-AUG-2026,1200,INE000000001
`

func TestParseCMBhavcopyFallback(t *testing.T) {
	bars, err := parseCMBhavcopy(strings.NewReader(cmBhavcopySample), testDate)
	require.NoError(t, err)
	require.Len(t, bars, 1)

	bar := bars[0]
	assert.Equal(t, "SMALLCO", bar.Symbol)
	assert.Equal(t, 110.0, bar.Close)
	assert.Equal(t, int64(50000), bar.TotalVolume)

	// The CM format carries no delivery data at all.
	assert.Nil(t, bar.DeliveredVolume)
	assert.Nil(t, bar.DeliveredPct)

	require.NotNil(t, bar.PctChange)
	assert.InDelta(t, 10.0, *bar.PctChange, 1e-9)
}

func TestParseBhavcopyEmptyFile(t *testing.T) {
	_, err := parseFullBhavcopy(strings.NewReader("SYMBOL, SERIES\n"), testDate)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestPctChangeGuardsZeroPrevClose(t *testing.T) {
	assert.Nil(t, pctChange(110, 0))

	pct := pctChange(110, 100)
	require.NotNil(t, pct)
	assert.InDelta(t, 10.0, *pct, 1e-9)
}

const indexCloseSample = `Index Name, Index Date, Open Index Value, High Index Value, Low Index Value, Closing Index Value, Points Change, Change(%), Volume, Turnover (Rs. Cr.), P/E, P/B, Div Yield
Nifty 50, 28-08-2026, 24800.00, 24950.00, 24750.00, 24900.55, 100.55, 0.41, 250000000, 25000.00, 22.5, 3.8, 1.2
NIFTY 500, 28-08-2026, 22500.00, 22650.00, 22480.00, 22600.10, 80.10, 0.36, 500000000, 48000.00, 24.1, 3.9, 1.1
Nifty Weird, 28-08-2026, -, -, -, -, -, -, -, -, -, -, -
`

func TestParseIndexCloses(t *testing.T) {
	bars, err := parseIndexCloses(strings.NewReader(indexCloseSample), testDate)
	require.NoError(t, err)
	require.Len(t, bars, 2, "rows without a close value are dropped")

	assert.Equal(t, "Nifty 50", bars[0].IndexName)
	assert.Equal(t, 24900.55, bars[0].Close)
	assert.Equal(t, "NIFTY 500", bars[1].IndexName)
	assert.Equal(t, 22600.10, bars[1].Close)
}

func TestParseIndexClosesEmptyFile(t *testing.T) {
	_, err := parseIndexCloses(strings.NewReader("Index Name, Closing Index Value\n"), testDate)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
