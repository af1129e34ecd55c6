package nse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bulkDealPage = `<html><body>
<table>
<thead><tr><th>Symbol</th><th>Client Name</th><th>Buy/Sell</th><th>Quantity</th><th>Price</th></tr></thead>
<tbody>
<tr><td>SMALLCO</td><td>BIG OPERATOR LLP</td><td>SELL</td><td>1,50,000</td><td>108.50</td></tr>
<tr><td>OTHERCO</td><td>SOME FUND</td><td>BUY</td><td>20000</td><td>55.25</td></tr>
<tr><td></td><td></td><td></td><td></td><td></td></tr>
</tbody>
</table>
</body></html>`

func TestParseBulkDealTable(t *testing.T) {
	deals, err := parseBulkDealTable(strings.NewReader(bulkDealPage), testDate)
	require.NoError(t, err)
	require.Len(t, deals, 2, "blank rows are dropped")

	sell := deals[0]
	assert.Equal(t, "SMALLCO", sell.Symbol)
	assert.Equal(t, "BIG OPERATOR LLP", sell.ClientName)
	assert.Equal(t, "SELL", sell.BuySell)
	assert.Equal(t, int64(150000), sell.Quantity, "Indian digit grouping is stripped")
	assert.Equal(t, 108.50, sell.Price)
	assert.Equal(t, testDate, sell.TradeDate)

	buy := deals[1]
	assert.Equal(t, int64(20000), buy.Quantity)
}

func TestParseBulkDealTableNoTable(t *testing.T) {
	_, err := parseBulkDealTable(strings.NewReader("<html><body>nothing here</body></html>"), testDate)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
