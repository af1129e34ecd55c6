package nse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnouncements(t *testing.T) {
	body := []byte(`[
		{"symbol": "SMALLCO", "desc": "Financial Results", "an_dt": "28-Aug-2026 14:30:00", "sort_date": "2026-08-28 14:30:00", "attchmntText": "Unaudited financial results for the quarter"},
		{"symbol": "DIVCO", "desc": "Dividend", "sort_date": "2026-08-28 10:00:00", "attchmntText": "Interim dividend of Rs 2 per share"},
		{"symbol": "NOISYORG", "desc": "Trading Window", "sort_date": "2026-08-28 09:00:00", "attchmntText": "Closure of trading window"},
		{"symbol": "", "desc": "Results", "sort_date": "2026-08-28"}
	]`)

	events, err := parseAnnouncements(body, testDate)
	require.NoError(t, err)
	require.Len(t, events, 2, "unmatched and symbol-less announcements are dropped")

	results := events[0]
	assert.Equal(t, "SMALLCO", results.Symbol)
	assert.Equal(t, "results", results.EventType)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), results.EventDate)
	assert.Equal(t, "NSE", results.Source)
	assert.True(t, results.IsEarningsOrDividend())

	dividend := events[1]
	assert.Equal(t, "dividend", dividend.EventType)
	assert.True(t, dividend.IsEarningsOrDividend())
}

func TestParseAnnouncementsWrappedResponse(t *testing.T) {
	body := []byte(`{"data": [{"symbol": "BONUSCO", "desc": "Bonus Issue", "sort_date": "2026-08-27 12:00:00"}]}`)

	events, err := parseAnnouncements(body, testDate)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "bonus", events[0].EventType)
	assert.False(t, events[0].IsEarningsOrDividend())
}

func TestParseAnnouncementsBadJSON(t *testing.T) {
	_, err := parseAnnouncements([]byte("<html>blocked</html>"), testDate)
	assert.Error(t, err)
}

func TestMatchKeyword(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Unaudited Financial Results Q1", "results"},
		{"Declaration of Interim DIVIDEND", "dividend"},
		{"Stock Split announcement", "split"},
		{"Signing of MoU with partner", "mou"},
		{"Board meeting intimation", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchKeyword(tt.text), tt.text)
	}
}

func TestAnnouncementDateLayouts(t *testing.T) {
	want := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ann  announcement
		want time.Time
	}{
		{"iso sort_date with time suffix", announcement{SortDate: "2026-08-28 14:30:00"}, want},
		{"legacy an_dt layout", announcement{AnDt: "28-Aug-2026 14:30:00"}, want},
		{"slash layout", announcement{AnnDate: "28/08/2026"}, want},
		{"unparseable falls back to requested date", announcement{SortDate: "whenever"}, testDate},
		{"empty falls back", announcement{}, testDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, announcementDate(tt.ann, testDate))
		})
	}
}
