package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMostRecentTradingDay(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "weekday passes through",
			in:   time.Date(2026, 8, 26, 14, 30, 0, 0, time.UTC), // Wednesday
			want: time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "saturday walks to friday",
			in:   time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday walks to friday",
			in:   time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC),
			want: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "time of day is dropped",
			in:   time.Date(2026, 8, 31, 19, 45, 12, 0, time.UTC), // Monday evening
			want: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MostRecentTradingDay(tt.in))
		})
	}
}
