package model

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineDateClock(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		date, clock string
		loc         *time.Location
		want        time.Time
	}{
		{"2024-05-15", "09:30", time.UTC, time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)},
		{"2026-03-08", "09:00", ny, time.Date(2026, 3, 8, 9, 0, 0, 0, ny)},
		{"2026-11-01", "09:00", ny, time.Date(2026, 11, 1, 9, 0, 0, 0, ny)},
		{"2026-11-01", "23:45", ny, time.Date(2026, 11, 1, 23, 45, 0, 0, ny)},
	}
	for _, tt := range tests {
		t.Run(tt.date+" "+tt.clock, func(t *testing.T) {
			got, err := CombineDateClock(tt.date, tt.clock, tt.loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, tt.clock, got.Format(ClockLayout))
		})
	}

	_, err = CombineDateClock("2026-13-01", "09:00", time.UTC)
	assert.Error(t, err)
	_, err = CombineDateClock("2026-03-08", "9am", time.UTC)
	assert.Error(t, err)
}
