package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DaysInMonth(tt.year, tt.month), "%d-%02d", tt.year, tt.month)
	}
}

func TestClampedDate(t *testing.T) {
	assert.Equal(t, Date(2024, time.February, 29), ClampedDate(2024, time.February, 31))
	assert.Equal(t, Date(2023, time.February, 28), ClampedDate(2023, time.February, 30))
	assert.Equal(t, Date(2024, time.March, 15), ClampedDate(2024, time.March, 15))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 14, DaysBetween(Date(2024, 1, 1), Date(2024, 1, 15)))
	assert.Equal(t, -14, DaysBetween(Date(2024, 1, 15), Date(2024, 1, 1)))
	// Time-of-day is ignored.
	late := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(late, Date(2024, 3, 10)))
	// Spans longer than time.Duration can hold.
	assert.Equal(t, 154863, DaysBetween(Date(1600, 1, 1), Date(2024, 1, 1)))
	assert.Equal(t, -154863, DaysBetween(Date(2024, 1, 1), Date(1600, 1, 1)))
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(Date(2024, time.February, 10))
	assert.Equal(t, Date(2024, time.February, 1), first)
	assert.Equal(t, Date(2024, time.February, 29), last)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, Date(2024, time.January, 31), d)

	_, err = ParseDate("01/31/2024")
	assert.Error(t, err)
}

func TestFrequencyString(t *testing.T) {
	assert.Equal(t, "monthly", Frequency{Kind: FrequencyMonthly}.String())
	assert.Equal(t, "custom-interval(10 days)", Frequency{Kind: FrequencyCustom, IntervalDays: 10}.String())
}
