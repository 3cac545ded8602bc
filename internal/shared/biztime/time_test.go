package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name     string
		in       time.Time
		months   int
		expected time.Time
	}{
		{
			name:     "plain month",
			in:       time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2025, 4, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "jan 31 clamps to feb 28 in non-leap year",
			in:       time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "jan 31 clamps to feb 29 in leap year",
			in:       time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "crosses year boundary",
			in:       time.Date(2025, 11, 30, 8, 0, 0, 0, time.UTC),
			months:   3,
			expected: time.Date(2026, 2, 28, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "twelve months keeps day",
			in:       time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
			months:   12,
			expected: time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "aug 31 plus one month is sep 30",
			in:       time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AddMonths(tc.in, tc.months))
		})
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 28, DaysIn(2025, time.February))
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 31, DaysIn(2025, time.December))
	assert.Equal(t, 30, DaysIn(2025, time.April))
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	MustInit(DefaultTimezone)
	loc := Location()

	from := time.Date(2025, 6, 1, 0, 5, 0, 0, loc)
	lateFrom := time.Date(2025, 6, 1, 23, 55, 0, 0, loc)
	to := time.Date(2025, 6, 11, 12, 0, 0, 0, loc)

	assert.Equal(t, 10, DaysBetween(from, to))
	assert.Equal(t, 10, DaysBetween(lateFrom, to))
	assert.Equal(t, 0, DaysBetween(to, to.Add(time.Hour)))
	assert.Equal(t, -10, DaysBetween(to, from))
}

func TestIsBeforeDay(t *testing.T) {
	MustInit(DefaultTimezone)
	loc := Location()

	today := time.Date(2025, 6, 10, 9, 0, 0, 0, loc)

	assert.True(t, IsBeforeDay(time.Date(2025, 6, 9, 23, 59, 0, 0, loc), today))
	assert.False(t, IsBeforeDay(time.Date(2025, 6, 10, 0, 0, 0, 0, loc), today))
	assert.False(t, IsBeforeDay(time.Date(2025, 6, 11, 0, 0, 0, 0, loc), today))
}

func TestParseDateInBizTimezone(t *testing.T) {
	MustInit(DefaultTimezone)

	got, err := ParseDateInBizTimezone("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", FormatDate(got))

	_, err = ParseDateInBizTimezone("28/02/2025")
	assert.Error(t, err)
}
