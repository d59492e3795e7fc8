package traffic

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	t.Parallel()

	t.Run("valid day should work", func(t *testing.T) {
		t.Parallel()

		d, err := ParseDay("2024-01-05")
		require.NoError(t, err)
		assert.Equal(t, "2024-01-05", d.String())
	})
	t.Run("epoch is day zero", func(t *testing.T) {
		t.Parallel()

		d, err := ParseDay("1970-01-01")
		require.NoError(t, err)
		assert.Equal(t, Day(0), d)
	})
	t.Run("malformed day should error", func(t *testing.T) {
		t.Parallel()

		for _, s := range []string{"", "2024-13-01", "2024/01/05", "yesterday", "2024-01-05T00:00:00Z"} {
			_, err := ParseDay(s)
			assert.True(t, errors.Is(err, ErrInvalidRange), "input %q", s)
		}
	})
}

func TestDay_Next(t *testing.T) {
	t.Parallel()

	t.Run("crosses month and year boundaries", func(t *testing.T) {
		t.Parallel()

		d, _ := ParseDay("2023-12-31")
		assert.Equal(t, "2024-01-01", d.Next().String())

		d, _ = ParseDay("2024-02-28")
		assert.Equal(t, "2024-02-29", d.Next().String())
		assert.Equal(t, "2024-03-01", d.Next().Next().String())
	})
	t.Run("daylight saving transitions do not skip or repeat days", func(t *testing.T) {
		t.Parallel()

		// Europe switches on the last Sunday of March and October, US on the second Sunday of March
		start, _ := ParseDay("2024-03-09")
		end, _ := ParseDay("2024-11-05")

		prev := start
		count := 1
		for d := start.Next(); d <= end; d = d.Next() {
			assert.Equal(t, prev.Time().AddDate(0, 0, 1).Format(DayLayout), d.String())
			prev = d
			count++
		}
		assert.Equal(t, DaysInclusive(start, end), count)
	})
}

func TestDayOf(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+10", 10*3600)
	// 2024-01-06 08:00 in UTC+10 is still 2024-01-05 in UTC
	instant := time.Date(2024, 1, 6, 8, 0, 0, 0, loc)
	assert.Equal(t, "2024-01-05", DayOf(instant).String())
}

func TestDaysInclusive(t *testing.T) {
	t.Parallel()

	a, _ := ParseDay("2024-01-01")
	b, _ := ParseDay("2024-01-03")

	assert.Equal(t, 3, DaysInclusive(a, b))
	assert.Equal(t, 1, DaysInclusive(a, a))
	assert.Equal(t, 0, DaysInclusive(b, a))
}

func TestDayKeyFromTimestamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024-01-05", DayKeyFromTimestamp("2024-01-05T00:00:00Z"))
	assert.Equal(t, "2024-01-05", DayKeyFromTimestamp("2024-01-05T23:30:00Z"))
	assert.Equal(t, "2024-01-05", DayKeyFromTimestamp("2024-01-05"))
	assert.Equal(t, "garbage", DayKeyFromTimestamp("garbage"))
}
