package meetups

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ist builds a UTC instant from local wall-clock components.
func ist(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC).Add(-localOffset)
}

func TestResolveWindow(t *testing.T) {
	// Wednesday, 15 May 2024, 10:00 local
	now := ist(2024, 5, 15, 10, 0, 0)

	t.Run("upcoming is unbounded from now", func(t *testing.T) {
		w, err := ResolveWindow(WindowUpcoming, now)
		require.NoError(t, err)
		assert.Equal(t, now.UTC(), w.Start)
		assert.False(t, w.Bounded())
	})

	t.Run("this-week spans Monday through Sunday local", func(t *testing.T) {
		w, err := ResolveWindow(WindowThisWeek, now)
		require.NoError(t, err)
		assert.Equal(t, ist(2024, 5, 13, 0, 0, 0), w.Start)
		assert.Equal(t, ist(2024, 5, 19, 23, 59, 59), w.End)
		assert.True(t, w.Bounded())
	})

	t.Run("this-weekend spans Saturday and Sunday local", func(t *testing.T) {
		w, err := ResolveWindow(WindowThisWeekend, now)
		require.NoError(t, err)
		assert.Equal(t, ist(2024, 5, 18, 0, 0, 0), w.Start)
		assert.Equal(t, ist(2024, 5, 19, 23, 59, 59), w.End)
	})

	t.Run("week boundaries from a Monday", func(t *testing.T) {
		monday := ist(2024, 5, 13, 0, 0, 0)
		w, err := ResolveWindow(WindowThisWeek, monday)
		require.NoError(t, err)
		assert.Equal(t, ist(2024, 5, 13, 0, 0, 0), w.Start)
		assert.Equal(t, ist(2024, 5, 19, 23, 59, 59), w.End)
	})

	t.Run("week boundaries from a Sunday night", func(t *testing.T) {
		sunday := ist(2024, 5, 19, 23, 59, 59)
		w, err := ResolveWindow(WindowThisWeek, sunday)
		require.NoError(t, err)
		assert.Equal(t, ist(2024, 5, 13, 0, 0, 0), w.Start)
		assert.Equal(t, ist(2024, 5, 19, 23, 59, 59), w.End)
	})

	t.Run("weekend window on a Saturday covers the current weekend", func(t *testing.T) {
		saturday := ist(2024, 5, 18, 14, 0, 0)
		w, err := ResolveWindow(WindowThisWeekend, saturday)
		require.NoError(t, err)
		assert.Equal(t, ist(2024, 5, 18, 0, 0, 0), w.Start)
		assert.Equal(t, ist(2024, 5, 19, 23, 59, 59), w.End)
	})

	t.Run("local date change near UTC midnight", func(t *testing.T) {
		// 20:00 UTC Sunday is already 01:30 Monday local, so the week rolls
		utcSundayEvening := time.Date(2024, 5, 19, 20, 0, 0, 0, time.UTC)
		w, err := ResolveWindow(WindowThisWeek, utcSundayEvening)
		require.NoError(t, err)
		assert.Equal(t, ist(2024, 5, 20, 0, 0, 0), w.Start)
		assert.Equal(t, ist(2024, 5, 26, 23, 59, 59), w.End)
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		_, err := ResolveWindow(WindowKind("tomorrow"), now)
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})
}

func TestParseWindowKind(t *testing.T) {
	for _, valid := range []string{"upcoming", "this-week", "this-weekend"} {
		_, err := ParseWindowKind(valid)
		assert.NoError(t, err, valid)
	}

	_, err := ParseWindowKind("next-week")
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestDailyQuotaWindow(t *testing.T) {
	t.Run("after the reset the window anchors today", func(t *testing.T) {
		now := ist(2024, 5, 15, 10, 0, 0)
		w := DailyQuotaWindow(now)
		assert.Equal(t, ist(2024, 5, 15, 4, 30, 0), w.Start)
		assert.Equal(t, ist(2024, 5, 16, 4, 29, 59), w.End)
	})

	t.Run("one second before the reset still belongs to yesterday", func(t *testing.T) {
		now := ist(2024, 5, 15, 4, 29, 59)
		w := DailyQuotaWindow(now)
		assert.Equal(t, ist(2024, 5, 14, 4, 30, 0), w.Start)
		assert.Equal(t, ist(2024, 5, 15, 4, 29, 59), w.End)
	})

	t.Run("exactly at the reset the window rolls over", func(t *testing.T) {
		now := ist(2024, 5, 15, 4, 30, 0)
		w := DailyQuotaWindow(now)
		assert.Equal(t, ist(2024, 5, 15, 4, 30, 0), w.Start)
	})

	t.Run("window always contains now", func(t *testing.T) {
		for hour := 0; hour < 24; hour++ {
			now := ist(2024, 5, 15, hour, 0, 0)
			w := DailyQuotaWindow(now)
			assert.False(t, now.Before(w.Start), "hour %d", hour)
			assert.False(t, now.After(w.End), "hour %d", hour)
		}
	})
}
