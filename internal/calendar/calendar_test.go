package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestParseWindow(t *testing.T) {
	window, err := ParseWindow("09:00", "18:00")
	require.NoError(t, err)
	assert.Equal(t, 9*60, window.StartMinute)
	assert.Equal(t, 18*60, window.EndMinute)

	_, err = ParseWindow("18:00", "09:00")
	assert.Error(t, err)

	_, err = ParseWindow("9am", "18:00")
	assert.Error(t, err)
}

func TestElapsedMinutes_WallClock(t *testing.T) {
	cal := New(DefaultWindow, nil)

	// Monday 2025-06-02.
	start := date(2025, time.June, 2, 10, 0)

	assert.Equal(t, 0, cal.ElapsedMinutes(start, start, false))
	assert.Equal(t, 0, cal.ElapsedMinutes(start, start, true))
	assert.Equal(t, 0, cal.ElapsedMinutes(start, start.Add(-time.Hour), false), "end before start clamps to zero")
	assert.Equal(t, 90, cal.ElapsedMinutes(start, start.Add(90*time.Minute), false))
	// Wall-clock counting crosses nights and weekends untouched.
	assert.Equal(t, 7*24*60, cal.ElapsedMinutes(start, start.AddDate(0, 0, 7), false))
}

func TestElapsedMinutes_BusinessHours(t *testing.T) {
	cal := New(DefaultWindow, nil)

	monday := date(2025, time.June, 2, 0, 0)

	t.Run("inside a single day", func(t *testing.T) {
		got := cal.ElapsedMinutes(monday.Add(10*time.Hour), monday.Add(12*time.Hour), true)
		assert.Equal(t, 120, got)
	})

	t.Run("clamps partial days to the window", func(t *testing.T) {
		// 07:00 -> 10:00 bills only 09:00 -> 10:00.
		got := cal.ElapsedMinutes(monday.Add(7*time.Hour), monday.Add(10*time.Hour), true)
		assert.Equal(t, 60, got)

		// 17:00 -> 20:00 bills only 17:00 -> 18:00.
		got = cal.ElapsedMinutes(monday.Add(17*time.Hour), monday.Add(20*time.Hour), true)
		assert.Equal(t, 60, got)
	})

	t.Run("entirely outside the window yields zero", func(t *testing.T) {
		got := cal.ElapsedMinutes(monday.Add(19*time.Hour), monday.Add(22*time.Hour), true)
		assert.Equal(t, 0, got)
	})

	t.Run("spans overnight and a weekend", func(t *testing.T) {
		// Friday 2025-06-06 17:00 -> Monday 2025-06-09 10:00:
		// 60 minutes Friday + 60 minutes Monday.
		friday := date(2025, time.June, 6, 17, 0)
		nextMonday := date(2025, time.June, 9, 10, 0)
		assert.Equal(t, 120, cal.ElapsedMinutes(friday, nextMonday, true))
	})
}

func TestElapsedMinutes_Holidays(t *testing.T) {
	holidays := []domain.Holiday{
		{Day: date(2025, time.June, 3, 0, 0), Name: "one-off", IsRecurring: false},
		{Day: date(2000, time.December, 25, 0, 0), Name: "yearly", IsRecurring: true},
	}
	cal := New(DefaultWindow, holidays)

	t.Run("exact holiday excluded only in its year", func(t *testing.T) {
		// Tuesday 2025-06-03 is excluded.
		start := date(2025, time.June, 2, 9, 0)
		end := date(2025, time.June, 4, 9, 0)
		assert.Equal(t, 9*60, cal.ElapsedMinutes(start, end, true))

		// The same month/day one year later is a normal business day.
		assert.True(t, cal.IsBusinessDay(date(2026, time.June, 3, 0, 0)))
	})

	t.Run("recurring holiday matches month and day every year", func(t *testing.T) {
		assert.False(t, cal.IsBusinessDay(date(2025, time.December, 25, 0, 0)))
		assert.False(t, cal.IsBusinessDay(date(2031, time.December, 25, 0, 0)))
	})
}

func TestAddMinutes(t *testing.T) {
	cal := New(DefaultWindow, []domain.Holiday{
		{Day: date(2025, time.June, 4, 0, 0), Name: "midweek", IsRecurring: false},
	})

	t.Run("wall clock is plain addition", func(t *testing.T) {
		start := date(2025, time.June, 2, 10, 0)
		assert.Equal(t, start.Add(45*time.Minute), cal.AddMinutes(start, 45, false))
		assert.Equal(t, start, cal.AddMinutes(start, 0, false))
	})

	t.Run("business minutes stay inside the day", func(t *testing.T) {
		start := date(2025, time.June, 2, 10, 0)
		assert.Equal(t, date(2025, time.June, 2, 12, 0), cal.AddMinutes(start, 120, true))
	})

	t.Run("rolls over to the next business day", func(t *testing.T) {
		// Monday 17:30 + 60 business minutes: 30 left Monday, 30 Tuesday.
		start := date(2025, time.June, 2, 17, 30)
		assert.Equal(t, date(2025, time.June, 3, 9, 30), cal.AddMinutes(start, 60, true))
	})

	t.Run("skips weekends and holidays", func(t *testing.T) {
		// Tuesday 17:00 + 120: 60 Tuesday, Wednesday is a holiday, 60 Thursday.
		start := date(2025, time.June, 3, 17, 0)
		assert.Equal(t, date(2025, time.June, 5, 10, 0), cal.AddMinutes(start, 120, true))

		// Friday 17:00 + 120: 60 Friday, 60 next Monday.
		friday := date(2025, time.June, 6, 17, 0)
		assert.Equal(t, date(2025, time.June, 9, 10, 0), cal.AddMinutes(friday, 120, true))
	})

	t.Run("start before the window snaps forward", func(t *testing.T) {
		start := date(2025, time.June, 2, 6, 0)
		assert.Equal(t, date(2025, time.June, 2, 9, 30), cal.AddMinutes(start, 30, true))
	})

	t.Run("round trips with ElapsedMinutes", func(t *testing.T) {
		start := date(2025, time.June, 2, 16, 45)
		due := cal.AddMinutes(start, 300, true)
		assert.Equal(t, 300, cal.ElapsedMinutes(start, due, true))
	})
}
