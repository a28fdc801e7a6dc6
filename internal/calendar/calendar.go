package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// Window is the daily business-hours span. Start is inclusive, End exclusive,
// expressed as minutes into the day.
type Window struct {
	StartMinute int
	EndMinute   int
}

// DefaultWindow is 09:00-18:00.
var DefaultWindow = Window{StartMinute: 9 * 60, EndMinute: 18 * 60}

// ParseWindow reads "HH:MM" boundaries into a Window.
func ParseWindow(start, end string) (Window, error) {
	s, err := parseClock(start)
	if err != nil {
		return Window{}, fmt.Errorf("business day start: %w", err)
	}
	e, err := parseClock(end)
	if err != nil {
		return Window{}, fmt.Errorf("business day end: %w", err)
	}
	if e <= s {
		return Window{}, fmt.Errorf("business day end %s not after start %s", end, start)
	}
	return Window{StartMinute: s, EndMinute: e}, nil
}

func parseClock(raw string) (int, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return hour*60 + minute, nil
}

// Calendar computes billable minutes against a fixed business window and a
// holiday snapshot. Values are immutable; build a new Calendar to pick up
// holiday changes.
type Calendar struct {
	window    Window
	exact     map[string]struct{}
	recurring map[string]struct{}
}

// New builds a calendar from the window and holiday snapshot.
func New(window Window, holidays []domain.Holiday) *Calendar {
	if window.EndMinute <= window.StartMinute {
		window = DefaultWindow
	}
	cal := &Calendar{
		window:    window,
		exact:     make(map[string]struct{}),
		recurring: make(map[string]struct{}),
	}
	for _, holiday := range holidays {
		if holiday.IsRecurring {
			cal.recurring[holiday.Day.Format("01-02")] = struct{}{}
		} else {
			cal.exact[holiday.Day.Format("2006-01-02")] = struct{}{}
		}
	}
	return cal
}

// IsBusinessDay reports whether t falls on a weekday that is not a holiday.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	if _, ok := c.exact[t.Format("2006-01-02")]; ok {
		return false
	}
	if _, ok := c.recurring[t.Format("01-02")]; ok {
		return false
	}
	return true
}

// ElapsedMinutes returns the billable minutes between start and end, clamped
// to >= 0. With businessHoursOnly it counts only minutes inside the business
// window on business days; an interval entirely outside the window yields 0.
func (c *Calendar) ElapsedMinutes(start, end time.Time, businessHoursOnly bool) int {
	if !end.After(start) {
		return 0
	}
	if !businessHoursOnly {
		return int(end.Sub(start) / time.Minute)
	}

	total := 0
	for day := startOfDay(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		if !c.IsBusinessDay(day) {
			continue
		}
		windowStart := day.Add(time.Duration(c.window.StartMinute) * time.Minute)
		windowEnd := day.Add(time.Duration(c.window.EndMinute) * time.Minute)
		from := laterOf(start, windowStart)
		to := earlierOf(end, windowEnd)
		if to.After(from) {
			total += int(to.Sub(from) / time.Minute)
		}
	}
	return total
}

// AddMinutes returns the instant at which `minutes` billable minutes will have
// elapsed after start. It is the inverse used to turn SLA targets into due
// dates.
func (c *Calendar) AddMinutes(start time.Time, minutes int, businessHoursOnly bool) time.Time {
	if minutes <= 0 {
		return start
	}
	if !businessHoursOnly {
		return start.Add(time.Duration(minutes) * time.Minute)
	}

	// Bounded walk in case configuration leaves no business days at all.
	const maxWalkDays = 3660

	remaining := minutes
	cursor := start
	for i := 0; i < maxWalkDays; i++ {
		day := startOfDay(cursor)
		if c.IsBusinessDay(day) {
			windowStart := day.Add(time.Duration(c.window.StartMinute) * time.Minute)
			windowEnd := day.Add(time.Duration(c.window.EndMinute) * time.Minute)
			if cursor.Before(windowStart) {
				cursor = windowStart
			}
			if cursor.Before(windowEnd) {
				available := int(windowEnd.Sub(cursor) / time.Minute)
				if remaining <= available {
					return cursor.Add(time.Duration(remaining) * time.Minute)
				}
				remaining -= available
			}
		}
		cursor = day.AddDate(0, 0, 1)
	}
	return cursor
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
