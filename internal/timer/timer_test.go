package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/calendar"
	"github.com/spec-kit/sla-engine/internal/domain"
)

var createdAt = time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC) // Monday

func highPolicy(businessHours bool) *domain.SLAPolicy {
	return &domain.SLAPolicy{
		ID:                    "sla-high",
		ProductID:             "prod-x",
		Priority:              domain.TicketPriorityHigh,
		ResponseTimeMinutes:   30,
		ResolutionTimeMinutes: 240,
		BusinessHoursOnly:     businessHours,
		IsActive:              true,
	}
}

func newTimer(t *testing.T, policy *domain.SLAPolicy) *Timer {
	t.Helper()
	cal := calendar.New(calendar.DefaultWindow, nil)
	ticket := &domain.Ticket{ID: "tck-1", ProductID: "prod-x", Priority: domain.TicketPriorityHigh, CreatedAt: createdAt}
	return New(Start(ticket, policy, cal, createdAt), cal)
}

func TestStart_ComputesDueDates(t *testing.T) {
	tm := newTimer(t, highPolicy(false))
	m := tm.Metrics()

	require.NotNil(t, m.ResponseDue)
	require.NotNil(t, m.ResolutionDue)
	assert.Equal(t, createdAt.Add(30*time.Minute), *m.ResponseDue)
	assert.Equal(t, createdAt.Add(240*time.Minute), *m.ResolutionDue)
	assert.False(t, m.CurrentlyPaused)
	assert.True(t, m.HasSLA())
}

func TestStart_BusinessHoursDueDates(t *testing.T) {
	// Created Monday 17:50; 30 business minutes spill into Tuesday.
	cal := calendar.New(calendar.DefaultWindow, nil)
	lateCreated := time.Date(2025, time.June, 2, 17, 50, 0, 0, time.UTC)
	ticket := &domain.Ticket{ID: "tck-2", CreatedAt: lateCreated}
	m := Start(ticket, highPolicy(true), cal, lateCreated)

	require.NotNil(t, m.ResponseDue)
	assert.Equal(t, time.Date(2025, time.June, 3, 9, 20, 0, 0, time.UTC), *m.ResponseDue)
}

func TestStart_NoPolicy(t *testing.T) {
	tm := newTimer(t, nil)
	m := tm.Metrics()

	assert.Nil(t, m.ResponseDue)
	assert.Nil(t, m.ResolutionDue)
	assert.False(t, m.HasSLA())

	// Scenario: evaluation never flags a ticket without SLA, no matter how late.
	tm.EvaluateBreach(createdAt.AddDate(0, 0, 30))
	assert.False(t, m.ResponseBreached)
	assert.False(t, m.ResolutionBreached)
}

func TestMarkFirstResponse(t *testing.T) {
	t.Run("late response breaches", func(t *testing.T) {
		// Scenario: 30 min response target, first response at T+45.
		tm := newTimer(t, highPolicy(false))
		require.NoError(t, tm.MarkFirstResponse(createdAt.Add(45*time.Minute)))
		assert.True(t, tm.Metrics().ResponseBreached)
	})

	t.Run("timely response does not breach", func(t *testing.T) {
		tm := newTimer(t, highPolicy(false))
		require.NoError(t, tm.MarkFirstResponse(createdAt.Add(20*time.Minute)))
		assert.False(t, tm.Metrics().ResponseBreached)
	})

	t.Run("idempotent", func(t *testing.T) {
		tm := newTimer(t, highPolicy(false))
		first := createdAt.Add(20 * time.Minute)
		require.NoError(t, tm.MarkFirstResponse(first))
		require.NoError(t, tm.MarkFirstResponse(createdAt.Add(300*time.Minute)))
		assert.Equal(t, first, *tm.Metrics().FirstResponseAt)
		assert.False(t, tm.Metrics().ResponseBreached)
	})
}

func TestPauseResume(t *testing.T) {
	t.Run("pause extends due dates by the paused duration", func(t *testing.T) {
		// Scenario: pause T+10, resume T+70 -> response due becomes T+90 and a
		// response at T+45 is within the extended deadline.
		tm := newTimer(t, highPolicy(false))
		m := tm.Metrics()
		resolutionBefore := *m.ResolutionDue

		require.NoError(t, tm.Pause(createdAt.Add(10*time.Minute), "waiting on customer"))
		assert.True(t, m.CurrentlyPaused)
		require.NoError(t, tm.Resume(createdAt.Add(70*time.Minute)))

		assert.Equal(t, createdAt.Add(90*time.Minute), *m.ResponseDue)
		assert.Equal(t, resolutionBefore.Add(60*time.Minute), *m.ResolutionDue)
		assert.Equal(t, 60, m.TotalPausedMinutes)
		assert.False(t, m.CurrentlyPaused)

		require.NoError(t, tm.MarkFirstResponse(createdAt.Add(45*time.Minute)))
		assert.False(t, m.ResponseBreached)
	})

	t.Run("double pause fails and leaves state unchanged", func(t *testing.T) {
		tm := newTimer(t, highPolicy(false))
		m := tm.Metrics()
		require.NoError(t, tm.Pause(createdAt.Add(10*time.Minute), "first"))

		err := tm.Pause(createdAt.Add(20*time.Minute), "second")
		assert.ErrorIs(t, err, domain.ErrAlreadyPaused)
		assert.Len(t, m.PauseHistory, 1)
		assert.True(t, m.CurrentlyPaused)
	})

	t.Run("resume without pause fails", func(t *testing.T) {
		tm := newTimer(t, highPolicy(false))
		assert.ErrorIs(t, tm.Resume(createdAt.Add(time.Minute)), domain.ErrNotPaused)
	})

	t.Run("business-hours pause bills only business minutes", func(t *testing.T) {
		cal := calendar.New(calendar.DefaultWindow, nil)
		ticket := &domain.Ticket{ID: "tck-3", CreatedAt: createdAt}
		tm := New(Start(ticket, highPolicy(true), cal, createdAt), cal)
		m := tm.Metrics()
		responseBefore := *m.ResponseDue

		// Paused Monday 17:00 through Tuesday 10:00: 60 + 60 business minutes.
		require.NoError(t, tm.Pause(time.Date(2025, time.June, 2, 17, 0, 0, 0, time.UTC), "overnight"))
		require.NoError(t, tm.Resume(time.Date(2025, time.June, 3, 10, 0, 0, 0, time.UTC)))

		assert.Equal(t, 120, m.TotalPausedMinutes)
		assert.Equal(t, responseBefore.Add(120*time.Minute), *m.ResponseDue)
	})

	t.Run("audit trail keeps every interval in order", func(t *testing.T) {
		tm := newTimer(t, highPolicy(false))
		m := tm.Metrics()

		require.NoError(t, tm.Pause(createdAt.Add(5*time.Minute), "a"))
		require.NoError(t, tm.Resume(createdAt.Add(10*time.Minute)))
		require.NoError(t, tm.Pause(createdAt.Add(20*time.Minute), "b"))
		require.NoError(t, tm.Resume(createdAt.Add(35*time.Minute)))

		require.Len(t, m.PauseHistory, 2)
		assert.NotNil(t, m.PauseHistory[0].ResumedAt)
		assert.NotNil(t, m.PauseHistory[1].ResumedAt)
		assert.Equal(t, "a", m.PauseHistory[0].Reason)
		assert.Equal(t, 20, m.TotalPausedMinutes)
		assert.Nil(t, m.OpenPause())
	})
}

func TestEvaluateBreach(t *testing.T) {
	t.Run("response and resolution deadlines", func(t *testing.T) {
		tm := newTimer(t, highPolicy(false))
		m := tm.Metrics()

		tm.EvaluateBreach(createdAt.Add(29 * time.Minute))
		assert.False(t, m.ResponseBreached)

		tm.EvaluateBreach(createdAt.Add(31 * time.Minute))
		assert.True(t, m.ResponseBreached)
		assert.False(t, m.ResolutionBreached)

		tm.EvaluateBreach(createdAt.Add(241 * time.Minute))
		assert.True(t, m.ResolutionBreached)
	})

	t.Run("responded tickets stop response evaluation", func(t *testing.T) {
		tm := newTimer(t, highPolicy(false))
		require.NoError(t, tm.MarkFirstResponse(createdAt.Add(10*time.Minute)))
		tm.EvaluateBreach(createdAt.Add(100 * time.Minute))
		assert.False(t, tm.Metrics().ResponseBreached)
	})

	t.Run("paused timers are skipped", func(t *testing.T) {
		tm := newTimer(t, highPolicy(false))
		require.NoError(t, tm.Pause(createdAt.Add(10*time.Minute), "hold"))
		tm.EvaluateBreach(createdAt.Add(400 * time.Minute))
		assert.False(t, tm.Metrics().ResponseBreached)
		assert.False(t, tm.Metrics().ResolutionBreached)
	})

	t.Run("flags are monotonic", func(t *testing.T) {
		tm := newTimer(t, highPolicy(false))
		m := tm.Metrics()
		tm.EvaluateBreach(createdAt.Add(31 * time.Minute))
		require.True(t, m.ResponseBreached)

		// Nothing that follows may clear a raised flag.
		require.NoError(t, tm.MarkFirstResponse(createdAt.Add(32*time.Minute)))
		require.NoError(t, tm.Pause(createdAt.Add(40*time.Minute), "hold"))
		require.NoError(t, tm.Resume(createdAt.Add(100*time.Minute)))
		tm.EvaluateBreach(createdAt.Add(101 * time.Minute))
		require.NoError(t, tm.MarkResolved(createdAt.Add(120*time.Minute)))
		assert.True(t, m.ResponseBreached)
	})
}

func TestMarkResolved(t *testing.T) {
	t.Run("late resolution breaches and closes the timer", func(t *testing.T) {
		tm := newTimer(t, highPolicy(false))
		m := tm.Metrics()
		require.NoError(t, tm.MarkResolved(createdAt.Add(241*time.Minute)))
		assert.True(t, m.ResolutionBreached)

		assert.ErrorIs(t, tm.Pause(createdAt.Add(242*time.Minute), "late"), domain.ErrTimerClosed)
		assert.ErrorIs(t, tm.Resume(createdAt.Add(242*time.Minute)), domain.ErrTimerClosed)
		assert.ErrorIs(t, tm.MarkFirstResponse(createdAt.Add(242*time.Minute)), domain.ErrTimerClosed)
	})

	t.Run("implicitly resumes a paused timer", func(t *testing.T) {
		tm := newTimer(t, highPolicy(false))
		m := tm.Metrics()
		require.NoError(t, tm.Pause(createdAt.Add(10*time.Minute), "hold"))
		require.NoError(t, tm.MarkResolved(createdAt.Add(70*time.Minute)))

		assert.False(t, m.CurrentlyPaused)
		assert.Equal(t, 60, m.TotalPausedMinutes)
		require.NotNil(t, m.PauseHistory[0].ResumedAt)
		// The resume pushed the resolution due date out; resolving at T+70 with
		// a due of T+300 is on time.
		assert.False(t, m.ResolutionBreached)
	})

	t.Run("idempotent and keeps the original timestamp", func(t *testing.T) {
		tm := newTimer(t, highPolicy(false))
		m := tm.Metrics()
		first := createdAt.Add(60 * time.Minute)
		require.NoError(t, tm.MarkResolved(first))
		require.NoError(t, tm.MarkResolved(createdAt.Add(500*time.Minute)))
		assert.Equal(t, first, *m.ResolvedAt)
		assert.False(t, m.ResolutionBreached)
	})
}
