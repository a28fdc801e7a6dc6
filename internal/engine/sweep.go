package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/clock"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/timer"
)

// SweepOnce refreshes the holiday snapshot, then evaluates breaches on every
// open timer. Tickets whose lock is held are skipped; the next pass picks
// them up.
func (e *Engine) SweepOnce(ctx context.Context, now time.Time) error {
	if err := e.RefreshCalendar(ctx); err != nil {
		return fmt.Errorf("refresh calendar: %w", err)
	}

	ids, err := e.timers.ListOpenTicketIDs(ctx)
	if err != nil {
		return fmt.Errorf("list open timers: %w", err)
	}

	skipped := 0
	for _, ticketID := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := e.withTicketLock(ctx, ticketID, func(txCtx context.Context, publish *[]events.Event) error {
			return e.mutateTimer(txCtx, ticketID, publish, func(t *timer.Timer) error {
				t.EvaluateBreach(now)
				return nil
			})
		})
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrBusy):
			skipped++
		case errors.Is(err, domain.ErrTimerNotFound):
			// timer resolved between listing and locking
		default:
			e.logger.Error("sweep: evaluate ticket failed",
				zap.String("ticket_id", ticketID), zap.Error(err))
		}
	}

	e.metrics.RecordSweep(len(ids), skipped)
	e.logger.Debug("sweep complete",
		zap.Int("scanned", len(ids)), zap.Int("skipped", skipped))
	return nil
}

// Sweeper schedules periodic breach sweeps.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	clock    clock.Clock
	logger   *zap.Logger
	cron     *cron.Cron
}

// NewSweeper creates a sweeper that runs every interval. Overlapping runs are
// skipped rather than queued.
func NewSweeper(engine *Engine, interval time.Duration, clk clock.Clock, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		engine:   engine,
		interval: interval,
		clock:    clk,
		logger:   logger,
	}
}

// Start begins the schedule and returns immediately.
func (s *Sweeper) Start(ctx context.Context) error {
	cronLogger := &zapCronLogger{logger: s.logger.Named("sweeper")}
	s.cron = cron.New(
		cron.WithChain(
			cron.SkipIfStillRunning(cronLogger),
			cron.Recover(cronLogger),
		),
	)
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		if err := s.engine.SweepOnce(ctx, s.clock.Now()); err != nil {
			s.logger.Error("sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("sweeper started", zap.Duration("interval", s.interval))
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("sweeper stopped")
}

// zapCronLogger adapts zap to the cron.Logger interface.
type zapCronLogger struct {
	logger *zap.Logger
}

func (l *zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Infow(msg, keysAndValues...)
}

func (l *zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
