package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sla-engine/internal/api/http"
	"github.com/spec-kit/sla-engine/internal/api/http/handlers"
	"github.com/spec-kit/sla-engine/internal/auth"
	"github.com/spec-kit/sla-engine/internal/calendar"
	"github.com/spec-kit/sla-engine/internal/clock"
	"github.com/spec-kit/sla-engine/internal/config"
	"github.com/spec-kit/sla-engine/internal/engine"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/locks"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/persistence"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/service"
	"github.com/spec-kit/sla-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	window, err := calendar.ParseWindow(cfg.Engine.BusinessDayStart, cfg.Engine.BusinessDayEnd)
	if err != nil {
		logger.Fatal("invalid business window", zap.Error(err))
	}

	var redis *persistence.Redis
	var lockManager locks.Manager
	if cfg.Redis.Addr != "" {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		lockManager = locks.NewRedisManager(redis.Client, logger,
			cfg.Engine.LockTTL(), cfg.Engine.LockWait(), cfg.Engine.LockRetry())
	} else {
		logger.Info("redis not configured, using in-process ticket locks")
		lockManager = locks.NewMemoryManager(cfg.Engine.LockWait())
	}

	pool := pg.PoolHandle()
	statusRepo := repository.NewStatusRepository(pool)
	transitionRepo := repository.NewTransitionRepository(pool)
	slaRepo := repository.NewSLARepository(pool)
	holidayRepo := repository.NewHolidayRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	timerRepo := repository.NewTimerRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	eng := engine.New(engine.Dependencies{
		Tickets:     ticketRepo,
		Timers:      timerRepo,
		Statuses:    statusRepo,
		Transitions: transitionRepo,
		Policies:    slaRepo,
		Holidays:    holidayRepo,
		Tx:          persistence.NewTxRunner(pool),
		Locks:       lockManager,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Metrics:     metrics,
		Window:      window,
	})
	if err := eng.RefreshCalendar(ctx); err != nil {
		logger.Fatal("failed to load holidays", zap.Error(err))
	}

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	clk := clock.NewSystem()
	sweeper := engine.NewSweeper(eng, cfg.Engine.SweepInterval(), clk, logger)
	if err := sweeper.Start(ctx); err != nil {
		logger.Fatal("failed to start sweeper", zap.Error(err))
	}
	defer sweeper.Stop()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, cfg.Auth.InternalAPIKeyHash)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		SLA:    handlers.NewSLAHandler(eng, clk),
		Admin: handlers.NewAdminHandler(handlers.AdminDependencies{
			Statuses:    statusRepo,
			Transitions: transitionRepo,
			Policies:    slaRepo,
			Holidays:    holidayRepo,
			Engine:      eng,
			Metrics:     metrics,
		}),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("listening", zap.String("addr", cfg.App.Addr()))

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
