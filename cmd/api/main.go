package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sla-compliance-service/internal/api/http"
	"github.com/spec-kit/sla-compliance-service/internal/api/http/handlers"
	"github.com/spec-kit/sla-compliance-service/internal/auth"
	"github.com/spec-kit/sla-compliance-service/internal/config"
	"github.com/spec-kit/sla-compliance-service/internal/events"
	"github.com/spec-kit/sla-compliance-service/internal/observability"
	"github.com/spec-kit/sla-compliance-service/internal/persistence"
	"github.com/spec-kit/sla-compliance-service/internal/repository"
	"github.com/spec-kit/sla-compliance-service/internal/schedule"
	"github.com/spec-kit/sla-compliance-service/internal/service"
	"github.com/spec-kit/sla-compliance-service/internal/worker"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	hoursCalc, err := buildCalculator(cfg.Schedule)
	if err != nil {
		logger.Fatal("failed to build business schedule", zap.Error(err))
	}

	pool := pg.PoolHandle()
	ticketSource := repository.NewTicketSource(pool)
	slaRepo := repository.NewSLARepository(pool)
	groupRepo := repository.NewGroupRepository(pool)
	violationRepo := repository.NewViolationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notifier := service.NewNotifierService(dispatcher, logger, cfg.Notification)
	worker.StartNotifier(notifier)

	slaService := service.NewSLAConfigService(service.SLAConfigDependencies{
		Repo:       slaRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err := slaService.RefreshCache(ctx); err != nil {
		logger.Warn("initial sla cache load failed; lookups return no match until refresh", zap.Error(err))
	}

	complianceService := service.NewComplianceService(service.ComplianceDependencies{
		Tickets:        ticketSource,
		SLAConfig:      slaService,
		HoursCalc:      hoursCalc,
		Dispatcher:     dispatcher,
		DashboardCache: persistence.NewPayloadCache(redis, logger),
		Config:         cfg.SLA,
		Logger:         logger,
	})

	violationService := service.NewViolationService(service.ViolationDependencies{
		Tickets:    ticketSource,
		Groups:     groupRepo,
		Violations: violationRepo,
		SLAConfig:  slaService,
		Compliance: complianceService,
		Dispatcher: dispatcher,
		Config:     cfg.SLA,
		Logger:     logger,
	})

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.ServiceTokenTTLHours)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, slaService, complianceService, violationService, metrics),
		Auth:           handlers.NewAuthHandler(tokenManager, cfg.Auth),
		SLA:            handlers.NewSLAHandler(slaService),
		Compliance:     handlers.NewComplianceHandler(complianceService),
		Violations:     handlers.NewViolationHandler(violationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = app.ShutdownWithContext(shutdownCtx)
}

func buildCalculator(cfg config.ScheduleConfig) (*schedule.BusinessHoursCalculator, error) {
	start, err := schedule.ParseClock(cfg.WeekdayStart)
	if err != nil {
		return nil, err
	}
	end, err := schedule.ParseClock(cfg.WeekdayEnd)
	if err != nil {
		return nil, err
	}

	window := schedule.DayWindow{StartMinute: start, EndMinute: end}
	scheduleCfg, err := schedule.NewConfig(map[time.Weekday]schedule.DayWindow{
		time.Monday:    window,
		time.Tuesday:   window,
		time.Wednesday: window,
		time.Thursday:  window,
		time.Friday:    window,
	}, cfg.Holidays, cfg.Timezone)
	if err != nil {
		return nil, err
	}
	return schedule.NewBusinessHoursCalculator(scheduleCfg), nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
