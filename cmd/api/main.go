package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/easyevent/internal/api/http"
	"github.com/spec-kit/easyevent/internal/api/http/handlers"
	"github.com/spec-kit/easyevent/internal/auth"
	"github.com/spec-kit/easyevent/internal/config"
	"github.com/spec-kit/easyevent/internal/events"
	"github.com/spec-kit/easyevent/internal/observability"
	"github.com/spec-kit/easyevent/internal/persistence"
	"github.com/spec-kit/easyevent/internal/repository"
	"github.com/spec-kit/easyevent/internal/service"
	"github.com/spec-kit/easyevent/internal/worker"
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

	listingCache := persistence.NewListingCache(redis, cfg.Redis.ListingTTL(), logger)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	banRepo := repository.NewBanRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	eventService := service.NewEventService(service.EventDependencies{
		EventRepo:    eventRepo,
		CategoryRepo: categoryRepo,
		Cache:        listingCache,
		Dispatcher:   dispatcher,
	})
	enrollmentService := service.NewEnrollmentService(service.EnrollmentDependencies{
		EnrollmentRepo: enrollmentRepo,
		EventRepo:      eventRepo,
		Dispatcher:     dispatcher,
	})
	moderationService := service.NewModerationService(userRepo, banRepo, dispatcher)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Events:         handlers.NewEventsHandler(eventService, categoryRepo),
		Enrollments:    handlers.NewEnrollmentsHandler(enrollmentService),
		Users:          handlers.NewUsersHandler(moderationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
