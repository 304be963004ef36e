package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/compliance-service/internal/api/http"
	"github.com/spec-kit/compliance-service/internal/api/http/handlers"
	"github.com/spec-kit/compliance-service/internal/auth"
	"github.com/spec-kit/compliance-service/internal/config"
	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/events"
	"github.com/spec-kit/compliance-service/internal/observability"
	"github.com/spec-kit/compliance-service/internal/persistence"
	"github.com/spec-kit/compliance-service/internal/repository"
	"github.com/spec-kit/compliance-service/internal/repository/memory"
	"github.com/spec-kit/compliance-service/internal/service"
	"github.com/spec-kit/compliance-service/internal/worker"
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

	var (
		store     repository.Store
		reviewers repository.ReviewerRepository
		cursor    repository.CursorRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pool)
		reviewers = repository.NewReviewerRepository(pool)
		cursor = repository.NewPostgresCursorRepository(pool)
	} else {
		memStore := memory.NewStore()
		store = memStore
		reviewers = memStore.Reviewers()
		cursor = memory.NewCursor()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()
	if redis != nil {
		cursor = repository.NewRedisCursorRepository(redis.Client)
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{ReviewerRepo: reviewers})
	itemService := service.NewItemService(service.ItemDependencies{Store: store, Dispatcher: dispatcher})
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{Store: store, Dispatcher: dispatcher})

	settings := domain.DefaultStrategySettings()
	if strategy := domain.StrategyType(cfg.Assignment.Strategy); strategy.Valid() {
		settings.Strategy = strategy
	}
	if cfg.Assignment.MaxAssignees > 0 {
		settings.MaxAssignees = cfg.Assignment.MaxAssignees
	}
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		Store:        store,
		ReviewerRepo: reviewers,
		Selector:     service.NewSelector(cursor),
		Dispatcher:   dispatcher,
	}, settings)

	notificationService := service.NewNotificationService(store, dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), reviewers)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Reviewers:      handlers.NewReviewersHandler(authService),
		Items:          handlers.NewItemsHandler(itemService, lifecycleService),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService, itemService),
		Settings:       handlers.NewSettingsHandler(assignmentService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
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
