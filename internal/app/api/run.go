package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	orderserver "github.com/rentloop/orders-api/server"

	ordersmemory "github.com/rentloop/orders-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/rentloop/orders-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/rentloop/orders-api/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/rentloop/orders-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/rentloop/orders-api/internal/domains/orders/application"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
	platformmigrations "github.com/rentloop/orders-api/internal/platform/migrations"
	platformobservability "github.com/rentloop/orders-api/internal/platform/observability"
	platformpostgres "github.com/rentloop/orders-api/internal/platform/postgres"
)

// Run boots the orders HTTP API with observability, repositories, and the
// event dispatcher wired.
func Run(ctx context.Context) error {
	const serviceName = "orders-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, reviews, notifications, cleanupStorage := buildStorage(ctx, cfg, logger)
	defer cleanupStorage()

	dispatcher, cleanupDispatcher := buildDispatcher(cfg, instruments, notifications)
	defer cleanupDispatcher()

	coreService := ordersapp.NewService(repo, reviews, ordersapp.WithEventDispatcher(dispatcher))
	orderService := ordersobs.New(
		coreService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	handlers := orderserver.ApiHandleFunctions{
		OrdersAPI:      orderserver.NewOrdersAPI(orderService),
		EligibilityAPI: orderserver.NewEligibilityAPI(orderService),
	}

	router := orderserver.NewRouter(handlers)
	router.Use(otelgin.Middleware(serviceName))
	addr := ":" + cfg.Port
	logger.Info("orders API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("orders API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func buildStorage(ctx context.Context, cfg Config, logger *slog.Logger) (ports.Repository, ports.ReviewDirectory, ports.NotificationLog, func()) {
	db, cleanup := connectPostgres(ctx, cfg, logger)
	if db == nil {
		return ordersmemory.NewRepository(), ordersmemory.NewReviewDirectory(), ordersmemory.NewNotificationLog(), cleanup
	}
	logger.Info("orders storage configured with postgres")
	return orderspostgres.NewRepository(db), orderspostgres.NewReviewDirectory(db), orderspostgres.NewNotificationLog(db), cleanup
}

func connectPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory storage")
		return nil, func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory storage", slog.String("error", err.Error()))
		return nil, func() {}
	}
	if err := platformmigrations.Run(db); err != nil {
		logger.Warn("failed to run migrations, falling back to in-memory storage", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to in-memory storage", slog.String("error", err.Error()))
		return nil, func() {}
	}
	return db, func() { _ = sqlDB.Close() }
}

func buildDispatcher(cfg Config, instruments *platformobservability.Instruments, notifications ports.NotificationLog) (ports.EventDispatcher, func()) {
	logger := effectiveLogger(instruments)
	temporalClient, err := connectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Warn("Temporal unavailable, dispatching order events inline", slog.String("error", err.Error()))
		return ordersworkflows.NewInlineEventDispatcher(notifications), func() {}
	}
	logger.Info("Temporal event dispatch enabled", slog.String("namespace", cfg.TemporalNamespace))
	return ordersworkflows.NewTemporalEventDispatcher(temporalClient), temporalClient.Close
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.Default()
}
