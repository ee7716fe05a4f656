package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	ordersmemory "github.com/rentloop/orders-api/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/rentloop/orders-api/internal/domains/orders/adapters/persistence/postgres"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
	platformobservability "github.com/rentloop/orders-api/internal/platform/observability"
	platformpostgres "github.com/rentloop/orders-api/internal/platform/postgres"
	orderactivities "github.com/rentloop/orders-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/rentloop/orders-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "orders-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	notifications, cleanupLog := buildNotificationLog(ctx, logger)
	defer cleanupLog()
	activities := orderactivities.NewActivities(notifications)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderEventTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderEventWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderEventWorkflowName})
	w.RegisterActivityWithOptions(activities.RecordNotification, activity.RegisterOptions{Name: orderactivities.RecordNotificationActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderEventTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildNotificationLog(ctx context.Context, logger *slog.Logger) (ports.NotificationLog, func()) {
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	if db == nil {
		return ordersmemory.NewNotificationLog(), cleanup
	}
	logger.Info("worker notification log configured with postgres")
	return orderspostgres.NewNotificationLog(db), cleanup
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
