package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/rentloop/orders-api/internal/domains/orders/ports"
	orderactivities "github.com/rentloop/orders-api/internal/platform/temporal/activities/orders"
)

// RunOrderNotificationSequence executes the activities that turn a committed
// order event into notification records.
func RunOrderNotificationSequence(ctx workflow.Context, event ports.OrderEvent) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("order notification sequence started", "eventType", event.Type, "orderId", event.OrderID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	if err := workflow.ExecuteActivity(ctx, orderactivities.RecordNotificationActivityName, event).Get(ctx, nil); err != nil {
		logger.Error("order notification sequence failed", "eventType", event.Type, "orderId", event.OrderID, "error", err)
		return err
	}
	logger.Info("order notification sequence completed", "eventType", event.Type, "orderId", event.OrderID)
	return nil
}
