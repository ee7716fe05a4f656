package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/rentloop/orders-api/internal/domains/orders/ports"
	"github.com/rentloop/orders-api/internal/platform/temporal/sequences"
)

const (
	// OrderEventWorkflowName is the public identifier for registering the workflow.
	OrderEventWorkflowName = "orders.workflows.Event"
	// OrderEventTaskQueue is the queue consumed by the worker processing order events.
	OrderEventTaskQueue = "ORDER_EVENTS"
)

// OrderEventWorkflowInput captures one committed order event plus the trace
// that produced it.
type OrderEventWorkflowInput struct {
	Event   ports.OrderEvent
	TraceID string
}

// OrderEventWorkflow fans a committed order event out to notification storage.
func OrderEventWorkflow(ctx workflow.Context, input OrderEventWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("OrderEventWorkflow started", withTraceID(input.TraceID,
		"eventType", input.Event.Type,
		"orderId", input.Event.OrderID,
	)...)
	if err := sequences.RunOrderNotificationSequence(ctx, input.Event); err != nil {
		logger.Error("OrderEventWorkflow failed", withTraceID(input.TraceID,
			"eventType", input.Event.Type,
			"orderId", input.Event.OrderID,
			"error", err,
		)...)
		return err
	}
	logger.Info("OrderEventWorkflow completed", withTraceID(input.TraceID,
		"eventType", input.Event.Type,
		"orderId", input.Event.OrderID,
	)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
