package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/rentloop/orders-api/internal/domains/orders/domain"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
	orderworkflows "github.com/rentloop/orders-api/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.EventDispatcher = (*TemporalEventDispatcher)(nil)
	_ ports.EventDispatcher = (*InlineEventDispatcher)(nil)
)

// TemporalEventDispatcher starts one workflow per committed order event.
// Dispatch is fire-and-forget: the caller never waits on workflow completion.
type TemporalEventDispatcher struct {
	client    client.Client
	taskQueue string
}

// NewTemporalEventDispatcher wires a Temporal client into the dispatcher.
func NewTemporalEventDispatcher(c client.Client) *TemporalEventDispatcher {
	return &TemporalEventDispatcher{client: c, taskQueue: orderworkflows.OrderEventTaskQueue}
}

// DispatchOrderEvent starts the event workflow. A workflow that already exists
// for the same event is treated as delivered.
func (d *TemporalEventDispatcher) DispatchOrderEvent(ctx context.Context, event ports.OrderEvent) error {
	if d == nil || d.client == nil {
		return errors.New("temporal event dispatcher not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	options := client.StartWorkflowOptions{
		ID:        buildOrderEventWorkflowID(event),
		TaskQueue: d.taskQueue,
	}
	_, err := d.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.OrderEventWorkflow,
		orderworkflows.OrderEventWorkflowInput{Event: event, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil
		}
		return err
	}
	return nil
}

// InlineEventDispatcher records notifications synchronously without Temporal,
// useful for tests or dev fallbacks.
type InlineEventDispatcher struct {
	log ports.NotificationLog
}

// NewInlineEventDispatcher wraps a notification log for synchronous delivery.
func NewInlineEventDispatcher(log ports.NotificationLog) *InlineEventDispatcher {
	return &InlineEventDispatcher{log: log}
}

// DispatchOrderEvent records the notification in-process.
func (d *InlineEventDispatcher) DispatchOrderEvent(ctx context.Context, event ports.OrderEvent) error {
	if d == nil || d.log == nil {
		return ports.ErrNotificationLogUnavailable
	}
	return d.log.Record(ctx, ports.NotificationEntry{
		EventType:   event.Type,
		OrderID:     event.OrderID,
		OrderNumber: event.OrderNumber,
		Recipient:   inlineRecipient(event),
		Message:     fmt.Sprintf("Order %s event: %s", event.OrderNumber, event.Type),
		OccurredAt:  event.OccurredAt,
	})
}

func inlineRecipient(event ports.OrderEvent) domain.Role {
	if event.ActorRole == domain.RoleSeller {
		return domain.RoleBuyer
	}
	return domain.RoleSeller
}

func buildOrderEventWorkflowID(event ports.OrderEvent) string {
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return fmt.Sprintf("order-event-%s-%s-%d", event.OrderID, event.Type, occurred.UnixNano())
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
