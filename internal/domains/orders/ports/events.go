package ports

import (
	"context"
	"errors"
	"time"

	"github.com/rentloop/orders-api/internal/domains/orders/domain"
)

// Order event types emitted after successful commits.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status.changed"
	EventOrderScheduleSet   = "order.schedule.set"
	EventScheduleReminder   = "order.schedule.reminder"
)

// OrderEvent captures the metadata handed to downstream consumers
// (notification fan-out, audit). Dispatch happens after the transaction
// committed; it never runs inside the write path.
type OrderEvent struct {
	Type           string
	OrderID        string
	OrderNumber    string
	PreviousStatus domain.Status
	CurrentStatus  domain.Status
	Transition     domain.Transition
	ScheduleKind   domain.ScheduleKind
	ActorRole      domain.Role
	OccurredAt     time.Time
}

// EventDispatcher hands an order event to the configured backend,
// fire-and-forget. Implementations must not block the caller on delivery.
type EventDispatcher interface {
	DispatchOrderEvent(ctx context.Context, event OrderEvent) error
}

// NotificationEntry is the worker-side record of a dispatched event.
type NotificationEntry struct {
	EventType   string
	OrderID     string
	OrderNumber string
	Recipient   domain.Role
	Message     string
	OccurredAt  time.Time
}

// ErrNotificationLogUnavailable signals a misconfigured notification adapter.
var ErrNotificationLogUnavailable = errors.New("notification log not configured")

// NotificationLog stores notification intents produced from order events.
// Delivery to the end user happens outside this core.
type NotificationLog interface {
	Record(ctx context.Context, entry NotificationEntry) error
}
