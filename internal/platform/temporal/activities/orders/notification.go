package orders

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/rentloop/orders-api/internal/domains/orders/domain"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
)

const (
	// RecordNotificationActivityName stores the notification intent derived from an order event.
	RecordNotificationActivityName = "orders.activities.RecordNotification"
)

// Activities groups activities that operate on committed order events.
type Activities struct {
	log ports.NotificationLog
}

// NewActivities wires the notification log into the Temporal activities bundle.
func NewActivities(log ports.NotificationLog) *Activities {
	return &Activities{log: log}
}

// RecordNotification persists the notification intent for the counterparty of
// the actor who caused the event.
func (a *Activities) RecordNotification(ctx context.Context, event ports.OrderEvent) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.log == nil {
		logger.Error("notification activity not initialized", "orderId", event.OrderID)
		return errors.New("notification activity not initialized")
	}
	logger.Info("RecordNotification activity started", "eventType", event.Type, "orderId", event.OrderID)
	entry := ports.NotificationEntry{
		EventType:   event.Type,
		OrderID:     event.OrderID,
		OrderNumber: event.OrderNumber,
		Recipient:   recipientFor(event),
		Message:     messageFor(event),
		OccurredAt:  event.OccurredAt,
	}
	if err := a.log.Record(ctx, entry); err != nil {
		logger.Error("RecordNotification activity failed", "eventType", event.Type, "orderId", event.OrderID, "error", err)
		return err
	}
	logger.Info("RecordNotification activity completed", "eventType", event.Type, "orderId", event.OrderID)
	return nil
}

// recipientFor addresses the counterparty of the actor who caused the event.
// A placement is always announced to the seller.
func recipientFor(event ports.OrderEvent) domain.Role {
	if event.Type == ports.EventOrderPlaced {
		return domain.RoleSeller
	}
	if event.ActorRole == domain.RoleSeller {
		return domain.RoleBuyer
	}
	return domain.RoleSeller
}

func messageFor(event ports.OrderEvent) string {
	switch event.Type {
	case ports.EventOrderPlaced:
		return fmt.Sprintf("Order %s has been placed", event.OrderNumber)
	case ports.EventOrderStatusChanged:
		return fmt.Sprintf("Order %s moved to %s", event.OrderNumber, event.CurrentStatus)
	case ports.EventOrderScheduleSet:
		return fmt.Sprintf("Order %s has a new %s appointment", event.OrderNumber, event.ScheduleKind)
	case ports.EventScheduleReminder:
		return fmt.Sprintf("Order %s has an upcoming %s appointment", event.OrderNumber, event.ScheduleKind)
	default:
		return fmt.Sprintf("Order %s event: %s", event.OrderNumber, event.Type)
	}
}
