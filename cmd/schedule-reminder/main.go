package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	orderspostgres "github.com/rentloop/orders-api/internal/domains/orders/adapters/persistence/postgres"
	"github.com/rentloop/orders-api/internal/domains/orders/domain"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
	platformpostgres "github.com/rentloop/orders-api/internal/platform/postgres"
)

const defaultReminderWindow = 24 * time.Hour

// Scans for receive/return appointments falling due and records one reminder
// notification per slot. Intended to run on a cron schedule.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot send schedule reminders")
	}

	repo := orderspostgres.NewRepository(db)
	notifications := orderspostgres.NewNotificationLog(db)

	now := time.Now().UTC()
	window := reminderWindowFromEnv()
	due, err := repo.DueSchedules(ctx, now, window)
	if err != nil {
		log.Fatalf("failed to load due schedules: %v", err)
	}

	recorded := 0
	for _, projection := range due {
		order := projection.Entity
		for _, schedule := range []*domain.Schedule{order.Schedules.Receive, order.Schedules.Return} {
			if schedule == nil || schedule.Date.Before(now) || !schedule.Date.Before(now.Add(window)) {
				continue
			}
			entry := ports.NotificationEntry{
				EventType:   ports.EventScheduleReminder,
				OrderID:     order.ID,
				OrderNumber: order.Number,
				Recipient:   domain.RoleBuyer,
				Message:     reminderMessage(order.Number, schedule),
				OccurredAt:  now,
			}
			if err := notifications.Record(ctx, entry); err != nil {
				log.Fatalf("failed to record reminder for order %s: %v", order.Number, err)
			}
			recorded++
		}
	}
	log.Printf("schedule reminder completed: %d reminders recorded", recorded)
}

func reminderMessage(orderNumber string, schedule *domain.Schedule) string {
	return "Order " + orderNumber + " has a " + string(schedule.Kind) +
		" appointment at " + schedule.Location + " on " + schedule.Date.Format(time.RFC3339)
}

func reminderWindowFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("REMINDER_WINDOW_HOURS"))
	if raw == "" {
		return defaultReminderWindow
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return defaultReminderWindow
	}
	return time.Duration(hours) * time.Hour
}
