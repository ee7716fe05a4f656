package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rentloop/orders-api/internal/domains/orders/ports"
)

var _ ports.NotificationLog = (*NotificationLog)(nil)

// NotificationLog stores notification intents in the order_notifications table.
type NotificationLog struct {
	db *gorm.DB
}

func NewNotificationLog(db *gorm.DB) *NotificationLog {
	log := &NotificationLog{db: db}
	if db != nil {
		_ = db.AutoMigrate(&notificationRecord{})
	}
	return log
}

type notificationRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id"`
	EventType   string    `gorm:"column:event_type;type:varchar(64);index"`
	OrderID     string    `gorm:"column:order_id;size:36;index"`
	OrderNumber string    `gorm:"column:order_number"`
	Recipient   string    `gorm:"column:recipient;type:varchar(16)"`
	Message     string    `gorm:"column:message"`
	OccurredAt  time.Time `gorm:"column:occurred_at;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (notificationRecord) TableName() string { return "order_notifications" }

func (l *NotificationLog) Record(ctx context.Context, entry ports.NotificationEntry) error {
	if l == nil || l.db == nil {
		return ports.ErrNotificationLogUnavailable
	}
	record := notificationRecord{
		EventType:   entry.EventType,
		OrderID:     entry.OrderID,
		OrderNumber: entry.OrderNumber,
		Recipient:   string(entry.Recipient),
		Message:     entry.Message,
		OccurredAt:  entry.OccurredAt,
	}
	return l.db.WithContext(ctx).Create(&record).Error
}
