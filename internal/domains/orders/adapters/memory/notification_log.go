package memory

import (
	"context"
	"sync"

	"github.com/rentloop/orders-api/internal/domains/orders/ports"
)

var _ ports.NotificationLog = (*NotificationLog)(nil)

// NotificationLog collects notification intents in memory.
type NotificationLog struct {
	mu      sync.RWMutex
	entries []ports.NotificationEntry
}

// NewNotificationLog builds an empty log.
func NewNotificationLog() *NotificationLog {
	return &NotificationLog{}
}

// Record appends one entry.
func (l *NotificationLog) Record(_ context.Context, entry ports.NotificationEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// Entries returns a snapshot, mainly for tests.
func (l *NotificationLog) Entries() []ports.NotificationEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]ports.NotificationEntry{}, l.entries...)
}
