package memory

import (
	"context"
	"sync"

	"github.com/rentloop/orders-api/internal/domains/orders/ports"
)

var _ ports.ReviewDirectory = (*ReviewDirectory)(nil)

// ReviewDirectory is an in-memory stand-in for the review coordinator's
// record: at most one review per order number.
type ReviewDirectory struct {
	mu       sync.RWMutex
	reviewed map[string]bool
}

// NewReviewDirectory builds an empty directory.
func NewReviewDirectory() *ReviewDirectory {
	return &ReviewDirectory{reviewed: map[string]bool{}}
}

// MarkReviewed records that a review exists for the order number.
func (d *ReviewDirectory) MarkReviewed(orderNumber string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reviewed[orderNumber] = true
}

// HasReview answers the live existence check.
func (d *ReviewDirectory) HasReview(_ context.Context, orderNumber string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.reviewed[orderNumber], nil
}
