package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rentloop/orders-api/internal/domains/orders/ports"
)

var _ ports.ReviewDirectory = (*ReviewDirectory)(nil)

// ReviewDirectory answers review-existence lookups from the reviews table.
// It reads live so eligibility reflects reviews written moments ago.
type ReviewDirectory struct {
	db *gorm.DB
}

func NewReviewDirectory(db *gorm.DB) *ReviewDirectory {
	dir := &ReviewDirectory{db: db}
	if db != nil {
		_ = db.AutoMigrate(&reviewRecord{})
	}
	return dir
}

type reviewRecord struct {
	ID          string    `gorm:"primaryKey;column:id;size:36"`
	OrderNumber string    `gorm:"column:order_number;uniqueIndex"`
	AuthorID    string    `gorm:"column:author_id;size:36"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (reviewRecord) TableName() string { return "order_reviews" }

func (d *ReviewDirectory) HasReview(ctx context.Context, orderNumber string) (bool, error) {
	if d == nil || d.db == nil {
		return false, errors.New("postgres review directory not configured")
	}
	var count int64
	err := d.db.WithContext(ctx).
		Model(&reviewRecord{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordReview registers that a review now exists for the order. Upstream
// review content lives elsewhere; this table only gates state reporting.
func (d *ReviewDirectory) RecordReview(ctx context.Context, id, orderNumber, authorID string) error {
	if d == nil || d.db == nil {
		return errors.New("postgres review directory not configured")
	}
	record := reviewRecord{ID: id, OrderNumber: orderNumber, AuthorID: authorID, CreatedAt: time.Now().UTC()}
	return d.db.WithContext(ctx).Create(&record).Error
}
