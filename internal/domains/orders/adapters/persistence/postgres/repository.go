package postgres

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentloop/orders-api/internal/domains/orders/domain"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
	"github.com/rentloop/orders-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

const defaultPageSize = 20

// Repository persists order aggregates in PostgreSQL using GORM. Status,
// timeline, and schedules live on one row so they commit atomically; the
// version column carries the optimistic concurrency check.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&orderRecord{})
	}
	return repo
}

// orderRecord maps the order aggregate to a relational table.
type orderRecord struct {
	ID           string            `gorm:"primaryKey;column:id;size:36"`
	Number       string            `gorm:"column:order_number;uniqueIndex"`
	BuyerID      string            `gorm:"column:buyer_id;size:36;index:idx_orders_buyer_status"`
	SellerID     string            `gorm:"column:seller_id;size:36;index:idx_orders_seller_status"`
	Status       string            `gorm:"column:status;type:varchar(16);index:idx_orders_buyer_status;index:idx_orders_seller_status"`
	Items        []itemRecord      `gorm:"column:items;type:jsonb;serializer:json"`
	ProductNames pq.StringArray    `gorm:"column:product_names;type:text[]"`
	Subtotal     decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2)"`
	Tax          decimal.Decimal   `gorm:"column:tax;type:numeric(12,2)"`
	TotalAmount  decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2)"`
	Address      addressRecord     `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Timeline     []timelineRecord  `gorm:"column:timeline;type:jsonb;serializer:json"`
	Receive      *scheduleRecord   `gorm:"column:receive_schedule;type:jsonb;serializer:json"`
	Return       *scheduleRecord   `gorm:"column:return_schedule;type:jsonb;serializer:json"`
	Version      int64             `gorm:"column:version;not null;default:1"`
	CreatedAt    time.Time         `gorm:"column:created_at;index"`
	UpdatedAt    time.Time         `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type itemRecord struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	Image        string          `json:"image,omitempty"`
	Size         string          `json:"size,omitempty"`
	Color        string          `json:"color,omitempty"`
	RentalPeriod string          `json:"rentalPeriod,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
}

type addressRecord struct {
	Recipient  string `json:"recipient"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone,omitempty"`
}

type timelineRecord struct {
	Phase       string     `json:"phase"`
	CompletedAt *time.Time `json:"completedAt"`
	Description string     `json:"description,omitempty"`
}

type scheduleRecord struct {
	Kind     string    `json:"kind"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
	Notes    string    `json:"notes,omitempty"`
}

// Create inserts a fresh aggregate at version 1.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	record.Version = 1
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicateOrder
		}
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// Update commits the aggregate only when the stored version still matches
// expectedVersion, bumping the version in the same statement.
func (r *Repository) Update(ctx context.Context, order *domain.Order, expectedVersion int64) (*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	record.Version = expectedVersion + 1
	// Struct-based update: the JSON serializers only run on this path, a
	// map value would reach the driver as raw structs.
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("id = ? AND version = ?", order.ID, expectedVersion).
		Select("status", "timeline", "receive_schedule", "return_schedule", "version", "updated_at").
		Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Row missing or version moved on; disambiguate for the caller.
		var exists int64
		if err := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", order.ID).Count(&exists).Error; err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, ports.ErrNotFound
		}
		return nil, ports.ErrVersionConflict
	}
	return r.GetByID(ctx, order.ID)
}

// GetByID fetches one aggregate by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.project(), nil
}

// GetByNumber fetches one aggregate by its human-facing number.
func (r *Repository) GetByNumber(ctx context.Context, number string) (*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "order_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.project(), nil
}

// List pages through the actor's orders newest first, keyset-paginated on
// (created_at, id).
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) (*ports.ListPage, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&orderRecord{})
	switch filter.Role {
	case domain.RoleBuyer:
		query = query.Where("buyer_id = ?", filter.ActorID)
	case domain.RoleSeller:
		query = query.Where("seller_id = ?", filter.ActorID)
	default:
		return nil, domain.ErrUnknownRole
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		query = query.Where("status IN ?", statuses)
	}
	after, err := decodeCursor(filter.Cursor)
	if err != nil {
		return nil, err
	}
	if after != nil {
		query = query.Where("(created_at, id) < (?, ?)", after.CreatedAt, after.ID)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	var records []orderRecord
	if err := query.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&records).Error; err != nil {
		return nil, err
	}
	page := &ports.ListPage{}
	if len(records) > limit {
		page.HasMore = true
		records = records[:limit]
	}
	for i := range records {
		page.Orders = append(page.Orders, records[i].project())
	}
	if page.HasMore {
		last := records[len(records)-1]
		page.NextCursor = encodeCursor(listCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// DueSchedules returns orders whose receive or return appointment falls inside
// [now, now+window). Consumed by the schedule-reminder command.
func (r *Repository) DueSchedules(ctx context.Context, now time.Time, window time.Duration) ([]*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	until := now.Add(window)
	var records []orderRecord
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []string{string(domain.StatusCompleted), string(domain.StatusReturned), string(domain.StatusCancelled)}).
		Where("((receive_schedule ->> 'date')::timestamptz BETWEEN ? AND ? OR (return_schedule ->> 'date')::timestamptz BETWEEN ? AND ?)",
			now, until, now, until).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	result := make([]*projection.Projection[*domain.Order], 0, len(records))
	for i := range records {
		result = append(result, records[i].project())
	}
	return result, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

type listCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

func encodeCursor(c listCursor) string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

func decodeCursor(encoded string) (*listCursor, error) {
	if encoded == "" {
		return nil, nil
	}
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrInvalidCursor, err)
	}
	var c listCursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrInvalidCursor, err)
	}
	return &c, nil
}

func toRecord(order *domain.Order) orderRecord {
	items := make([]itemRecord, 0, len(order.Items))
	names := make(pq.StringArray, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, itemRecord(item))
		names = append(names, item.Name)
	}
	timeline := make([]timelineRecord, 0, len(order.Timeline))
	for _, event := range order.Timeline {
		timeline = append(timeline, timelineRecord{
			Phase:       string(event.Phase),
			CompletedAt: event.CompletedAt,
			Description: event.Description,
		})
	}
	return orderRecord{
		ID:           order.ID,
		Number:       order.Number,
		BuyerID:      order.BuyerID,
		SellerID:     order.SellerID,
		Status:       string(order.Status),
		Items:        items,
		ProductNames: names,
		Subtotal:     order.Amounts.Subtotal,
		Tax:          order.Amounts.Tax,
		TotalAmount:  order.Amounts.TotalAmount,
		Address:      addressRecord(order.ShippingAddress),
		Timeline:     timeline,
		Receive:      toScheduleRecord(order.Schedules.Receive),
		Return:       toScheduleRecord(order.Schedules.Return),
		Version:      order.Version,
	}
}

func toScheduleRecord(schedule *domain.Schedule) *scheduleRecord {
	if schedule == nil {
		return nil
	}
	return &scheduleRecord{
		Kind:     string(schedule.Kind),
		Date:     schedule.Date,
		Location: schedule.Location,
		Notes:    schedule.Notes,
	}
}

func (rec *orderRecord) project() *projection.Projection[*domain.Order] {
	items := make([]domain.OrderItem, 0, len(rec.Items))
	for _, item := range rec.Items {
		items = append(items, domain.OrderItem(item))
	}
	timeline := make([]domain.TimelineEvent, 0, len(rec.Timeline))
	for _, event := range rec.Timeline {
		timeline = append(timeline, domain.TimelineEvent{
			Phase:       domain.TimelinePhase(event.Phase),
			CompletedAt: event.CompletedAt,
			Description: event.Description,
		})
	}
	order := &domain.Order{
		ID:       rec.ID,
		Number:   rec.Number,
		BuyerID:  rec.BuyerID,
		SellerID: rec.SellerID,
		Status:   domain.Status(rec.Status),
		Items:    items,
		Amounts: domain.Amounts{
			Subtotal:    rec.Subtotal,
			Tax:         rec.Tax,
			TotalAmount: rec.TotalAmount,
		},
		ShippingAddress: domain.Address(rec.Address),
		Timeline:        timeline,
		Schedules: domain.Schedules{
			Receive: toDomainSchedule(rec.Receive),
			Return:  toDomainSchedule(rec.Return),
		},
		Version: rec.Version,
	}
	return projection.New(order, rec.CreatedAt, rec.UpdatedAt)
}

func toDomainSchedule(rec *scheduleRecord) *domain.Schedule {
	if rec == nil {
		return nil
	}
	return &domain.Schedule{
		Kind:     domain.ScheduleKind(rec.Kind),
		Date:     rec.Date,
		Location: rec.Location,
		Notes:    rec.Notes,
	}
}
