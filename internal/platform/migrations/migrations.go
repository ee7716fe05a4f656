package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the orders bounded context. Intended to replace
// adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&reviewRecord{},
		&notificationRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID           string           `gorm:"primaryKey;column:id;size:36"`
	Number       string           `gorm:"column:order_number;uniqueIndex"`
	BuyerID      string           `gorm:"column:buyer_id;size:36;index:idx_orders_buyer_status"`
	SellerID     string           `gorm:"column:seller_id;size:36;index:idx_orders_seller_status"`
	Status       string           `gorm:"column:status;type:varchar(16);index:idx_orders_buyer_status;index:idx_orders_seller_status"`
	Items        []itemRecord     `gorm:"column:items;type:jsonb;serializer:json"`
	ProductNames pq.StringArray   `gorm:"column:product_names;type:text[]"`
	Subtotal     decimal.Decimal  `gorm:"column:subtotal;type:numeric(12,2)"`
	Tax          decimal.Decimal  `gorm:"column:tax;type:numeric(12,2)"`
	TotalAmount  decimal.Decimal  `gorm:"column:total_amount;type:numeric(12,2)"`
	Address      addressRecord    `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Timeline     []timelineRecord `gorm:"column:timeline;type:jsonb;serializer:json"`
	Receive      *scheduleRecord  `gorm:"column:receive_schedule;type:jsonb;serializer:json"`
	Return       *scheduleRecord  `gorm:"column:return_schedule;type:jsonb;serializer:json"`
	Version      int64            `gorm:"column:version;not null;default:1"`
	CreatedAt    time.Time        `gorm:"column:created_at;index"`
	UpdatedAt    time.Time        `gorm:"column:updated_at"`
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

// Review schema mirrors the review directory adapter.
type reviewRecord struct {
	ID          string    `gorm:"primaryKey;column:id;size:36"`
	OrderNumber string    `gorm:"column:order_number;uniqueIndex"`
	AuthorID    string    `gorm:"column:author_id;size:36"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (reviewRecord) TableName() string { return "order_reviews" }

// Notification schema stores intents produced from order events.
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
