package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	orderstypes "github.com/rentloop/orders-api/internal/domains/orders/application/types"
	"github.com/rentloop/orders-api/internal/domains/orders/domain"
)

// OrderItem is the HTTP representation of one rented unit.
type OrderItem struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	Image        string          `json:"image,omitempty"`
	Size         string          `json:"size,omitempty"`
	Color        string          `json:"color,omitempty"`
	RentalPeriod string          `json:"rentalPeriod,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
}

// Address is the HTTP representation of a delivery address.
type Address struct {
	Recipient  string `json:"recipient"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone,omitempty"`
}

// Amounts carries the monetary summary on the wire.
type Amounts struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// TimelineEvent is one fulfillment phase with its completion stamp.
type TimelineEvent struct {
	Phase       string     `json:"phase"`
	CompletedAt *time.Time `json:"completedAt"`
	Description string     `json:"description,omitempty"`
}

// Schedule is one appointment slot.
type Schedule struct {
	Kind     string    `json:"kind"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
	Notes    string    `json:"notes,omitempty"`
}

// Order is the HTTP representation of the order aggregate.
type Order struct {
	ID              string          `json:"id"`
	Number          string          `json:"orderNumber"`
	BuyerID         string          `json:"buyerId"`
	SellerID        string          `json:"sellerId"`
	Status          string          `json:"status"`
	Items           []OrderItem     `json:"items"`
	Amounts         Amounts         `json:"amounts"`
	ShippingAddress Address         `json:"shippingAddress"`
	Timeline        []TimelineEvent `json:"timeline"`
	ReceiveSchedule *Schedule       `json:"receiveSchedule,omitempty"`
	ReturnSchedule  *Schedule       `json:"returnSchedule,omitempty"`
	Version         int64           `json:"version"`
	CreatedAt       time.Time       `json:"createdAt,omitempty"`
	UpdatedAt       time.Time       `json:"updatedAt,omitempty"`
}

// PlaceOrderRequest captures the inbound placement payload.
type PlaceOrderRequest struct {
	BuyerID         string      `json:"buyerId"`
	SellerID        string      `json:"sellerId"`
	Items           []OrderItem `json:"items"`
	ShippingAddress Address     `json:"shippingAddress"`
	Amounts         Amounts     `json:"amounts"`
}

// TransitionRequest captures the inbound transition payload.
type TransitionRequest struct {
	Transition      string `json:"transition"`
	ExpectedVersion int64  `json:"expectedVersion"`
}

// ScheduleRequest captures the inbound schedule payload.
type ScheduleRequest struct {
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
	Notes    string    `json:"notes,omitempty"`
}

// OrderPage is one page of an actor's order listing.
type OrderPage struct {
	Orders     []Order `json:"orders"`
	NextCursor string  `json:"nextCursor,omitempty"`
	HasMore    bool    `json:"hasMore"`
}

// ReviewEligibility is the wire answer of the review gate.
type ReviewEligibility struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Eligible    bool   `json:"eligible"`
	State       string `json:"state"`
}

// ReportEligibility is the wire answer of the report gate.
type ReportEligibility struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Eligible    bool   `json:"eligible"`
}

// ToPlaceOrderInput converts the placement payload into the application input.
func ToPlaceOrderInput(req PlaceOrderRequest) orderstypes.PlaceOrderInput {
	items := make([]orderstypes.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderstypes.OrderItemInput{
			ProductID:    item.ProductID,
			Name:         item.Name,
			Image:        item.Image,
			Size:         item.Size,
			Color:        item.Color,
			RentalPeriod: item.RentalPeriod,
			UnitPrice:    item.UnitPrice,
		})
	}
	return orderstypes.PlaceOrderInput{
		BuyerID:         req.BuyerID,
		SellerID:        req.SellerID,
		Items:           items,
		ShippingAddress: orderstypes.AddressInput(req.ShippingAddress),
		Amounts:         orderstypes.AmountsInput(req.Amounts),
	}
}

// FromDomainOrder maps the order aggregate into its transport shape.
func FromDomainOrder(o *domain.Order) Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItem(item))
	}
	timeline := make([]TimelineEvent, 0, len(o.Timeline))
	for _, event := range o.Timeline {
		timeline = append(timeline, TimelineEvent{
			Phase:       string(event.Phase),
			CompletedAt: event.CompletedAt,
			Description: event.Description,
		})
	}
	return Order{
		ID:       o.ID,
		Number:   o.Number,
		BuyerID:  o.BuyerID,
		SellerID: o.SellerID,
		Status:   string(o.Status),
		Items:    items,
		Amounts: Amounts{
			Subtotal:    o.Amounts.Subtotal,
			Tax:         o.Amounts.Tax,
			TotalAmount: o.Amounts.TotalAmount,
		},
		ShippingAddress: Address(o.ShippingAddress),
		Timeline:        timeline,
		ReceiveSchedule: fromDomainSchedule(o.Schedules.Receive),
		ReturnSchedule:  fromDomainSchedule(o.Schedules.Return),
		Version:         o.Version,
	}
}

func fromDomainSchedule(s *domain.Schedule) *Schedule {
	if s == nil {
		return nil
	}
	return &Schedule{
		Kind:     string(s.Kind),
		Date:     s.Date,
		Location: s.Location,
		Notes:    s.Notes,
	}
}

// FromProjection maps a projection into a transport order enriched with metadata.
func FromProjection(projection *orderstypes.OrderProjection) Order {
	order := FromDomainOrder(projection.Entity)
	order.CreatedAt = projection.Metadata.CreatedAt
	order.UpdatedAt = projection.Metadata.UpdatedAt
	return order
}

// FromPage maps an application page into its transport shape.
func FromPage(page *orderstypes.OrderPage) OrderPage {
	orders := make([]Order, 0, len(page.Orders))
	for _, projection := range page.Orders {
		orders = append(orders, FromProjection(projection))
	}
	return OrderPage{Orders: orders, NextCursor: page.NextCursor, HasMore: page.HasMore}
}

// FromReviewEligibility maps the review gate answer onto the wire.
func FromReviewEligibility(e *orderstypes.ReviewEligibility) ReviewEligibility {
	return ReviewEligibility{
		OrderID:     e.OrderID,
		OrderNumber: e.OrderNumber,
		Eligible:    e.Eligible,
		State:       string(e.State),
	}
}

// FromReportEligibility maps the report gate answer onto the wire.
func FromReportEligibility(e *orderstypes.ReportEligibility) ReportEligibility {
	return ReportEligibility{
		OrderID:     e.OrderID,
		OrderNumber: e.OrderNumber,
		Eligible:    e.Eligible,
	}
}
