package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentloop/orders-api/internal/domains/orders/domain"
)

// OrderItemInput is one rented unit in a placement request.
type OrderItemInput struct {
	ProductID    string
	Name         string
	Image        string
	Size         string
	Color        string
	RentalPeriod string
	UnitPrice    decimal.Decimal
}

// AddressInput carries the delivery address captured at checkout.
type AddressInput struct {
	Recipient  string
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Phone      string
}

// AmountsInput carries the monetary summary computed upstream.
type AmountsInput struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	TotalAmount decimal.Decimal
}

// PlaceOrderInput creates a new order aggregate in the Ordered state.
type PlaceOrderInput struct {
	BuyerID         string
	SellerID        string
	Items           []OrderItemInput
	ShippingAddress AddressInput
	Amounts         AmountsInput
}

// ApplyTransitionInput requests one lifecycle transition. ExpectedVersion is
// the version the caller last read; a mismatch is surfaced as a conflict.
type ApplyTransitionInput struct {
	OrderID         string
	ExpectedVersion int64
	Transition      string
	ActorID         string
	ActorRole       string
}

// SetScheduleInput upserts one appointment slot.
type SetScheduleInput struct {
	OrderID  string
	Kind     string
	Date     time.Time
	Location string
	Notes    string
}

// OrderIdentifier addresses a single order by id.
type OrderIdentifier struct {
	ID string
}

// ListOrdersInput scopes a paginated listing to one actor.
type ListOrdersInput struct {
	ActorID  string
	Role     string
	Statuses []string
	Cursor   string
	Limit    int
}

// ToDomainStatuses converts and drops unknown status filter values.
func (in ListOrdersInput) ToDomainStatuses() []domain.Status {
	statuses := make([]domain.Status, 0, len(in.Statuses))
	for _, raw := range in.Statuses {
		status := domain.Status(raw)
		if status.IsValid() {
			statuses = append(statuses, status)
		}
	}
	return statuses
}
