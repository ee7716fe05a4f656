package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a rental order.
type Status string

const (
	StatusOrdered   Status = "ordered"
	StatusShipping  Status = "shipping"
	StatusUsing     Status = "using"
	StatusReturn    Status = "return"
	StatusCompleted Status = "completed"
	StatusReturned  Status = "returned"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transition may leave the status.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusReturned, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsValid reports whether the status belongs to the closed enum.
func (s Status) IsValid() bool {
	switch s {
	case StatusOrdered, StatusShipping, StatusUsing, StatusReturn,
		StatusCompleted, StatusReturned, StatusCancelled:
		return true
	default:
		return false
	}
}

// Role identifies which side of the rental an actor is on.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// ParseRole validates an inbound role string.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleBuyer:
		return RoleBuyer, nil
	case RoleSeller:
		return RoleSeller, nil
	default:
		return "", ErrUnknownRole
	}
}

// OrderItem is one rented unit. Quantity is always 1: every rented garment is
// a unique physical item.
type OrderItem struct {
	ProductID    string
	Name         string
	Image        string
	Size         string
	Color        string
	RentalPeriod string
	Quantity     int
	UnitPrice    decimal.Decimal
}

// Address is the delivery address captured at placement.
type Address struct {
	Recipient  string
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Phone      string
}

// Amounts carries the monetary summary computed upstream at checkout.
type Amounts struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	TotalAmount decimal.Decimal
}

// Order is the aggregate root: status, timeline, and schedules are persisted
// and versioned as one atomic unit.
type Order struct {
	ID              string
	Number          string
	BuyerID         string
	SellerID        string
	Status          Status
	Items           []OrderItem
	Amounts         Amounts
	ShippingAddress Address
	Timeline        []TimelineEvent
	Schedules       Schedules
	Version         int64
}

var (
	ErrUnknownRole      = errors.New("actor role must be buyer or seller")
	ErrMissingBuyer     = errors.New("buyer id is required")
	ErrMissingSeller    = errors.New("seller id is required")
	ErrSameParties      = errors.New("buyer and seller must be distinct")
	ErrEmptyItems       = errors.New("at least one order item is required")
	ErrItemQuantity     = errors.New("rented items carry quantity 1")
	ErrItemName         = errors.New("order item name is required")
	ErrAmountMismatch   = errors.New("total amount must equal subtotal plus tax")
	ErrNegativeAmount   = errors.New("amounts must not be negative")
)

// NewOrder validates the invariants and builds a freshly placed order with a
// Placed-stamped timeline.
func NewOrder(id, number, buyerID, sellerID string, items []OrderItem, address Address, amounts Amounts, now time.Time) (*Order, error) {
	if strings.TrimSpace(buyerID) == "" {
		return nil, ErrMissingBuyer
	}
	if strings.TrimSpace(sellerID) == "" {
		return nil, ErrMissingSeller
	}
	if buyerID == sellerID {
		return nil, ErrSameParties
	}
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range items {
		if item.Quantity != 1 {
			return nil, ErrItemQuantity
		}
		if strings.TrimSpace(item.Name) == "" {
			return nil, ErrItemName
		}
	}
	if err := amounts.validate(); err != nil {
		return nil, err
	}
	return &Order{
		ID:              id,
		Number:          number,
		BuyerID:         buyerID,
		SellerID:        sellerID,
		Status:          StatusOrdered,
		Items:           append([]OrderItem{}, items...),
		Amounts:         amounts,
		ShippingAddress: address,
		Timeline:        NewTimeline(now),
		Version:         1,
	}, nil
}

func (a Amounts) validate() error {
	if a.Subtotal.IsNegative() || a.Tax.IsNegative() || a.TotalAmount.IsNegative() {
		return ErrNegativeAmount
	}
	if !a.Subtotal.Add(a.Tax).Equal(a.TotalAmount) {
		return ErrAmountMismatch
	}
	return nil
}

// RoleOf resolves the role an actor plays on this order, if any.
func (o *Order) RoleOf(actorID string) (Role, bool) {
	switch actorID {
	case o.BuyerID:
		return RoleBuyer, true
	case o.SellerID:
		return RoleSeller, true
	default:
		return "", false
	}
}

// Clone returns a deep copy so repository callers never alias stored state.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]OrderItem{}, o.Items...)
	clone.Timeline = cloneTimeline(o.Timeline)
	clone.Schedules = o.Schedules.clone()
	return &clone
}
