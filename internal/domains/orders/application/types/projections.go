package types

import (
	"github.com/rentloop/orders-api/internal/domains/orders/domain"
	"github.com/rentloop/orders-api/internal/shared/projection"
)

// OrderProjection is the order aggregate plus persistence metadata, the shape
// every use case returns.
type OrderProjection = projection.Projection[*domain.Order]

// OrderPage is one page of an actor's order listing.
type OrderPage struct {
	Orders     []*OrderProjection
	NextCursor string
	HasMore    bool
}

// ReviewEligibility is the eligibility gate's answer for review actions.
type ReviewEligibility struct {
	OrderID     string
	OrderNumber string
	Eligible    bool
	State       domain.ReviewState
}

// ReportEligibility is the eligibility gate's answer for reporting the
// counterparty.
type ReportEligibility struct {
	OrderID     string
	OrderNumber string
	Eligible    bool
}
