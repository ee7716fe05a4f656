package ports

import (
	"context"

	orderstypes "github.com/rentloop/orders-api/internal/domains/orders/application/types"
)

// Service defines the order lifecycle use cases exposed to adapters
// (inbound/driving port).
type Service interface {
	PlaceOrder(ctx context.Context, input orderstypes.PlaceOrderInput) (*orderstypes.OrderProjection, error)
	ApplyTransition(ctx context.Context, input orderstypes.ApplyTransitionInput) (*orderstypes.OrderProjection, error)
	SetSchedule(ctx context.Context, input orderstypes.SetScheduleInput) (*orderstypes.OrderProjection, error)
	GetOrder(ctx context.Context, input orderstypes.OrderIdentifier) (*orderstypes.OrderProjection, error)
	GetOrderByNumber(ctx context.Context, number string) (*orderstypes.OrderProjection, error)
	ListOrders(ctx context.Context, input orderstypes.ListOrdersInput) (*orderstypes.OrderPage, error)
	ReviewEligibility(ctx context.Context, input orderstypes.OrderIdentifier) (*orderstypes.ReviewEligibility, error)
	ReportEligibility(ctx context.Context, input orderstypes.OrderIdentifier) (*orderstypes.ReportEligibility, error)
}
