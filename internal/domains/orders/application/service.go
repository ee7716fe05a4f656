package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	orderstypes "github.com/rentloop/orders-api/internal/domains/orders/application/types"
	"github.com/rentloop/orders-api/internal/domains/orders/domain"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
)

// Service orchestrates the order lifecycle use cases. It is stateless: all
// shared state lives behind the repository, guarded by optimistic concurrency.
type Service struct {
	repo       ports.Repository
	reviews    ports.ReviewDirectory
	dispatcher ports.EventDispatcher
	clock      func() time.Time
	newID      func() string
	newNumber  func() string
}

// Option customizes service construction.
type Option func(*Service)

// WithClock overrides the time source, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides order id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithNumberGenerator overrides order number allocation.
func WithNumberGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newNumber = gen
		}
	}
}

// WithEventDispatcher wires the post-commit event sink.
func WithEventDispatcher(dispatcher ports.EventDispatcher) Option {
	return func(s *Service) {
		s.dispatcher = dispatcher
	}
}

// NewService wires the order service with its dependencies.
func NewService(repo ports.Repository, reviews ports.ReviewDirectory, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		reviews: reviews,
		clock:   time.Now,
		newID:   uuid.NewString,
	}
	s.newNumber = func() string {
		return fmt.Sprintf("ORD-%d", s.clock().UnixNano())
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder creates the aggregate in the Ordered state with a Placed-stamped
// timeline. Amounts and address are stored immutable from here on.
func (s *Service) PlaceOrder(ctx context.Context, input orderstypes.PlaceOrderInput) (*orderstypes.OrderProjection, error) {
	now := s.clock()
	order, err := domain.NewOrder(
		s.newID(),
		s.newNumber(),
		input.BuyerID,
		input.SellerID,
		toDomainItems(input.Items),
		domain.Address(input.ShippingAddress),
		domain.Amounts(input.Amounts),
		now,
	)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}
	s.dispatch(ctx, ports.OrderEvent{
		Type:          ports.EventOrderPlaced,
		OrderID:       saved.Entity.ID,
		OrderNumber:   saved.Entity.Number,
		CurrentStatus: saved.Entity.Status,
		OccurredAt:    now,
	})
	return saved, nil
}

// ApplyTransition validates and applies one actor-gated transition. The write
// is a single compare-and-swap against the version the caller read; a repeat
// of an already-applied transition succeeds without touching the store.
func (s *Service) ApplyTransition(ctx context.Context, input orderstypes.ApplyTransitionInput) (*orderstypes.OrderProjection, error) {
	transition, err := domain.ParseTransition(input.Transition)
	if err != nil {
		return nil, mapError(err)
	}
	role, err := domain.ParseRole(input.ActorRole)
	if err != nil {
		return nil, mapError(err)
	}
	loaded, err := s.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	order := loaded.Entity
	if actualRole, ok := order.RoleOf(input.ActorID); !ok || actualRole != role {
		return nil, ErrForbidden
	}
	if order.Version != input.ExpectedVersion {
		return nil, fmt.Errorf("%w: expected version %d, have %d", ErrConflict, input.ExpectedVersion, order.Version)
	}
	previous := order.Status
	now := s.clock()
	mutated, err := order.ApplyTransition(transition, role, now)
	if err != nil {
		return nil, mapError(err)
	}
	if !mutated {
		return loaded, nil
	}
	saved, err := s.repo.Update(ctx, order, input.ExpectedVersion)
	if err != nil {
		return nil, mapError(err)
	}
	s.dispatch(ctx, ports.OrderEvent{
		Type:           ports.EventOrderStatusChanged,
		OrderID:        saved.Entity.ID,
		OrderNumber:    saved.Entity.Number,
		PreviousStatus: previous,
		CurrentStatus:  saved.Entity.Status,
		Transition:     transition,
		ActorRole:      role,
		OccurredAt:     now,
	})
	return saved, nil
}

// SetSchedule upserts one appointment slot. No transition side effects; the
// write still goes through the version compare-and-swap so a concurrent
// status change is never silently overwritten.
func (s *Service) SetSchedule(ctx context.Context, input orderstypes.SetScheduleInput) (*orderstypes.OrderProjection, error) {
	kind, err := domain.ParseScheduleKind(input.Kind)
	if err != nil {
		return nil, mapError(err)
	}
	loaded, err := s.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	order := loaded.Entity
	readVersion := order.Version
	if err := order.SetSchedule(domain.Schedule{
		Kind:     kind,
		Date:     input.Date,
		Location: input.Location,
		Notes:    input.Notes,
	}); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Update(ctx, order, readVersion)
	if err != nil {
		return nil, mapError(err)
	}
	s.dispatch(ctx, ports.OrderEvent{
		Type:          ports.EventOrderScheduleSet,
		OrderID:       saved.Entity.ID,
		OrderNumber:   saved.Entity.Number,
		CurrentStatus: saved.Entity.Status,
		ScheduleKind:  kind,
		OccurredAt:    s.clock(),
	})
	return saved, nil
}

// GetOrder loads a single aggregate by id.
func (s *Service) GetOrder(ctx context.Context, input orderstypes.OrderIdentifier) (*orderstypes.OrderProjection, error) {
	loaded, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return loaded, nil
}

// GetOrderByNumber loads a single aggregate by its human-facing number.
func (s *Service) GetOrderByNumber(ctx context.Context, number string) (*orderstypes.OrderProjection, error) {
	loaded, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, mapError(err)
	}
	return loaded, nil
}

// ListOrders returns the actor's paginated view: buyers see their rentals,
// sellers their sales.
func (s *Service) ListOrders(ctx context.Context, input orderstypes.ListOrdersInput) (*orderstypes.OrderPage, error) {
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, mapError(err)
	}
	page, err := s.repo.List(ctx, ports.ListFilter{
		ActorID:  input.ActorID,
		Role:     role,
		Statuses: input.ToDomainStatuses(),
		Cursor:   input.Cursor,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &orderstypes.OrderPage{Orders: page.Orders, NextCursor: page.NextCursor, HasMore: page.HasMore}, nil
}

// ReviewEligibility derives review availability from the live order state plus
// the authoritative review record. Client caches never decide.
func (s *Service) ReviewEligibility(ctx context.Context, input orderstypes.OrderIdentifier) (*orderstypes.ReviewEligibility, error) {
	loaded, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	order := loaded.Entity
	eligible := domain.ReviewEligible(order.Status)
	hasReview := false
	if eligible && s.reviews != nil {
		hasReview, err = s.reviews.HasReview(ctx, order.Number)
		if err != nil {
			return nil, mapError(err)
		}
	}
	return &orderstypes.ReviewEligibility{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Eligible:    eligible,
		State:       domain.ReviewStateFor(order.Status, hasReview),
	}, nil
}

// ReportEligibility derives report availability from the live order state.
func (s *Service) ReportEligibility(ctx context.Context, input orderstypes.OrderIdentifier) (*orderstypes.ReportEligibility, error) {
	loaded, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	order := loaded.Entity
	return &orderstypes.ReportEligibility{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Eligible:    domain.ReportEligible(order.Status),
	}, nil
}

// dispatch hands the event to the sink without letting delivery problems leak
// into a committed use case.
func (s *Service) dispatch(ctx context.Context, event ports.OrderEvent) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.DispatchOrderEvent(ctx, event)
}

func toDomainItems(items []orderstypes.OrderItemInput) []domain.OrderItem {
	converted := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		converted = append(converted, domain.OrderItem{
			ProductID:    item.ProductID,
			Name:         item.Name,
			Image:        item.Image,
			Size:         item.Size,
			Color:        item.Color,
			RentalPeriod: item.RentalPeriod,
			Quantity:     1,
			UnitPrice:    item.UnitPrice,
		})
	}
	return converted
}

var _ ports.Service = (*Service)(nil)
