package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	orderstypes "github.com/rentloop/orders-api/internal/domains/orders/application/types"
	"github.com/rentloop/orders-api/internal/domains/orders/domain"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
)

const tracerName = "github.com/rentloop/orders-api/internal/domains/orders/adapters/observability/service"

// Service decorates the orders application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// PlaceOrder creates a new order aggregate with instrumentation.
func (s *Service) PlaceOrder(ctx context.Context, input orderstypes.PlaceOrderInput) (*orderstypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.PlaceOrder",
		attribute.String("order.buyer_id", input.BuyerID),
		attribute.String("order.seller_id", input.SellerID),
		attribute.Int("order.item_count", len(input.Items)),
	)
	defer span.End()

	s.logInfo(ctx, "placing order", slog.String("buyer.id", input.BuyerID), slog.String("seller.id", input.SellerID))
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("buyer.id", input.BuyerID))
	}
	if result != nil && result.Entity != nil {
		s.metrics.recordPlaced(ctx)
		span.SetAttributes(attribute.String("order.number", result.Entity.Number))
		s.logInfo(ctx, "order placed",
			slog.String("order.id", result.Entity.ID),
			slog.String("order.number", result.Entity.Number),
		)
	}
	return result, nil
}

// ApplyTransition drives one lifecycle step on an existing order.
func (s *Service) ApplyTransition(ctx context.Context, input orderstypes.ApplyTransitionInput) (*orderstypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ApplyTransition",
		attribute.String("order.id", input.OrderID),
		attribute.String("order.transition", input.Transition),
		attribute.String("actor.role", input.ActorRole),
		attribute.Int64("order.expected_version", input.ExpectedVersion),
	)
	defer span.End()

	s.logInfo(ctx, "applying transition",
		slog.String("order.id", input.OrderID),
		slog.String("transition", input.Transition),
		slog.String("actor.role", input.ActorRole),
	)
	result, err := s.inner.ApplyTransition(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to apply transition",
			slog.String("order.id", input.OrderID),
			slog.String("transition", input.Transition),
		)
	}
	if result != nil && result.Entity != nil {
		s.metrics.recordTransition(ctx, input.Transition, result.Entity.Status)
		span.SetAttributes(attribute.String("order.status", string(result.Entity.Status)))
		s.logInfo(ctx, "transition applied",
			slog.String("order.id", result.Entity.ID),
			slog.String("order.status", string(result.Entity.Status)),
			slog.Int64("order.version", result.Entity.Version),
		)
	}
	return result, nil
}

// SetSchedule upserts one appointment slot on the order.
func (s *Service) SetSchedule(ctx context.Context, input orderstypes.SetScheduleInput) (*orderstypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.SetSchedule",
		attribute.String("order.id", input.OrderID),
		attribute.String("schedule.kind", input.Kind),
	)
	defer span.End()

	s.logInfo(ctx, "setting schedule", slog.String("order.id", input.OrderID), slog.String("schedule.kind", input.Kind))
	result, err := s.inner.SetSchedule(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to set schedule",
			slog.String("order.id", input.OrderID),
			slog.String("schedule.kind", input.Kind),
		)
	}
	if result != nil && result.Entity != nil {
		s.metrics.recordScheduleSet(ctx, input.Kind)
		s.logInfo(ctx, "schedule set", slog.String("order.id", result.Entity.ID), slog.String("schedule.kind", input.Kind))
	}
	return result, nil
}

// GetOrder loads a single order aggregate.
func (s *Service) GetOrder(ctx context.Context, input orderstypes.OrderIdentifier) (*orderstypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrder", attribute.String("order.id", input.ID))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", input.ID))
	}
	if result != nil && result.Entity != nil {
		span.SetAttributes(attribute.String("order.status", string(result.Entity.Status)))
	}
	return result, nil
}

// GetOrderByNumber loads a single order by its human-facing number.
func (s *Service) GetOrderByNumber(ctx context.Context, number string) (*orderstypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrderByNumber", attribute.String("order.number", number))
	defer span.End()

	result, err := s.inner.GetOrderByNumber(ctx, number)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order by number", slog.String("order.number", number))
	}
	return result, nil
}

// ListOrders pages through the actor's orders.
func (s *Service) ListOrders(ctx context.Context, input orderstypes.ListOrdersInput) (*orderstypes.OrderPage, error) {
	ctx, span := s.startSpan(ctx, "Service.ListOrders",
		attribute.String("actor.id", input.ActorID),
		attribute.String("actor.role", input.Role),
		attribute.StringSlice("order.statuses.requested", input.Statuses),
	)
	defer span.End()

	s.logInfo(ctx, "listing orders", slog.String("actor.id", input.ActorID), slog.String("actor.role", input.Role))
	result, err := s.inner.ListOrders(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.String("actor.id", input.ActorID))
	}
	if result != nil {
		span.SetAttributes(attribute.Int("order.result.count", len(result.Orders)))
		s.logInfo(ctx, "listed orders", slog.Int("count", len(result.Orders)), slog.Bool("has_more", result.HasMore))
	}
	return result, nil
}

// ReviewEligibility answers whether the order can carry a review right now.
func (s *Service) ReviewEligibility(ctx context.Context, input orderstypes.OrderIdentifier) (*orderstypes.ReviewEligibility, error) {
	ctx, span := s.startSpan(ctx, "Service.ReviewEligibility", attribute.String("order.id", input.ID))
	defer span.End()

	result, err := s.inner.ReviewEligibility(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to resolve review eligibility", slog.String("order.id", input.ID))
	}
	if result != nil {
		span.SetAttributes(
			attribute.Bool("review.eligible", result.Eligible),
			attribute.String("review.state", string(result.State)),
		)
	}
	return result, nil
}

// ReportEligibility answers whether the counterparty can be reported.
func (s *Service) ReportEligibility(ctx context.Context, input orderstypes.OrderIdentifier) (*orderstypes.ReportEligibility, error) {
	ctx, span := s.startSpan(ctx, "Service.ReportEligibility", attribute.String("order.id", input.ID))
	defer span.End()

	result, err := s.inner.ReportEligibility(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to resolve report eligibility", slog.String("order.id", input.ID))
	}
	if result != nil {
		span.SetAttributes(attribute.Bool("report.eligible", result.Eligible))
	}
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersPlaced      metric.Int64Counter
	orderTransitions  metric.Int64Counter
	orderSchedulesSet metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.placed", metric.WithDescription("Number of orders placed"))
	orderTransitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Number of lifecycle transitions applied"))
	orderSchedulesSet, _ := m.Int64Counter("orders.service.schedules_set", metric.WithDescription("Number of appointment slots set"))
	return serviceMetrics{
		ordersPlaced:      ordersPlaced,
		orderTransitions:  orderTransitions,
		orderSchedulesSet: orderSchedulesSet,
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context) {
	addCounter(ctx, m.ordersPlaced, 1)
}

func (m serviceMetrics) recordTransition(ctx context.Context, transition string, status domain.Status) {
	addCounter(ctx, m.orderTransitions, 1,
		attribute.String("order.transition", transition),
		attribute.String("order.status", string(status)),
	)
}

func (m serviceMetrics) recordScheduleSet(ctx context.Context, kind string) {
	addCounter(ctx, m.orderSchedulesSet, 1, attribute.String("schedule.kind", kind))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
