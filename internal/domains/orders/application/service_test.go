package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	ordersmemory "github.com/rentloop/orders-api/internal/domains/orders/adapters/memory"
	orderstypes "github.com/rentloop/orders-api/internal/domains/orders/application/types"
	"github.com/rentloop/orders-api/internal/domains/orders/domain"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
)

func placeInput() orderstypes.PlaceOrderInput {
	return orderstypes.PlaceOrderInput{
		BuyerID:  "buyer-1",
		SellerID: "seller-1",
		Items: []orderstypes.OrderItemInput{{
			ProductID:    "prd-1",
			Name:         "Silk Dress",
			Size:         "M",
			Color:        "navy",
			RentalPeriod: "7d",
			UnitPrice:    decimal.NewFromInt(55),
		}},
		ShippingAddress: orderstypes.AddressInput{Recipient: "Jo", Line1: "1 Main St", City: "Springfield", PostalCode: "12345"},
		Amounts: orderstypes.AmountsInput{
			Subtotal:    decimal.NewFromInt(55),
			Tax:         decimal.NewFromInt(5),
			TotalAmount: decimal.NewFromInt(60),
		},
	}
}

func newTestService(t *testing.T, opts ...Option) (*Service, *ordersmemory.ReviewDirectory) {
	t.Helper()
	reviews := ordersmemory.NewReviewDirectory()
	svc := NewService(ordersmemory.NewRepository(), reviews, opts...)
	return svc, reviews
}

func transition(orderID string, version int64, name, actorID, role string) orderstypes.ApplyTransitionInput {
	return orderstypes.ApplyTransitionInput{
		OrderID:         orderID,
		ExpectedVersion: version,
		Transition:      name,
		ActorID:         actorID,
		ActorRole:       role,
	}
}

func TestPlaceOrder(t *testing.T) {
	svc, _ := newTestService(t)

	proj, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)
	require.Equal(t, domain.StatusOrdered, proj.Entity.Status)
	require.EqualValues(t, 1, proj.Entity.Version)
	require.NotEmpty(t, proj.Entity.ID)
	require.Contains(t, proj.Entity.Number, "ORD-")
	require.NotNil(t, proj.Entity.Timeline[0].CompletedAt)
	require.False(t, proj.Metadata.CreatedAt.IsZero())
}

func TestPlaceOrder_InvalidInput(t *testing.T) {
	svc, _ := newTestService(t)

	input := placeInput()
	input.SellerID = input.BuyerID
	_, err := svc.PlaceOrder(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestApplyTransition_SellerConfirmsPayment(t *testing.T) {
	svc, _ := newTestService(t)
	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)

	proj, err := svc.ApplyTransition(context.Background(),
		transition(placed.Entity.ID, 1, "ConfirmPayment", "seller-1", "seller"))
	require.NoError(t, err)
	require.Equal(t, domain.StatusShipping, proj.Entity.Status)
	require.EqualValues(t, 2, proj.Entity.Version)
	require.NotNil(t, proj.Entity.Timeline[1].CompletedAt)
	require.Nil(t, proj.Entity.Timeline[2].CompletedAt)
}

func TestApplyTransition_BuyerConfirmsReceived(t *testing.T) {
	svc, _ := newTestService(t)
	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)
	id := placed.Entity.ID

	_, err = svc.ApplyTransition(context.Background(), transition(id, 1, "ConfirmPayment", "seller-1", "seller"))
	require.NoError(t, err)

	proj, err := svc.ApplyTransition(context.Background(), transition(id, 2, "ConfirmReceived", "buyer-1", "buyer"))
	require.NoError(t, err)
	require.Equal(t, domain.StatusUsing, proj.Entity.Status)
	require.NotNil(t, proj.Entity.Timeline[2].CompletedAt)
	require.NotNil(t, proj.Entity.Timeline[3].CompletedAt)
	require.Nil(t, proj.Entity.Timeline[4].CompletedAt)
}

func TestApplyTransition_WrongRoleForbidden(t *testing.T) {
	svc, _ := newTestService(t)
	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)
	id := placed.Entity.ID

	_, err = svc.ApplyTransition(context.Background(), transition(id, 1, "ConfirmPayment", "seller-1", "seller"))
	require.NoError(t, err)
	_, err = svc.ApplyTransition(context.Background(), transition(id, 2, "ConfirmReceived", "buyer-1", "buyer"))
	require.NoError(t, err)

	// Only the seller may complete; only the buyer may start the return.
	_, err = svc.ApplyTransition(context.Background(), transition(id, 3, "MarkCompleted", "buyer-1", "buyer"))
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ApplyTransition(context.Background(), transition(id, 3, "InitiateReturn", "seller-1", "seller"))
	require.ErrorIs(t, err, ErrForbidden)

	current, err := svc.GetOrder(context.Background(), orderstypes.OrderIdentifier{ID: id})
	require.NoError(t, err)
	require.Equal(t, domain.StatusUsing, current.Entity.Status)
	require.EqualValues(t, 3, current.Entity.Version)
}

func TestApplyTransition_StrangerForbidden(t *testing.T) {
	svc, _ := newTestService(t)
	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)

	_, err = svc.ApplyTransition(context.Background(),
		transition(placed.Entity.ID, 1, "ConfirmPayment", "someone-else", "seller"))
	require.ErrorIs(t, err, ErrForbidden)

	// Claiming the wrong role for a real participant is forbidden too.
	_, err = svc.ApplyTransition(context.Background(),
		transition(placed.Entity.ID, 1, "ConfirmPayment", "buyer-1", "seller"))
	require.ErrorIs(t, err, ErrForbidden)
}

func TestApplyTransition_VersionMismatchConflict(t *testing.T) {
	svc, _ := newTestService(t)
	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)

	_, err = svc.ApplyTransition(context.Background(),
		transition(placed.Entity.ID, 7, "ConfirmPayment", "seller-1", "seller"))
	require.ErrorIs(t, err, ErrConflict)
}

func TestApplyTransition_StaleStatusConflict(t *testing.T) {
	svc, _ := newTestService(t)
	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)

	_, err = svc.ApplyTransition(context.Background(),
		transition(placed.Entity.ID, 1, "InitiateReturn", "buyer-1", "buyer"))
	require.ErrorIs(t, err, ErrConflict)
}

func TestApplyTransition_IdempotentRepeatNoWrite(t *testing.T) {
	svc, _ := newTestService(t)
	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)
	id := placed.Entity.ID

	first, err := svc.ApplyTransition(context.Background(), transition(id, 1, "ConfirmPayment", "seller-1", "seller"))
	require.NoError(t, err)
	require.EqualValues(t, 2, first.Entity.Version)

	// Retry with the fresh version: target state already reached, no bump.
	second, err := svc.ApplyTransition(context.Background(), transition(id, 2, "ConfirmPayment", "seller-1", "seller"))
	require.NoError(t, err)
	require.EqualValues(t, 2, second.Entity.Version)
	require.Equal(t, domain.StatusShipping, second.Entity.Status)
}

func TestApplyTransition_ConcurrentLosersGetConflict(t *testing.T) {
	svc, _ := newTestService(t)
	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)
	id := placed.Entity.ID

	_, err = svc.ApplyTransition(context.Background(), transition(id, 1, "ConfirmPayment", "seller-1", "seller"))
	require.NoError(t, err)
	_, err = svc.ApplyTransition(context.Background(), transition(id, 2, "ConfirmReceived", "buyer-1", "buyer"))
	require.NoError(t, err)
	_, err = svc.ApplyTransition(context.Background(), transition(id, 3, "InitiateReturn", "buyer-1", "buyer"))
	require.NoError(t, err)

	// Two seller sessions both read version 4 and race MarkCompleted.
	const sessions = 2
	var wg sync.WaitGroup
	errs := make([]error, sessions)
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ApplyTransition(context.Background(), transition(id, 4, "MarkCompleted", "seller-1", "seller"))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, ErrConflict)
		}
	}
	require.Equal(t, 1, winners)

	final, err := svc.GetOrder(context.Background(), orderstypes.OrderIdentifier{ID: id})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, final.Entity.Status)
	require.EqualValues(t, 5, final.Entity.Version)
}

func TestSetSchedule(t *testing.T) {
	svc, _ := newTestService(t)
	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)

	date := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	proj, err := svc.SetSchedule(context.Background(), orderstypes.SetScheduleInput{
		OrderID:  placed.Entity.ID,
		Kind:     "receive",
		Date:     date,
		Location: "Locker 12",
		Notes:    "ring twice",
	})
	require.NoError(t, err)
	require.NotNil(t, proj.Entity.Schedules.Receive)
	require.Equal(t, date, proj.Entity.Schedules.Receive.Date)
	require.Equal(t, domain.StatusOrdered, proj.Entity.Status)
	require.EqualValues(t, 2, proj.Entity.Version)
}

func TestSetSchedule_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)

	_, err = svc.SetSchedule(context.Background(), orderstypes.SetScheduleInput{
		OrderID: placed.Entity.ID,
		Kind:    "return",
		Date:    time.Now(),
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SetSchedule(context.Background(), orderstypes.SetScheduleInput{
		OrderID:  "missing",
		Kind:     "return",
		Date:     time.Now(),
		Location: "Station",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrderByNumber(t *testing.T) {
	svc, _ := newTestService(t)
	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)

	found, err := svc.GetOrderByNumber(context.Background(), placed.Entity.Number)
	require.NoError(t, err)
	require.Equal(t, placed.Entity.ID, found.Entity.ID)

	_, err = svc.GetOrderByNumber(context.Background(), "ORD-unknown")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListOrders_ScopedToActor(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)
	other := placeInput()
	other.BuyerID = "buyer-2"
	_, err = svc.PlaceOrder(context.Background(), other)
	require.NoError(t, err)

	buyerPage, err := svc.ListOrders(context.Background(), orderstypes.ListOrdersInput{ActorID: "buyer-1", Role: "buyer"})
	require.NoError(t, err)
	require.Len(t, buyerPage.Orders, 1)

	sellerPage, err := svc.ListOrders(context.Background(), orderstypes.ListOrdersInput{ActorID: "seller-1", Role: "seller"})
	require.NoError(t, err)
	require.Len(t, sellerPage.Orders, 2)
}

func TestListOrders_StatusFilterAndPaging(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		placed, err := svc.PlaceOrder(context.Background(), placeInput())
		require.NoError(t, err)
		if i == 0 {
			_, err = svc.ApplyTransition(context.Background(),
				transition(placed.Entity.ID, 1, "ConfirmPayment", "seller-1", "seller"))
			require.NoError(t, err)
		}
	}

	shipping, err := svc.ListOrders(context.Background(), orderstypes.ListOrdersInput{
		ActorID: "seller-1", Role: "seller", Statuses: []string{"shipping"},
	})
	require.NoError(t, err)
	require.Len(t, shipping.Orders, 1)

	first, err := svc.ListOrders(context.Background(), orderstypes.ListOrdersInput{
		ActorID: "seller-1", Role: "seller", Limit: 2,
	})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	rest, err := svc.ListOrders(context.Background(), orderstypes.ListOrdersInput{
		ActorID: "seller-1", Role: "seller", Limit: 2, Cursor: first.NextCursor,
	})
	require.NoError(t, err)
	require.Len(t, rest.Orders, 1)
	require.False(t, rest.HasMore)
}

func completeOrder(t *testing.T, svc *Service) *orderstypes.OrderProjection {
	t.Helper()
	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)
	id := placed.Entity.ID
	steps := []orderstypes.ApplyTransitionInput{
		transition(id, 1, "ConfirmPayment", "seller-1", "seller"),
		transition(id, 2, "ConfirmReceived", "buyer-1", "buyer"),
		transition(id, 3, "InitiateReturn", "buyer-1", "buyer"),
		transition(id, 4, "MarkCompleted", "seller-1", "seller"),
	}
	var proj *orderstypes.OrderProjection
	for _, step := range steps {
		proj, err = svc.ApplyTransition(context.Background(), step)
		require.NoError(t, err)
	}
	return proj
}

func TestReviewEligibility_Lifecycle(t *testing.T) {
	svc, reviews := newTestService(t)
	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)

	pending, err := svc.ReviewEligibility(context.Background(), orderstypes.OrderIdentifier{ID: placed.Entity.ID})
	require.NoError(t, err)
	require.False(t, pending.Eligible)
	require.Equal(t, domain.ReviewUnavailable, pending.State)

	completed := completeOrder(t, svc)

	writable, err := svc.ReviewEligibility(context.Background(), orderstypes.OrderIdentifier{ID: completed.Entity.ID})
	require.NoError(t, err)
	require.True(t, writable.Eligible)
	require.Equal(t, domain.ReviewWritable, writable.State)

	reviews.MarkReviewed(completed.Entity.Number)
	editable, err := svc.ReviewEligibility(context.Background(), orderstypes.OrderIdentifier{ID: completed.Entity.ID})
	require.NoError(t, err)
	require.True(t, editable.Eligible)
	require.Equal(t, domain.ReviewEditable, editable.State)
}

func TestReportEligibility(t *testing.T) {
	svc, _ := newTestService(t)
	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)

	blocked, err := svc.ReportEligibility(context.Background(), orderstypes.OrderIdentifier{ID: placed.Entity.ID})
	require.NoError(t, err)
	require.False(t, blocked.Eligible)

	completed := completeOrder(t, svc)
	allowed, err := svc.ReportEligibility(context.Background(), orderstypes.OrderIdentifier{ID: completed.Entity.ID})
	require.NoError(t, err)
	require.True(t, allowed.Eligible)
}

type capturingDispatcher struct {
	mu     sync.Mutex
	events []ports.OrderEvent
}

func (d *capturingDispatcher) DispatchOrderEvent(_ context.Context, event ports.OrderEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func TestEventsDispatchedAfterCommit(t *testing.T) {
	dispatcher := &capturingDispatcher{}
	svc, _ := newTestService(t, WithEventDispatcher(dispatcher))

	placed, err := svc.PlaceOrder(context.Background(), placeInput())
	require.NoError(t, err)
	_, err = svc.ApplyTransition(context.Background(),
		transition(placed.Entity.ID, 1, "ConfirmPayment", "seller-1", "seller"))
	require.NoError(t, err)
	_, err = svc.SetSchedule(context.Background(), orderstypes.SetScheduleInput{
		OrderID: placed.Entity.ID, Kind: "receive", Date: time.Now(), Location: "Locker 12",
	})
	require.NoError(t, err)

	require.Len(t, dispatcher.events, 3)
	require.Equal(t, ports.EventOrderPlaced, dispatcher.events[0].Type)
	require.Equal(t, ports.EventOrderStatusChanged, dispatcher.events[1].Type)
	require.Equal(t, domain.StatusOrdered, dispatcher.events[1].PreviousStatus)
	require.Equal(t, domain.StatusShipping, dispatcher.events[1].CurrentStatus)
	require.Equal(t, ports.EventOrderScheduleSet, dispatcher.events[2].Type)

	// A failed transition dispatches nothing.
	_, err = svc.ApplyTransition(context.Background(),
		transition(placed.Entity.ID, 99, "ConfirmReceived", "buyer-1", "buyer"))
	require.ErrorIs(t, err, ErrConflict)
	require.Len(t, dispatcher.events, 3)
}
