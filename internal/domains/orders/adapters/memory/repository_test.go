package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rentloop/orders-api/internal/domains/orders/domain"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
)

func newOrder(t *testing.T, id, number string) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(id, number, "buyer-1", "seller-1",
		[]domain.OrderItem{{ProductID: "prd-1", Name: "Tweed Blazer", Quantity: 1, UnitPrice: decimal.NewFromInt(30)}},
		domain.Address{Recipient: "Jo", Line1: "1 Main St"},
		domain.Amounts{Subtotal: decimal.NewFromInt(30), Tax: decimal.Zero, TotalAmount: decimal.NewFromInt(30)},
		time.Now(),
	)
	require.NoError(t, err)
	return order
}

func TestCreateAndGet(t *testing.T) {
	repo := NewRepository()
	order := newOrder(t, "ord-1", "ORD-1")

	saved, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	require.EqualValues(t, 1, saved.Entity.Version)

	byID, err := repo.GetByID(context.Background(), "ord-1")
	require.NoError(t, err)
	require.Equal(t, "ORD-1", byID.Entity.Number)

	byNumber, err := repo.GetByNumber(context.Background(), "ORD-1")
	require.NoError(t, err)
	require.Equal(t, "ord-1", byNumber.Entity.ID)

	_, err = repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ports.ErrNotFound)

	_, err = repo.Create(context.Background(), newOrder(t, "ord-1", "ORD-2"))
	require.ErrorIs(t, err, ports.ErrDuplicateOrder)
}

func TestUpdate_CompareAndSwap(t *testing.T) {
	repo := NewRepository()
	_, err := repo.Create(context.Background(), newOrder(t, "ord-1", "ORD-1"))
	require.NoError(t, err)

	loaded, err := repo.GetByID(context.Background(), "ord-1")
	require.NoError(t, err)
	mutated := loaded.Entity
	_, err = mutated.ApplyTransition(domain.TransitionConfirmPayment, domain.RoleSeller, time.Now())
	require.NoError(t, err)

	saved, err := repo.Update(context.Background(), mutated, 1)
	require.NoError(t, err)
	require.EqualValues(t, 2, saved.Entity.Version)

	// The stale writer loses.
	_, err = repo.Update(context.Background(), mutated, 1)
	require.ErrorIs(t, err, ports.ErrVersionConflict)
}

func TestUpdate_ConcurrentSingleWinner(t *testing.T) {
	repo := NewRepository()
	_, err := repo.Create(context.Background(), newOrder(t, "ord-1", "ORD-1"))
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loaded, err := repo.GetByID(context.Background(), "ord-1")
			if err != nil {
				errs[i] = err
				return
			}
			_, errs[i] = repo.Update(context.Background(), loaded.Entity, 1)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, ports.ErrVersionConflict)
		}
	}
	require.Equal(t, 1, winners)
}

func TestGet_ReturnsClones(t *testing.T) {
	repo := NewRepository()
	_, err := repo.Create(context.Background(), newOrder(t, "ord-1", "ORD-1"))
	require.NoError(t, err)

	first, err := repo.GetByID(context.Background(), "ord-1")
	require.NoError(t, err)
	first.Entity.Status = domain.StatusCompleted

	second, err := repo.GetByID(context.Background(), "ord-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusOrdered, second.Entity.Status)
}

func TestList_CursorPaging(t *testing.T) {
	repo := NewRepository()
	for _, id := range []string{"ord-1", "ord-2", "ord-3"} {
		_, err := repo.Create(context.Background(), newOrder(t, id, "ORD-"+id))
		require.NoError(t, err)
	}

	filter := ports.ListFilter{ActorID: "seller-1", Role: domain.RoleSeller, Limit: 2}
	first, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.True(t, first.HasMore)
	// Newest first.
	require.Equal(t, "ord-3", first.Orders[0].Entity.ID)

	filter.Cursor = first.NextCursor
	second, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	require.Equal(t, "ord-1", second.Orders[0].Entity.ID)
	require.False(t, second.HasMore)
}

func TestList_MalformedCursor(t *testing.T) {
	repo := NewRepository()
	_, err := repo.Create(context.Background(), newOrder(t, "ord-1", "ORD-1"))
	require.NoError(t, err)

	filter := ports.ListFilter{ActorID: "seller-1", Role: domain.RoleSeller}

	filter.Cursor = "not-base64!"
	_, err = repo.List(context.Background(), filter)
	require.ErrorIs(t, err, ports.ErrInvalidCursor)

	// Valid base64 wrapping invalid JSON fails the same way.
	filter.Cursor = "bm90LWpzb24="
	_, err = repo.List(context.Background(), filter)
	require.ErrorIs(t, err, ports.ErrInvalidCursor)
}
