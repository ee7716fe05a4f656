package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func placedOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder(
		"ord-1", "ORD-1001", "buyer-1", "seller-1",
		[]OrderItem{{ProductID: "prd-1", Name: "Linen Jacket", Quantity: 1, UnitPrice: decimal.NewFromInt(40)}},
		Address{Recipient: "Jo", Line1: "1 Main St", City: "Springfield", PostalCode: "12345"},
		Amounts{Subtotal: decimal.NewFromInt(40), Tax: decimal.NewFromInt(4), TotalAmount: decimal.NewFromInt(44)},
		time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return order
}

func advance(t *testing.T, order *Order, tr Transition, role Role) {
	t.Helper()
	mutated, err := order.ApplyTransition(tr, role, time.Now())
	require.NoError(t, err)
	require.True(t, mutated)
}

func TestApplyTransition_FullHappyPath(t *testing.T) {
	order := placedOrder(t)

	advance(t, order, TransitionConfirmPayment, RoleSeller)
	require.Equal(t, StatusShipping, order.Status)

	advance(t, order, TransitionConfirmReceived, RoleBuyer)
	require.Equal(t, StatusUsing, order.Status)
	require.NotNil(t, order.Timeline[2].CompletedAt)
	require.NotNil(t, order.Timeline[3].CompletedAt)

	advance(t, order, TransitionInitiateReturn, RoleBuyer)
	require.Equal(t, StatusReturn, order.Status)
	require.Equal(t, "Return initiated by customer", order.Timeline[4].Description)

	advance(t, order, TransitionMarkCompleted, RoleSeller)
	require.Equal(t, StatusCompleted, order.Status)
	require.True(t, IsPrefixComplete(order.Timeline))
}

func TestApplyTransition_RoleGating(t *testing.T) {
	order := placedOrder(t)
	advance(t, order, TransitionConfirmPayment, RoleSeller)
	advance(t, order, TransitionConfirmReceived, RoleBuyer)

	// Only the seller completes; only the buyer starts a return.
	_, err := order.ApplyTransition(TransitionMarkCompleted, RoleBuyer, time.Now())
	require.ErrorIs(t, err, ErrRoleNotAllowed)
	require.Equal(t, StatusUsing, order.Status)

	_, err = order.ApplyTransition(TransitionInitiateReturn, RoleSeller, time.Now())
	require.ErrorIs(t, err, ErrRoleNotAllowed)
	require.Equal(t, StatusUsing, order.Status)
}

func TestApplyTransition_RoleCheckedBeforeState(t *testing.T) {
	order := placedOrder(t)

	// Order is far from Return, but the buyer must still see Forbidden.
	_, err := order.ApplyTransition(TransitionMarkCompleted, RoleBuyer, time.Now())
	require.ErrorIs(t, err, ErrRoleNotAllowed)
}

func TestApplyTransition_StaleStatusIsConflict(t *testing.T) {
	order := placedOrder(t)

	_, err := order.ApplyTransition(TransitionInitiateReturn, RoleBuyer, time.Now())
	require.ErrorIs(t, err, ErrStaleStatus)
	require.Equal(t, StatusOrdered, order.Status)
}

func TestApplyTransition_IdempotentRepeat(t *testing.T) {
	order := placedOrder(t)
	advance(t, order, TransitionConfirmPayment, RoleSeller)
	stamp := *order.Timeline[1].CompletedAt

	mutated, err := order.ApplyTransition(TransitionConfirmPayment, RoleSeller, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.False(t, mutated)
	require.Equal(t, StatusShipping, order.Status)
	require.Equal(t, stamp, *order.Timeline[1].CompletedAt)
}

func TestApplyTransition_NoSkippingStates(t *testing.T) {
	order := placedOrder(t)

	_, err := order.ApplyTransition(TransitionConfirmReceived, RoleBuyer, time.Now())
	require.ErrorIs(t, err, ErrStaleStatus)

	_, err = order.ApplyTransition(TransitionMarkCompleted, RoleSeller, time.Now())
	require.ErrorIs(t, err, ErrStaleStatus)
}

func TestCancel_BuyerOnlyBeforeShipping(t *testing.T) {
	order := placedOrder(t)

	mutated, err := order.ApplyTransition(TransitionCancel, RoleBuyer, time.Now())
	require.NoError(t, err)
	require.True(t, mutated)
	require.Equal(t, StatusCancelled, order.Status)

	shipped := placedOrder(t)
	advance(t, shipped, TransitionConfirmPayment, RoleSeller)
	_, err = shipped.ApplyTransition(TransitionCancel, RoleBuyer, time.Now())
	require.ErrorIs(t, err, ErrRoleNotAllowed)
}

func TestCancel_SellerAnyNonTerminal(t *testing.T) {
	order := placedOrder(t)
	advance(t, order, TransitionConfirmPayment, RoleSeller)
	advance(t, order, TransitionConfirmReceived, RoleBuyer)

	mutated, err := order.ApplyTransition(TransitionCancel, RoleSeller, time.Now())
	require.NoError(t, err)
	require.True(t, mutated)
	require.Equal(t, StatusCancelled, order.Status)
}

func TestCancel_TerminalStates(t *testing.T) {
	order := placedOrder(t)
	advance(t, order, TransitionConfirmPayment, RoleSeller)
	advance(t, order, TransitionConfirmReceived, RoleBuyer)
	advance(t, order, TransitionInitiateReturn, RoleBuyer)
	advance(t, order, TransitionMarkCompleted, RoleSeller)

	_, err := order.ApplyTransition(TransitionCancel, RoleSeller, time.Now())
	require.ErrorIs(t, err, ErrStaleStatus)

	cancelled := placedOrder(t)
	advance(t, cancelled, TransitionCancel, RoleSeller)
	mutated, err := cancelled.ApplyTransition(TransitionCancel, RoleSeller, time.Now())
	require.NoError(t, err)
	require.False(t, mutated)
}

func TestCancel_FreezesTimeline(t *testing.T) {
	order := placedOrder(t)
	advance(t, order, TransitionConfirmPayment, RoleSeller)
	before := cloneTimeline(order.Timeline)

	advance(t, order, TransitionCancel, RoleSeller)
	require.Equal(t, before, order.Timeline)
}

func TestParseTransition(t *testing.T) {
	for _, name := range []string{"ConfirmPayment", "ConfirmReceived", "InitiateReturn", "MarkCompleted", "Cancel"} {
		_, err := ParseTransition(name)
		require.NoError(t, err, name)
	}
	_, err := ParseTransition("TeleportToCompleted")
	require.ErrorIs(t, err, ErrUnknownTransition)
}

func TestStatusOrdering_ForwardOnly(t *testing.T) {
	// No transition rule targets an earlier state than its source.
	rank := map[Status]int{StatusOrdered: 0, StatusShipping: 1, StatusUsing: 2, StatusReturn: 3, StatusCompleted: 4}
	for name, rule := range transitionRules {
		require.Greater(t, rank[rule.to], rank[rule.from], string(name))
	}
}
