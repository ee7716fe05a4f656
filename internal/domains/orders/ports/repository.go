package ports

import (
	"context"
	"errors"

	"github.com/rentloop/orders-api/internal/domains/orders/domain"
	"github.com/rentloop/orders-api/internal/shared/projection"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrVersionConflict reports a lost compare-and-swap: the order changed
	// since the caller's read.
	ErrVersionConflict = errors.New("order version conflict")
	ErrDuplicateOrder  = errors.New("order already exists")
	// ErrInvalidCursor reports an unparseable pagination cursor. Caller input,
	// not a storage failure.
	ErrInvalidCursor = errors.New("invalid list cursor")
)

// ListFilter scopes a listing to one actor's view of the order book.
type ListFilter struct {
	ActorID  string
	Role     domain.Role
	Statuses []domain.Status
	Cursor   string
	Limit    int
}

// ListPage is one page of the read projection plus the cursor for the next.
type ListPage struct {
	Orders     []*projection.Projection[*domain.Order]
	NextCursor string
	HasMore    bool
}

// Repository persists order aggregates. Update performs an atomic
// compare-and-swap on the version column and bumps it by one; a mismatch
// yields ErrVersionConflict and leaves the row untouched.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*projection.Projection[*domain.Order], error)
	Update(ctx context.Context, order *domain.Order, expectedVersion int64) (*projection.Projection[*domain.Order], error)
	GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Order], error)
	GetByNumber(ctx context.Context, number string) (*projection.Projection[*domain.Order], error)
	List(ctx context.Context, filter ListFilter) (*ListPage, error)
}
