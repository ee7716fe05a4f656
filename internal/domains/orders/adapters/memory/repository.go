package memory

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rentloop/orders-api/internal/domains/orders/domain"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
	"github.com/rentloop/orders-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

const defaultPageSize = 20

// Repository is an in-memory order persistence adapter with the same
// compare-and-swap contract as the Postgres adapter. Used for tests and as
// the fallback when no DSN is configured.
type Repository struct {
	mu       sync.RWMutex
	orders   map[string]*record
	byNumber map[string]string
	clock    func() time.Time
	seq      int64
}

type record struct {
	order     *domain.Order
	createdAt time.Time
	updatedAt time.Time
	seq       int64
}

// NewRepository builds an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		orders:   map[string]*record{},
		byNumber: map[string]string{},
		clock:    time.Now,
	}
}

// WithClock overrides the metadata time source, for deterministic tests.
func (r *Repository) WithClock(clock func() time.Time) {
	if clock != nil {
		r.clock = clock
	}
}

// Create inserts a fresh aggregate at version 1.
func (r *Repository) Create(_ context.Context, order *domain.Order) (*projection.Projection[*domain.Order], error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.ID]; exists {
		return nil, ports.ErrDuplicateOrder
	}
	if _, exists := r.byNumber[order.Number]; exists {
		return nil, ports.ErrDuplicateOrder
	}
	now := r.clock()
	r.seq++
	stored := &record{order: order.Clone(), createdAt: now, updatedAt: now, seq: r.seq}
	stored.order.Version = 1
	r.orders[order.ID] = stored
	r.byNumber[order.Number] = order.ID
	return stored.project(), nil
}

// Update commits the mutated aggregate only when the stored version still
// matches expectedVersion, then bumps the version by one.
func (r *Repository) Update(_ context.Context, order *domain.Order, expectedVersion int64) (*projection.Projection[*domain.Order], error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if stored.order.Version != expectedVersion {
		return nil, ports.ErrVersionConflict
	}
	next := order.Clone()
	next.Version = expectedVersion + 1
	stored.order = next
	stored.updatedAt = r.clock()
	return stored.project(), nil
}

// GetByID fetches one aggregate.
func (r *Repository) GetByID(_ context.Context, id string) (*projection.Projection[*domain.Order], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return stored.project(), nil
}

// GetByNumber fetches one aggregate by its human-facing number.
func (r *Repository) GetByNumber(_ context.Context, number string) (*projection.Projection[*domain.Order], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byNumber[number]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.orders[id].project(), nil
}

// List pages through the actor's orders, newest first.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) (*ports.ListPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*record, 0, len(r.orders))
	for _, stored := range r.orders {
		if !matches(stored.order, filter) {
			continue
		}
		matched = append(matched, stored)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })

	after, err := decodeCursor(filter.Cursor)
	if err != nil {
		return nil, err
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	page := &ports.ListPage{}
	for _, stored := range matched {
		if after > 0 && stored.seq >= after {
			continue
		}
		if len(page.Orders) == limit {
			page.HasMore = true
			break
		}
		page.Orders = append(page.Orders, stored.project())
	}
	if page.HasMore && len(page.Orders) > 0 {
		last := page.Orders[len(page.Orders)-1].Entity.ID
		page.NextCursor = encodeCursor(r.orders[last].seq)
	}
	return page, nil
}

func matches(order *domain.Order, filter ports.ListFilter) bool {
	switch filter.Role {
	case domain.RoleBuyer:
		if order.BuyerID != filter.ActorID {
			return false
		}
	case domain.RoleSeller:
		if order.SellerID != filter.ActorID {
			return false
		}
	default:
		return false
	}
	if len(filter.Statuses) == 0 {
		return true
	}
	for _, status := range filter.Statuses {
		if order.Status == status {
			return true
		}
	}
	return false
}

type cursor struct {
	Seq int64 `json:"seq"`
}

func encodeCursor(seq int64) string {
	data, err := json.Marshal(cursor{Seq: seq})
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

func decodeCursor(encoded string) (int64, error) {
	if encoded == "" {
		return 0, nil
	}
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ports.ErrInvalidCursor, err)
	}
	var c cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return 0, fmt.Errorf("%w: %w", ports.ErrInvalidCursor, err)
	}
	return c.Seq, nil
}

func (rec *record) project() *projection.Projection[*domain.Order] {
	return projection.New(rec.order.Clone(), rec.createdAt, rec.updatedAt)
}
