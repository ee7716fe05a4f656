package ports

import "context"

// ReviewDirectory answers whether a review has already been filed for an
// order. The review coordinator owns its content and storage; this core only
// needs the live existence check (at most one review per order number). The
// lookup must always hit the authoritative store, never a client-side cache.
type ReviewDirectory interface {
	HasReview(ctx context.Context, orderNumber string) (bool, error)
}
