package application

import (
	"errors"
	"fmt"

	"github.com/rentloop/orders-api/internal/domains/orders/domain"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
)

var (
	// ErrNotFound reports an unknown order id or number.
	ErrNotFound = errors.New("order not found")
	// ErrForbidden reports an actor not authorized for the requested action.
	ErrForbidden = errors.New("actor not authorized for this order action")
	// ErrConflict reports a stale read: either the source status no longer
	// matches or the version compare-and-swap lost. The caller must reload
	// and retry deliberately.
	ErrConflict = errors.New("order changed concurrently")
	// ErrInvalidInput reports a request violating a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrInvariant reports a timeline post-condition breach. It is a
	// programming error: the transaction is aborted and nothing is persisted.
	ErrInvariant = errors.New("order invariant violation")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ports.ErrVersionConflict), errors.Is(err, domain.ErrStaleStatus):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, domain.ErrRoleNotAllowed), errors.Is(err, domain.ErrUnknownRole):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	case errors.Is(err, domain.ErrTimelineNotPrefix):
		return fmt.Errorf("%w: %w", ErrInvariant, err)
	case errors.Is(err, ports.ErrInvalidCursor):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case isValidationError(err):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		domain.ErrMissingBuyer,
		domain.ErrMissingSeller,
		domain.ErrSameParties,
		domain.ErrEmptyItems,
		domain.ErrItemQuantity,
		domain.ErrItemName,
		domain.ErrAmountMismatch,
		domain.ErrNegativeAmount,
		domain.ErrUnknownTransition,
		domain.ErrUnknownScheduleKind,
		domain.ErrScheduleDateRequired,
		domain.ErrScheduleLocation,
		domain.ErrScheduleFrozen,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
