package orderserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	ordersapp "github.com/rentloop/orders-api/internal/domains/orders/application"
	apierrors "github.com/rentloop/orders-api/internal/shared/errors"
)

// problems maps application errors to RFC 7807 responses; anything the mapper
// does not recognize falls through to a 500.
var problems = apierrors.NewChainedResponder("", mapOrderServiceError)

func mapOrderServiceError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersapp.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func respondOrderServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problems.RespondError(c, err)
}

// respondTransitionError is respondOrderServiceError plus the expected version
// on conflicts, so clients know which read went stale.
func respondTransitionError(c *gin.Context, err error, expectedVersion int64) {
	if errors.Is(err, ordersapp.ErrConflict) {
		problems.Respond(c, apierrors.NewVersionConflictProblem(err.Error(), expectedVersion))
		return
	}
	respondOrderServiceError(c, err)
}

// respondOrderLookupError enriches 404s from direct lookups with the
// identifier the caller asked for.
func respondOrderLookupError(c *gin.Context, err error, identifier string) {
	if errors.Is(err, ordersapp.ErrNotFound) {
		problems.Respond(c, apierrors.NewNotFoundProblem("order", identifier))
		return
	}
	respondOrderServiceError(c, err)
}

func respondBadRequest(c *gin.Context, err error) {
	problems.BadRequest(c, err.Error())
}

func respondMissingActor(c *gin.Context) {
	problems.Respond(c, apierrors.ErrBadRequest.
		WithDetail("actor identity headers are required").
		WithExtension("requiredHeaders", []string{HeaderActorID, HeaderActorRole}))
}
