package orderserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/rentloop/orders-api/internal/domains/orders/adapters/http/mapper"
	orderstypes "github.com/rentloop/orders-api/internal/domains/orders/application/types"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
)

// EligibilityAPI answers review and report gating questions over HTTP.
type EligibilityAPI struct {
	service ports.Service
}

// NewEligibilityAPI creates an EligibilityAPI backed by the provided service.
func NewEligibilityAPI(service ports.Service) EligibilityAPI {
	return EligibilityAPI{service: service}
}

// Get /v1/orders/:orderId/review-eligibility
// Answer whether the order can carry a review, and in which state
func (api *EligibilityAPI) GetReviewEligibility(c *gin.Context) {
	result, err := api.service.ReviewEligibility(c.Request.Context(), orderstypes.OrderIdentifier{ID: c.Param("orderId")})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromReviewEligibility(result))
}

// Get /v1/orders/:orderId/report-eligibility
// Answer whether the counterparty can be reported
func (api *EligibilityAPI) GetReportEligibility(c *gin.Context) {
	result, err := api.service.ReportEligibility(c.Request.Context(), orderstypes.OrderIdentifier{ID: c.Param("orderId")})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromReportEligibility(result))
}
