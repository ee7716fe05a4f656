package orderserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/rentloop/orders-api/internal/domains/orders/adapters/http/mapper"
	orderstypes "github.com/rentloop/orders-api/internal/domains/orders/application/types"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
)

// Actor identity headers. Authentication happens upstream; the gateway
// forwards the resolved identity on every request.
const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"
)

// OrdersAPI wires HTTP transport with the orders bounded context service.
type OrdersAPI struct {
	service ports.Service
}

// NewOrdersAPI creates an OrdersAPI backed by the provided service.
func NewOrdersAPI(service ports.Service) OrdersAPI {
	return OrdersAPI{service: service}
}

// Post /v1/orders
// Place a new rental order
func (api *OrdersAPI) PlaceOrder(c *gin.Context) {
	var payload orderhttpmapper.PlaceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	created, err := api.service.PlaceOrder(c.Request.Context(), orderhttpmapper.ToPlaceOrderInput(payload))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromProjection(created))
}

// Post /v1/orders/:orderId/transitions
// Apply one lifecycle transition
func (api *OrdersAPI) ApplyTransition(c *gin.Context) {
	actorID, actorRole, ok := actorIdentity(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.TransitionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := orderstypes.ApplyTransitionInput{
		OrderID:         c.Param("orderId"),
		ExpectedVersion: payload.ExpectedVersion,
		Transition:      payload.Transition,
		ActorID:         actorID,
		ActorRole:       actorRole,
	}
	updated, err := api.service.ApplyTransition(c.Request.Context(), input)
	if err != nil {
		respondTransitionError(c, err, payload.ExpectedVersion)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromProjection(updated))
}

// Put /v1/orders/:orderId/schedules/:kind
// Upsert one appointment slot
func (api *OrdersAPI) SetSchedule(c *gin.Context) {
	var payload orderhttpmapper.ScheduleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := orderstypes.SetScheduleInput{
		OrderID:  c.Param("orderId"),
		Kind:     c.Param("kind"),
		Date:     payload.Date,
		Location: payload.Location,
		Notes:    payload.Notes,
	}
	updated, err := api.service.SetSchedule(c.Request.Context(), input)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromProjection(updated))
}

// Get /v1/orders/:orderId
// Load one order
func (api *OrdersAPI) GetOrder(c *gin.Context) {
	orderID := c.Param("orderId")
	order, err := api.service.GetOrder(c.Request.Context(), orderstypes.OrderIdentifier{ID: orderID})
	if err != nil {
		respondOrderLookupError(c, err, orderID)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromProjection(order))
}

// Get /v1/orders/number/:orderNumber
// Load one order by its human-facing number
func (api *OrdersAPI) GetOrderByNumber(c *gin.Context) {
	number := c.Param("orderNumber")
	order, err := api.service.GetOrderByNumber(c.Request.Context(), number)
	if err != nil {
		respondOrderLookupError(c, err, number)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromProjection(order))
}

// Get /v1/orders
// List the actor's orders, newest first
func (api *OrdersAPI) ListOrders(c *gin.Context) {
	actorID, actorRole, ok := actorIdentity(c)
	if !ok {
		return
	}
	input := orderstypes.ListOrdersInput{
		ActorID:  actorID,
		Role:     actorRole,
		Statuses: c.QueryArray("status"),
		Cursor:   c.Query("cursor"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		input.Limit = limit
	}
	page, err := api.service.ListOrders(c.Request.Context(), input)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromPage(page))
}

func actorIdentity(c *gin.Context) (string, string, bool) {
	actorID := strings.TrimSpace(c.GetHeader(HeaderActorID))
	actorRole := strings.TrimSpace(c.GetHeader(HeaderActorRole))
	if actorID == "" || actorRole == "" {
		respondMissingActor(c)
		return "", "", false
	}
	return actorID, actorRole, true
}
