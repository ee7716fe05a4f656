package orderserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the API handlers mounted on the router.
type ApiHandleFunctions struct {
	OrdersAPI      OrdersAPI
	EligibilityAPI EligibilityAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = defaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

func defaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			Name:        "PlaceOrder",
			Method:      http.MethodPost,
			Pattern:     "/v1/orders",
			HandlerFunc: handleFunctions.OrdersAPI.PlaceOrder,
		},
		{
			Name:        "ListOrders",
			Method:      http.MethodGet,
			Pattern:     "/v1/orders",
			HandlerFunc: handleFunctions.OrdersAPI.ListOrders,
		},
		{
			Name:        "GetOrderByNumber",
			Method:      http.MethodGet,
			Pattern:     "/v1/orders/number/:orderNumber",
			HandlerFunc: handleFunctions.OrdersAPI.GetOrderByNumber,
		},
		{
			Name:        "GetOrder",
			Method:      http.MethodGet,
			Pattern:     "/v1/orders/:orderId",
			HandlerFunc: handleFunctions.OrdersAPI.GetOrder,
		},
		{
			Name:        "ApplyTransition",
			Method:      http.MethodPost,
			Pattern:     "/v1/orders/:orderId/transitions",
			HandlerFunc: handleFunctions.OrdersAPI.ApplyTransition,
		},
		{
			Name:        "SetSchedule",
			Method:      http.MethodPut,
			Pattern:     "/v1/orders/:orderId/schedules/:kind",
			HandlerFunc: handleFunctions.OrdersAPI.SetSchedule,
		},
		{
			Name:        "GetReviewEligibility",
			Method:      http.MethodGet,
			Pattern:     "/v1/orders/:orderId/review-eligibility",
			HandlerFunc: handleFunctions.EligibilityAPI.GetReviewEligibility,
		},
		{
			Name:        "GetReportEligibility",
			Method:      http.MethodGet,
			Pattern:     "/v1/orders/:orderId/report-eligibility",
			HandlerFunc: handleFunctions.EligibilityAPI.GetReportEligibility,
		},
	}
}
