package handler

import (
	"net/http"

	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/metrics"
	"shopdesk-be/internal/middleware"
	"shopdesk-be/internal/utils"
)

type Router struct {
	Checkout  *CheckoutHandler
	Orders    *OrderHandler
	Products  *ProductHandler
	Metrics   *metrics.Metrics
	Limiter   *middleware.RateLimiter
	JWTSecret []byte
	// Health reports storage readiness; nil means always healthy.
	Health func(r *http.Request) error
}

// Handler wires routes and the middleware chain. /health and /metrics are
// served without authentication.
func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	route := func(pattern, name string, h http.HandlerFunc) {
		api.Handle(pattern, middleware.Metrics(rt.Metrics, name, h))
	}

	route("POST /checkout", "checkout", rt.Checkout.Checkout)
	route("PATCH /orders/{id}/status", "update_order_status", rt.Orders.UpdateStatus)
	route("POST /orders/status", "bulk_update_order_status", rt.Orders.BulkUpdateStatus)
	route("GET /orders/{id}", "get_order", rt.Orders.Get)
	route("GET /orders", "list_orders", rt.Orders.List)
	route("GET /orders/{id}/history", "order_history", rt.Orders.History)
	route("POST /products/{id}/restock", "restock_product", rt.Products.Restock)

	var protected http.Handler = api
	if rt.Limiter != nil {
		protected = rt.Limiter.Middleware(protected)
	}
	protected = middleware.TenantMiddleware(rt.JWTSecret)(protected)

	root := http.NewServeMux()
	root.HandleFunc("GET /health", rt.health)
	root.Handle("GET /metrics", rt.Metrics.Handler())
	root.Handle("/", protected)

	var h http.Handler = root
	h = middleware.Recover(h)
	h = logger.LoggingMiddleware(h)
	h = logger.RequestIDMiddleware(h)
	return h
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	if rt.Health != nil {
		if err := rt.Health(r); err != nil {
			utils.WriteJSONError(w, "unhealthy: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
