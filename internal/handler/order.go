package handler

import (
	"net/http"
	"strconv"

	"shopdesk-be/internal/apperr"
	"shopdesk-be/internal/order"
	"shopdesk-be/internal/utils"

	"github.com/google/uuid"
)

type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type bulkStatusRequest struct {
	OrderIDs []string `json:"order_ids"`
	Status   string   `json:"status"`
}

type bulkItemResponse struct {
	OrderID string          `json:"order_id"`
	Status  string          `json:"status"`
	Order   *order.Response `json:"order,omitempty"`
	Message string          `json:"message,omitempty"`
}

func orderID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidID(raw)
	}
	return id, nil
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	id, err := orderID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Status == "" {
		writeError(w, r, apperr.Invalid("status", "is required"))
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), tenantID, id, req.Status, utils.GetActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, order.ToResponse(o))
}

// BulkUpdateStatus handles POST /orders/status. Each order succeeds or fails
// on its own; the response is 200 whenever the request itself is valid.
func (h *OrderHandler) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	var req bulkStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.OrderIDs) == 0 {
		writeError(w, r, apperr.Invalid("order_ids", "must not be empty"))
		return
	}
	if req.Status == "" {
		writeError(w, r, apperr.Invalid("status", "is required"))
		return
	}

	ids := make([]uuid.UUID, 0, len(req.OrderIDs))
	for _, raw := range req.OrderIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, invalidID(raw))
			return
		}
		ids = append(ids, id)
	}

	results := h.svc.BulkUpdateStatus(r.Context(), tenantID, ids, req.Status, utils.GetActorFromContext(r.Context()))

	out := make([]bulkItemResponse, 0, len(results))
	for _, res := range results {
		item := bulkItemResponse{OrderID: res.OrderID.String(), Status: "success"}
		if res.Err != nil {
			item.Status = "error"
			item.Message = messageFor(res.Err, statusFor(res.Err))
		} else {
			item.Order = order.ToResponse(res.Order)
		}
		out = append(out, item)
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{"status": "success", "results": out})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	id, err := orderID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.svc.GetOrder(r.Context(), tenantID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, order.ToResponse(o))
}

// List handles GET /orders?status=&limit=&page=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	orders, err := h.svc.ListOrders(r.Context(), tenantID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filter = filter.Normalize()
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"orders": order.ToResponses(orders),
		"limit":  filter.Limit,
		"page":   filter.Page,
	})
}

func parseListFilter(r *http.Request) (order.ListFilter, error) {
	q := r.URL.Query()
	var filter order.ListFilter

	if raw := q.Get("status"); raw != "" {
		s, ok := order.ParseStatus(raw)
		if !ok {
			return filter, apperr.Invalid("status", "unknown status %q", raw)
		}
		filter.Status = &s
	}

	for name, dst := range map[string]*int{"limit": &filter.Limit, "page": &filter.Page} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, apperr.Invalid(name, "must be a non-negative integer")
		}
		*dst = n
	}

	return filter, nil
}

// History handles GET /orders/{id}/history.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	id, err := orderID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	history, err := h.svc.StatusHistory(r.Context(), tenantID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"history": order.ToStatusChangeResponses(history),
	})
}
