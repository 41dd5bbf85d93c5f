package handler

import (
	"net/http"

	"shopdesk-be/internal/apperr"
	"shopdesk-be/internal/inventory"
	"shopdesk-be/internal/utils"
)

type ProductHandler struct {
	ledger inventory.Ledger
}

func NewProductHandler(ledger inventory.Ledger) *ProductHandler {
	return &ProductHandler{ledger: ledger}
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

// Restock handles POST /products/{id}/restock.
func (h *ProductHandler) Restock(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	productID, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req restockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Quantity <= 0 {
		writeError(w, r, apperr.Invalid("quantity", "must be greater than zero"))
		return
	}

	stock, err := h.ledger.IncreaseStock(r.Context(), tenantID, productID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"status":         "success",
		"product_id":     productID,
		"stock_quantity": stock,
	})
}
