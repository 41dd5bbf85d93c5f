package handler

import (
	"net/http"

	"shopdesk-be/internal/apperr"
	"shopdesk-be/internal/checkout"
	"shopdesk-be/internal/utils"
)

type CheckoutHandler struct {
	svc checkout.Service
}

func NewCheckoutHandler(svc checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// Checkout handles POST /checkout.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	var req checkout.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.svc.Checkout(r.Context(), tenantID, req)
	if err != nil {
		code := statusFor(err)
		// An unknown product is a problem with the cart, not a missing resource.
		if apperr.IsNotFound(err) {
			code = http.StatusUnprocessableEntity
		}
		writeErrorCode(w, r, err, code)
		return
	}

	utils.WriteJSON(w, http.StatusOK, checkout.ToResponse(res))
}
