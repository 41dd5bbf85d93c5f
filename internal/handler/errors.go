package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"shopdesk-be/internal/apperr"
	"shopdesk-be/internal/inventory"
	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/order"
	"shopdesk-be/internal/payment"
	"shopdesk-be/internal/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		validation   *apperr.ValidationError
		notFound     *apperr.NotFoundError
		insufficient *inventory.InsufficientStockError
		declined     *payment.DeclinedError
		illegal      *order.IllegalStateTransitionError
	)

	switch {
	case errors.As(err, &validation),
		errors.As(err, &insufficient),
		errors.As(err, &declined):
		return http.StatusUnprocessableEntity
	case errors.As(err, &illegal):
		return http.StatusConflict
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// messageFor hides unexpected errors from clients.
func messageFor(err error, code int) string {
	if code != http.StatusInternalServerError {
		return err.Error()
	}
	var unavailable *payment.UnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.Error()
	}
	return "internal server error"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorCode(w, r, err, statusFor(err))
}

func writeErrorCode(w http.ResponseWriter, r *http.Request, err error, code int) {
	if code >= http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("layer", "handler"),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	utils.WriteJSONError(w, messageFor(err, code), code)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("body", "request body is empty")
		}
		return apperr.Invalid("body", "malformed JSON: %v", err)
	}
	return nil
}

func tenantFrom(w http.ResponseWriter, r *http.Request) (int64, bool) {
	tenantID, ok := utils.GetTenantIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, "missing tenant", http.StatusUnauthorized)
		return 0, false
	}
	return tenantID, true
}

func pathInt64(r *http.Request, name string) (int64, error) {
	id, err := utils.ToInt64(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, apperr.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

func invalidID(raw string) error {
	return apperr.Invalid("id", "%q is not a valid order id", raw)
}
