package middleware

import (
	"errors"
	"net/http"

	"shopdesk-be/internal/auth"
	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/utils"

	"go.uber.org/zap"
)

// TenantMiddleware requires a bearer HS256 token carrying tenant_id and sub
// claims, and threads both through the request context.
func TenantMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.ParseTenantToken(secret, auth.ExtractAccessToken(r))
			switch {
			case errors.Is(err, auth.ErrMissingToken):
				utils.WriteJSONError(w, "missing bearer token", http.StatusUnauthorized)
				return
			case errors.Is(err, auth.ErrMissingTenant):
				utils.WriteJSONError(w, "invalid tenant", http.StatusUnauthorized)
				return
			case err != nil:
				logger.FromCtx(r.Context()).Info("rejected token", zap.Error(err))
				utils.WriteJSONError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := utils.SetTenantContext(r.Context(), claims.TenantID, claims.Actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
