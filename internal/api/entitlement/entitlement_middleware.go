package entitlement

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/assinadoc/assinadoc-api/internal/api"
	"github.com/assinadoc/assinadoc-api/internal/api/auth"
)

// RequireEntitlement gates protected routes on the trial/subscription
// decision. Runs AFTER the Authenticate middleware. The decision is computed
// fresh on every request; nothing is cached between requests so a plan
// purchase or trial expiry takes effect immediately.
func RequireEntitlement(logger *slog.Logger, service EntitlementService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userIDStr, ok := auth.GetUserIDFromContext(ctx)
			if !ok {
				logger.ErrorContext(ctx, "User ID missing from context in entitlement check")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}
			userID, err := uuid.Parse(userIDStr)
			if err != nil {
				logger.ErrorContext(ctx, "Malformed user ID in context", slog.String("userID", userIDStr), slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}

			decision := service.Evaluate(ctx, userID)
			if !decision.Allowed() {
				logger.WarnContext(ctx, "Access denied by entitlement check",
					slog.String("userID", userIDStr),
					slog.String("decision", string(decision)))
				api.ErrorResponse(w, r, http.StatusPaymentRequired, "An active subscription is required to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
