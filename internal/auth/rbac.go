package auth

import (
	"log/slog"
	"net/http"

	"github.com/fintech-enterprise/expense-tracker/internal"
)

// RequireRole is the explicit authorization check: it returns a Forbidden
// error unless the caller holds one of the allowed roles.
func RequireRole(caller *User, allowedRoles ...string) error {
	if caller == nil {
		return internal.NewUnauthorizedError("missing caller identity", internal.ErrCodeMissingAuthorization)
	}
	if !caller.HasAnyRole(allowedRoles...) {
		return internal.ErrInsufficientRole
	}
	return nil
}

// RBACAuthorization wraps RequireRole as chi-compatible route middleware.
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

func (ra *RBACAuthorization) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := UserFromContext(r.Context())
			if !ok || caller == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if err := RequireRole(caller, allowedRoles...); err != nil {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
					"user_id", caller.ID,
					"role", caller.Role,
					"required_roles", allowedRoles)
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireReviewer() func(http.Handler) http.Handler {
	return ra.RequireRoles(RoleAdmin, RoleManager)
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.RequireRoles(RoleAdmin)
}
