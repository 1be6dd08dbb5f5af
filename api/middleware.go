package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/warp/attendance-engine/identity"
)

// =============================================================================
// AUTHENTICATION MIDDLEWARE
// =============================================================================

type contextKey int

const identityKey contextKey = iota

// WithIdentity stores a resolved identity on the context.
func WithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the identity set by Authenticate.
func IdentityFrom(ctx context.Context) (identity.Identity, bool) {
	id, ok := ctx.Value(identityKey).(identity.Identity)
	return id, ok
}

// Authenticate requires "Authorization: Bearer <token>" and stores the
// resolved identity on the request context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "Missing or malformed bearer token", "unauthorized", nil)
			return
		}

		id, err := h.Identity.Authenticate(strings.TrimSpace(token))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", "unauthorized", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireAdmin rejects callers that are not admins. Must run after
// Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok || !id.IsAdmin() {
			writeError(w, http.StatusForbidden, "Admin access required", "admin_required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// employeeParam returns the {id} URL parameter if the caller may act on that
// employee. Otherwise it writes 403 and returns false.
func employeeParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	employeeID := chi.URLParam(r, "id")
	id, ok := IdentityFrom(r.Context())
	if !ok || !id.CanAccessEmployee(employeeID) {
		writeError(w, http.StatusForbidden, "You can only access your own records", "access_denied", nil)
		return "", false
	}
	return employeeID, true
}
