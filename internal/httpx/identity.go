package httpx

import (
	"context"
	"net/http"
)

// Identity is trusted from the edge: an upstream auth proxy sets the
// X-User-Id and X-User-Role headers after verifying the session.
type Identity struct {
	UserID string
	Role   string
}

type ctxKey int

const identityKey ctxKey = 0

func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}

// RequireUser rejects requests without an X-User-Id header and parks the
// identity in the request context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Identity{
			UserID: r.Header.Get("X-User-Id"),
			Role:   r.Header.Get("X-User-Role"),
		}
		if id.UserID == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "unauthorized", "message": "missing user identity",
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	})
}

// RequireAdmin layers on RequireUser for the admin-only routes.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFrom(r.Context()).Role != "admin" {
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error": "forbidden", "message": "admin access required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
