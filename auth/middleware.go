package auth

import (
	"encoding/json"
	"net/http"
)

// Middleware authenticates HTTP requests against a chain of
// authenticators. The first authenticator whose Supports returns true
// decides the outcome; later entries are not consulted.
type Middleware struct {
	authenticators []Authenticator
}

// NewMiddleware creates a Middleware over the given authenticators.
func NewMiddleware(authenticators ...Authenticator) *Middleware {
	return &Middleware{authenticators: authenticators}
}

// Require wraps a handler, rejecting unauthenticated requests with 401.
// On success the identity is attached to the request context.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := m.authenticate(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireRole wraps a handler, additionally rejecting identities without
// the given role with 403.
func (m *Middleware) RequireRole(role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := m.authenticate(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !identity.HasRole(role) {
			writeAuthError(w, http.StatusForbidden, ErrForbidden.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (m *Middleware) authenticate(r *http.Request) (*Identity, bool) {
	req := &AuthRequest{
		Headers:  r.Header,
		Resource: r.URL.Path,
	}

	ctx := r.Context()
	for _, a := range m.authenticators {
		if !a.Supports(ctx, req) {
			continue
		}
		result, err := a.Authenticate(ctx, req)
		if err != nil || result == nil || !result.Authenticated {
			return nil, false
		}
		if result.Identity.IsExpired() {
			return nil, false
		}
		return result.Identity, true
	}
	return nil, false
}

// RequireFunc adapts Require for http.HandlerFunc values.
func (m *Middleware) RequireFunc(next http.HandlerFunc) http.Handler {
	return m.Require(next)
}

// RequireRoleFunc adapts RequireRole for http.HandlerFunc values.
func (m *Middleware) RequireRoleFunc(role string, next http.HandlerFunc) http.Handler {
	return m.RequireRole(role, next)
}

func writeAuthError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
