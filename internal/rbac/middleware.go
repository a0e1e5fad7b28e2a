package rbac

import (
	"context"
	"net/http"
	"strings"

	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/shared"
)

// TokenValidator resolves bearer tokens into identities.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (shared.Identity, error)
	OptionalValidate(ctx context.Context, token string) (shared.Identity, bool)
}

// Middleware wires authentication and policy checks into chi routes.
type Middleware struct {
	Tokens TokenValidator
	Errors httpx.ErrorResponder
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate rejects requests without a valid bearer token with 401.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			m.Errors.Respond(w, r, shared.ErrUnauthenticated)
			return
		}
		id, err := m.Tokens.ValidateToken(r.Context(), token)
		if err != nil {
			m.Errors.Respond(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), id)))
	})
}

// Optional attaches the identity when a valid token is present and never rejects.
func (m Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := BearerToken(r); ok {
			if id, ok := m.Tokens.OptionalValidate(r.Context(), token); ok {
				r = r.WithContext(shared.ContextWithIdentity(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Require enforces the role set of p. Policies that admit owners only require an
// identity here; ownership is decided after the target record is loaded.
func (m Middleware) Require(p Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := shared.IdentityFromContext(r.Context())
			if !ok {
				m.Errors.Respond(w, r, shared.ErrUnauthenticated)
				return
			}
			if !p.AllowOwner {
				if err := Authorize(id, p); err != nil {
					m.Errors.Respond(w, r, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
