package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hongminglow/airfreight/internal/auth"
	"github.com/hongminglow/airfreight/internal/http/respond"
)

type identityKey struct{}

// Verifier checks a bearer token.
type Verifier interface {
	Verify(raw string) (auth.Claims, error)
}

// Authenticate attaches the identity of a valid bearer token to the request context.
// Requests without an Authorization header pass through anonymously; a bad token is
// rejected with 401.
func Authenticate(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				respond.Error(w, http.StatusUnauthorized, "authorization header must be a bearer token")
				return
			}
			claims, err := v.Verify(strings.TrimSpace(raw))
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims)))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := Identity(r.Context()); !ok {
			respond.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity returns ctx carrying claims.
func WithIdentity(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, identityKey{}, claims)
}

// Identity returns the caller attached by Authenticate.
func Identity(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(identityKey{}).(auth.Claims)
	return claims, ok
}
