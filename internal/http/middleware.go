package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/just-smsm/storefront/internal/identity"
)

type contextKey string

const emailKey contextKey = "principal_email"

// PrincipalMiddleware resolves the bearer credential into a verified email
// exactly once at the boundary. Handlers and everything below them only ever
// see the resolved email, never the raw credential.
func PrincipalMiddleware(resolver identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := bearerToken(r.Header.Get("Authorization"))
			if credential == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer credential")
				return
			}

			email, err := resolver.ResolveEmail(r.Context(), credential)
			if err != nil {
				handleDomainError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithEmail(r.Context(), email)))
		})
	}
}

// WithEmail puts a resolved principal email into the context. Exported for
// handler tests.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}

func emailFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(emailKey).(string); ok {
		return email
	}
	return ""
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
