package context

import (
	"context"

	"github.com/mkrupp/homecase-anime/internal/domain"
)

const contextKeyPrincipal = contextKey("principal")

// PrincipalFromContext returns the authenticated caller of the current request.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	principal, ok := ctx.Value(contextKeyPrincipal).(domain.Principal)

	return principal, ok
}

// WithPrincipal attaches the authenticated caller to ctx.
func WithPrincipal(ctx context.Context, principal domain.Principal) context.Context {
	return context.WithValue(ctx, contextKeyPrincipal, principal)
}

// UsernameFromContext returns the username of the authenticated caller.
func UsernameFromContext(ctx context.Context) (string, bool) {
	principal, ok := PrincipalFromContext(ctx)

	return principal.Username, ok
}
