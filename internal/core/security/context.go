package security

import (
	"context"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

type principalKey struct{}

// WithPrincipal returns a child context carrying p. The value is a copy, so
// nothing downstream can alter what the resolver attached.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached to ctx, if any.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}
