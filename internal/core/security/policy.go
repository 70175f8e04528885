package security

import (
	"context"
	"fmt"
	"strings"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

// Outcome classifies an authorization decision.
type Outcome int

const (
	Granted Outcome = iota
	DeniedUnauthenticated
	DeniedForbidden
)

func (o Outcome) String() string {
	switch o {
	case Granted:
		return "granted"
	case DeniedUnauthenticated:
		return "unauthenticated"
	case DeniedForbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Decision is the result of evaluating a Policy.
type Decision struct {
	Granted bool
	Outcome Outcome
	Reason  string
}

// Err converts a denied decision into domain.ErrUnauthenticated or
// domain.ErrForbidden. A granted decision returns nil.
func (d Decision) Err() error {
	switch d.Outcome {
	case Granted:
		return nil
	case DeniedUnauthenticated:
		return domain.ErrUnauthenticated
	default:
		return domain.ErrForbidden
	}
}

// Policy decides whether the requester (nil when unauthenticated) may
// proceed. Implementations must be pure.
type Policy interface {
	Decide(p *domain.Principal) Decision
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(p *domain.Principal) Decision

func (f PolicyFunc) Decide(p *domain.Principal) Decision { return f(p) }

func grant(reason string) Decision {
	return Decision{Granted: true, Outcome: Granted, Reason: reason}
}

func deny(p *domain.Principal, reason string) Decision {
	if p == nil {
		return Decision{Outcome: DeniedUnauthenticated, Reason: "no authenticated identity"}
	}
	return Decision{Outcome: DeniedForbidden, Reason: reason}
}

// Authenticated grants any verified identity.
func Authenticated() Policy {
	return PolicyFunc(func(p *domain.Principal) Decision {
		if p == nil {
			return deny(nil, "")
		}
		return grant("authenticated")
	})
}

// RequireRole grants when the identity holds one of roles.
func RequireRole(roles ...domain.Role) Policy {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	want := strings.Join(names, "|")

	return PolicyFunc(func(p *domain.Principal) Decision {
		if p == nil {
			return deny(nil, "")
		}
		for _, r := range roles {
			if p.Role == r {
				return grant("role " + string(r))
			}
		}
		return deny(p, fmt.Sprintf("role %s not in %s", p.Role, want))
	})
}

// Owner grants when the identity owns the resource. ADMIN always passes.
func Owner(ownerID string) Policy {
	return PolicyFunc(func(p *domain.Principal) Decision {
		if p == nil {
			return deny(nil, "")
		}
		if p.IsAdmin() {
			return grant("admin override")
		}
		if ownerID != "" && p.UserID == ownerID {
			return grant("owner")
		}
		return deny(p, "not the resource owner")
	})
}

// AnyOf grants when at least one policy grants. With no policies it denies.
func AnyOf(policies ...Policy) Policy {
	return PolicyFunc(func(p *domain.Principal) Decision {
		reasons := make([]string, 0, len(policies))
		for _, pol := range policies {
			d := pol.Decide(p)
			if d.Granted {
				return d
			}
			reasons = append(reasons, d.Reason)
		}
		return deny(p, strings.Join(reasons, "; "))
	})
}

// AllOf grants when every policy grants and reports the first denial.
// With no policies it denies.
func AllOf(policies ...Policy) Policy {
	return PolicyFunc(func(p *domain.Principal) Decision {
		if len(policies) == 0 {
			return deny(p, "empty policy")
		}
		var last Decision
		for _, pol := range policies {
			last = pol.Decide(p)
			if !last.Granted {
				return last
			}
		}
		return last
	})
}

// Evaluate applies policy to the principal carried by ctx.
func Evaluate(ctx context.Context, policy Policy) Decision {
	if p, ok := PrincipalFrom(ctx); ok {
		return policy.Decide(&p)
	}
	return policy.Decide(nil)
}

// Authorize is Evaluate reduced to an error.
func Authorize(ctx context.Context, policy Policy) error {
	return Evaluate(ctx, policy).Err()
}
