package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/security"
	"github.com/Chamindu18/task-management-system/internal/pkg/metrics"
)

// Authorize evaluates policy against the principal attached by
// ResolveIdentity. Denials are returned as domain.ErrUnauthenticated or
// domain.ErrForbidden for the HTTP error handler to render.
func Authorize(policy security.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := security.Evaluate(c.Request().Context(), policy)
			metrics.AuthorizationDecisionsTotal.WithLabelValues(d.Outcome.String()).Inc()
			if !d.Granted {
				return d.Err()
			}
			return next(c)
		}
	}
}

// RBAC enforces role-based access control.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return Authorize(security.RequireRole(allowedRoles...))
}
