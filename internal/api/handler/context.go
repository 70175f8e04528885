package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/security"
)

// principal returns the identity ResolveIdentity attached to the request.
// Routes behind an authorization middleware can rely on it being present;
// the error is there for handlers mounted without one.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := security.PrincipalFrom(c.Request().Context())
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

// authorize evaluates a resource-level policy for the current request.
func authorize(c echo.Context, policy security.Policy) error {
	return security.Authorize(c.Request().Context(), policy)
}
