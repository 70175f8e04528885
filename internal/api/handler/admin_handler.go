package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/ports"
	"github.com/Chamindu18/task-management-system/internal/pkg/metrics"
)

// AdminHandler serves /admin routes. The router guards the whole group with
// RBAC(ADMIN), so handlers here do no authorization of their own.
type AdminHandler struct {
	users     ports.UserService
	reminders ports.ReminderService
}

func NewAdminHandler(users ports.UserService, reminders ports.ReminderService) *AdminHandler {
	return &AdminHandler{users: users, reminders: reminders}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role" validate:"required"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type reminderRunResponse struct {
	Queued int `json:"queued"`
}

// ListUsers handles GET /admin/users.
//
// @Summary      List all users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// CreateUser handles POST /admin/users.
//
// @Summary      Create a user with an explicit role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New account"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /admin/users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	user, err := h.users.Create(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// ChangeRole handles PUT /admin/users/:id/role. The user's outstanding
// tokens are revoked.
//
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      changeRoleRequest  true  "New role"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /admin/users/{id}/role [put]
func (h *AdminHandler) ChangeRole(c echo.Context) error {
	var req changeRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	user, err := h.users.ChangeRole(c.Request().Context(), c.Param("id"), role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// DeleteUser handles DELETE /admin/users/:id.
//
// @Summary      Delete a user and their tasks
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.users.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RunReminders handles POST /admin/reminders/run.
//
// @Summary      Queue reminders for pending tasks now
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  reminderRunResponse
// @Router       /admin/reminders/run [post]
func (h *AdminHandler) RunReminders(c echo.Context) error {
	metrics.ReminderRunsTotal.WithLabelValues("manual").Inc()
	n, err := h.reminders.DispatchDue(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, reminderRunResponse{Queued: n})
}
