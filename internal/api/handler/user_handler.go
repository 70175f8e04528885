package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/ports"
	"github.com/Chamindu18/task-management-system/internal/core/security"
)

// UserHandler serves self-service account routes. Every route requires an
// identity; each handler then checks ownership of the :id in the path.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type userResponse struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	EmailNotifications bool   `json:"email_notifications"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

type updateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		Role:               string(u.Role),
		EmailNotifications: u.EmailNotifications,
		CreatedAt:          u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

// Get handles GET /users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if err := authorize(c, security.Owner(id)); err != nil {
		return err
	}

	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Update handles PUT /users/:id.
//
// @Summary      Update username or email
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	id := c.Param("id")
	if err := authorize(c, security.Owner(id)); err != nil {
		return err
	}

	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Update(c.Request().Context(), id, domain.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// ChangePassword handles POST /users/:id/password. Tokens issued before the
// change stop working.
//
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User ID"
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /users/{id}/password [post]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id := c.Param("id")
	if err := authorize(c, security.Owner(id)); err != nil {
		return err
	}

	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.users.ChangePassword(c.Request().Context(), id, ports.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password changed successfully"})
}

// SetEmailNotifications handles PATCH /users/:id/settings/email-notifications?enabled=bool.
//
// @Summary      Toggle reminder emails
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "User ID"
// @Param        enabled  query     bool    true  "Enable reminder emails"
// @Success      200      {object}  userResponse
// @Failure      400      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Router       /users/{id}/settings/email-notifications [patch]
func (h *UserHandler) SetEmailNotifications(c echo.Context) error {
	id := c.Param("id")
	if err := authorize(c, security.Owner(id)); err != nil {
		return err
	}

	enabled, err := strconv.ParseBool(c.QueryParam("enabled"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "enabled must be true or false")
	}

	user, err := h.users.SetEmailNotifications(c.Request().Context(), id, enabled)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
