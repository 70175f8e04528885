package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/ports"
	"github.com/Chamindu18/task-management-system/internal/pkg/metrics"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// authResponse mirrors the identity view returned by every /auth route.
type authResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Message  string `json:"message"`
	Token    string `json:"token,omitempty"`
}

type availabilityResponse struct {
	Message   string `json:"message"`
	Available bool   `json:"available"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func newAuthResponse(u *domain.User, msg, token string) authResponse {
	return authResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
		Message:  msg,
		Token:    token,
	}
}

// Register creates a new USER account and logs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", failureLabel(err)).Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	return c.JSON(http.StatusOK, newAuthResponse(res.User, "Registration successful", res.Token))
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", failureLabel(err)).Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return c.JSON(http.StatusOK, newAuthResponse(res.User, "Login successful", res.Token))
}

// Logout revokes the presented token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context()); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("logout", failureLabel(err)).Inc()
		return err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("logout", "success").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
}

// Me returns the account behind the bearer token.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  authResponse
// @Failure      401  {object}  messageResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.authService.CurrentIdentity(c.Request().Context())
	if err != nil {
		// The account behind a valid token is gone; treat it like no token.
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUnauthenticated
		}
		return err
	}
	return c.JSON(http.StatusOK, newAuthResponse(user, "User information retrieved", ""))
}

// CheckUsername reports whether a username is still free.
//
// @Summary      Check username availability
// @Tags         auth
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  availabilityResponse
// @Router       /auth/check-username/{username} [get]
func (h *AuthHandler) CheckUsername(c echo.Context) error {
	ok, err := h.authService.IsUsernameAvailable(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	msg := "Username already taken"
	if ok {
		msg = "Username available"
	}
	return c.JSON(http.StatusOK, availabilityResponse{Message: msg, Available: ok})
}

// CheckEmail reports whether an email address is still free.
//
// @Summary      Check email availability
// @Tags         auth
// @Produce      json
// @Param        email  path      string  true  "Email"
// @Success      200    {object}  availabilityResponse
// @Router       /auth/check-email/{email} [get]
func (h *AuthHandler) CheckEmail(c echo.Context) error {
	ok, err := h.authService.IsEmailAvailable(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	msg := "Email already registered"
	if ok {
		msg = "Email available"
	}
	return c.JSON(http.StatusOK, availabilityResponse{Message: msg, Available: ok})
}

func failureLabel(err error) string {
	var he *echo.HTTPError
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrUserExists):
		return "conflict"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrInvalidOperation), errors.As(err, &he):
		return "invalid_request"
	default:
		return "error"
	}
}
