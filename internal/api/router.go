package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/Chamindu18/task-management-system/internal/api/handler"
	"github.com/Chamindu18/task-management-system/internal/api/middleware"
	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/ports"
	"github.com/Chamindu18/task-management-system/internal/core/security"

	_ "github.com/Chamindu18/task-management-system/docs"
)

// Deps are the collaborators the HTTP layer needs. Revoker and ReadyChecks
// may be nil.
type Deps struct {
	Auth      ports.AuthService
	Users     ports.UserService
	Tasks     ports.TaskService
	Reminders ports.ReminderService
	Codec     ports.TokenCodec
	Revoker   ports.TokenRevoker

	// RevocationFailClosed drops tokens whose revocation status cannot be read.
	RevocationFailClosed bool
	ReadyChecks          map[string]handler.Check
	// MetricsRegisterer receives the HTTP request metrics and MetricsGatherer
	// backs /metrics. Both default to the global Prometheus registry.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer
	Log               zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "taskmanager",
		Subsystem:  "http",
		Registerer: d.MetricsRegisterer,
	}))
	e.Use(middleware.ResolveIdentity(d.Codec, d.Revoker, d.RevocationFailClosed, d.Log))
	e.Use(middleware.RequestLogger(d.Log))

	authenticated := middleware.Authorize(security.Authenticated())
	member := middleware.RBAC(domain.RoleUser, domain.RoleAdmin)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/check-username/:username", authHandler.CheckUsername)
	auth.GET("/check-email/:email", authHandler.CheckEmail)
	auth.GET("/me", authHandler.Me, authenticated)
	auth.POST("/logout", authHandler.Logout, authenticated)

	// --- Users (owner or admin, checked per route) ---
	userHandler := handler.NewUserHandler(d.Users)
	users := e.Group("/users", authenticated)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.POST("/:id/password", userHandler.ChangePassword)
	users.PATCH("/:id/settings/email-notifications", userHandler.SetEmailNotifications)

	// --- Tasks ---
	taskHandler := handler.NewTaskHandler(d.Tasks)
	tasks := e.Group("/tasks", member)
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	// --- Admin ---
	adminHandler := handler.NewAdminHandler(d.Users, d.Reminders)
	admin := e.Group("/admin", adminOnly)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", adminHandler.CreateUser)
	admin.PUT("/users/:id/role", adminHandler.ChangeRole)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.POST("/reminders/run", adminHandler.RunReminders)

	// --- Health probes and ops (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readyHandler := handler.NewReadinessHandler(d.ReadyChecks)

	e.GET("/health", healthHandler.Liveness)       // liveness  – is the process alive?
	e.GET("/health/ready", readyHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: d.MetricsGatherer,
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
