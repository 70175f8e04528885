package ports

import (
	"context"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

// ChangePasswordInput is the verified change-password request.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// UserService manages accounts after registration. Callers are expected to
// have authorized the operation already.
type UserService interface {
	Create(ctx context.Context, in RegisterInput, role domain.Role) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, id string, in ChangePasswordInput) error
	SetEmailNotifications(ctx context.Context, id string, enabled bool) (*domain.User, error)
	ChangeRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	// EnsureAdmin creates an ADMIN account unless the username is taken.
	// The bool reports whether a new account was created.
	EnsureAdmin(ctx context.Context, username, email, password string) (*domain.User, bool, error)
}
