package ports

import (
	"context"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

// RegisterInput is the self-service sign-up request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	User   *domain.User
	Token  string
	Claims domain.Claims
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Logout(ctx context.Context) error
	CurrentIdentity(ctx context.Context) (*domain.User, error)
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
	IsEmailAvailable(ctx context.Context, email string) (bool, error)
}
