package ports

import (
	"context"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

// UserRepository is the credential store. Lookups that miss return
// domain.ErrUserNotFound; unique-key collisions return a
// *domain.UserAlreadyExistsError. Update writes only the changed fields and
// returns domain.ErrConcurrentUpdate when a precondition no longer holds.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, id string, changes domain.UserChanges) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}
