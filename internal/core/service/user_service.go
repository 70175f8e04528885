package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/ports"
)

type userService struct {
	users   ports.UserRepository
	tasks   ports.TaskRepository
	hasher  ports.PasswordHasher
	revoker ports.TokenRevoker
	audit   ports.AuditPublisher
	log     zerolog.Logger
	now     func() time.Time
}

// NewUserService returns a UserService implementation. revoker and audit may be nil.
func NewUserService(
	users ports.UserRepository,
	tasks ports.TaskRepository,
	hasher ports.PasswordHasher,
	revoker ports.TokenRevoker,
	audit ports.AuditPublisher,
	log zerolog.Logger,
) ports.UserService {
	return &userService{
		users:   users,
		tasks:   tasks,
		hasher:  hasher,
		revoker: revoker,
		audit:   audit,
		log:     log,
		now:     time.Now,
	}
}

func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *userService) Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := domain.UserChanges{UpdatedAt: s.now().UTC()}
	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if name == "" {
			return nil, fmt.Errorf("%w: username cannot be empty", domain.ErrInvalidOperation)
		}
		if name != user.Username {
			if err := s.checkFree(ctx, "username", name, s.users.ExistsByUsername); err != nil {
				return nil, err
			}
			changes.Username = &name
		}
	}
	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", domain.ErrInvalidOperation)
		}
		if email != user.Email {
			if err := s.checkFree(ctx, "email", email, s.users.ExistsByEmail); err != nil {
				return nil, err
			}
			changes.Email = &email
		}
	}

	return s.users.Update(ctx, id, changes)
}

func (s *userService) checkFree(ctx context.Context, field, value string, exists func(context.Context, string) (bool, error)) error {
	taken, err := exists(ctx, value)
	if err != nil {
		return fmt.Errorf("check %s: %w", field, err)
	}
	if taken {
		return domain.UserConflict(field)
	}
	return nil
}

// ChangePassword replaces the password after verifying the current one and
// revokes every token issued before the change.
func (s *userService) ChangePassword(ctx context.Context, id string, in ports.ChangePasswordInput) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(ctx, in.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: current password is incorrect", domain.ErrInvalidOperation)
	}
	if in.NewPassword != in.ConfirmPassword {
		return domain.ErrPasswordMismatch
	}
	if in.NewPassword == in.CurrentPassword {
		return fmt.Errorf("%w: new password must be different from current password", domain.ErrInvalidOperation)
	}

	hash, err := s.hasher.Hash(ctx, in.NewPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	updated, err := s.users.Update(ctx, user.ID, domain.UserChanges{
		PasswordHash:        &hash,
		BumpTokenVersion:    true,
		UpdatedAt:           s.now().UTC(),
		RequireTokenVersion: &user.TokenVersion,
	})
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	if err := s.revokeBefore(ctx, updated.ID, updated.TokenVersion); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	emitAudit(ctx, s.audit, s.log, domain.AuditEvent{Type: domain.AuditPasswordChanged, UserID: user.ID, Username: user.Username}, s.now)
	return nil
}

func (s *userService) SetEmailNotifications(ctx context.Context, id string, enabled bool) (*domain.User, error) {
	return s.users.Update(ctx, id, domain.UserChanges{
		EmailNotifications: &enabled,
		UpdatedAt:          s.now().UTC(),
	})
}

// ChangeRole sets a user's role. Demoting the last ADMIN is refused.
// The user's token version is bumped so tokens carrying the old role stop
// working; the new role applies from the next login. The call fails if the
// old tokens could not be revoked, and repeating it re-applies the revocation.
func (s *userService) ChangeRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidOperation, role)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		if err := s.revokeBefore(ctx, user.ID, user.TokenVersion); err != nil {
			return nil, fmt.Errorf("change role: %w", err)
		}
		return user, nil
	}

	changes := domain.UserChanges{Role: &role, BumpTokenVersion: true, UpdatedAt: s.now().UTC()}
	var updated *domain.User
	if user.Role == domain.RoleAdmin {
		updated, err = s.updateAdmin(ctx, user, changes)
	} else {
		changes.RequireRole = &user.Role
		changes.RequireTokenVersion = &user.TokenVersion
		updated, err = s.users.Update(ctx, user.ID, changes)
	}
	if err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}

	if err := s.revokeBefore(ctx, updated.ID, updated.TokenVersion); err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}
	emitAudit(ctx, s.audit, s.log, domain.AuditEvent{
		Type:     domain.AuditRoleChanged,
		UserID:   user.ID,
		Username: user.Username,
		Detail:   fmt.Sprintf("%s -> %s", user.Role, role),
	}, s.now)
	s.log.Info().Str("user_id", user.ID).Str("from", string(user.Role)).Str("to", string(role)).Msg("role changed")

	return updated, nil
}

// Delete removes a user and their tasks. The last ADMIN cannot be deleted.
// The account is first demoted and its tokens revoked, so a failure part way
// leaves a consistent account that can be deleted again.
func (s *userService) Delete(ctx context.Context, id string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	demoted := domain.RoleUser
	changes := domain.UserChanges{Role: &demoted, BumpTokenVersion: true, UpdatedAt: s.now().UTC()}
	var updated *domain.User
	if user.Role == domain.RoleAdmin {
		updated, err = s.updateAdmin(ctx, user, changes)
	} else {
		changes.RequireTokenVersion = &user.TokenVersion
		updated, err = s.users.Update(ctx, user.ID, changes)
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.revokeBefore(ctx, updated.ID, updated.TokenVersion); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if s.tasks != nil {
		n, err := s.tasks.DeleteByOwner(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("delete user tasks: %w", err)
		}
		s.log.Debug().Str("user_id", user.ID).Int64("tasks", n).Msg("user tasks removed")
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	emitAudit(ctx, s.audit, s.log, domain.AuditEvent{Type: domain.AuditUserDeleted, UserID: user.ID, Username: user.Username}, s.now)
	return nil
}

var errLastAdmin = fmt.Errorf("%w: cannot remove the last admin", domain.ErrInvalidOperation)

// updateAdmin applies changes that take ADMIN away from user. The write is
// conditional on the account still being the ADMIN that was read. Afterwards
// the remaining admins are counted again; if a concurrent change left none,
// this change is reverted and refused.
func (s *userService) updateAdmin(ctx context.Context, user *domain.User, changes domain.UserChanges) (*domain.User, error) {
	if err := s.ensureAnotherAdmin(ctx); err != nil {
		return nil, err
	}

	admin := domain.RoleAdmin
	changes.RequireRole = &admin
	changes.RequireTokenVersion = &user.TokenVersion
	updated, err := s.users.Update(ctx, user.ID, changes)
	if err != nil {
		return nil, err
	}

	admins, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err == nil && admins > 0 {
		return updated, nil
	}

	_, rerr := s.users.Update(ctx, user.ID, domain.UserChanges{
		Role:                &admin,
		UpdatedAt:           s.now().UTC(),
		RequireRole:         &updated.Role,
		RequireTokenVersion: &updated.TokenVersion,
	})
	if rerr != nil {
		s.log.Error().Err(rerr).Str("user_id", user.ID).Msg("could not restore admin role")
	}
	if err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}
	return nil, errLastAdmin
}

func (s *userService) ensureAnotherAdmin(ctx context.Context) error {
	admins, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins <= 1 {
		return errLastAdmin
	}
	return nil
}

// EnsureAdmin creates the bootstrap ADMIN account if the username is free.
func (s *userService) EnsureAdmin(ctx context.Context, username, email, password string) (*domain.User, bool, error) {
	existing, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, fmt.Errorf("ensure admin: %w", err)
	}

	user, err := s.Create(ctx, ports.RegisterInput{Username: username, Email: email, Password: password}, domain.RoleAdmin)
	if err != nil {
		return nil, false, fmt.Errorf("ensure admin: %w", err)
	}
	return user, true, nil
}

// Create adds an account with an explicit role, bypassing self-registration.
func (s *userService) Create(ctx context.Context, in ports.RegisterInput, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidOperation, role)
	}
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidOperation)
	}
	if err := s.checkFree(ctx, "username", username, s.users.ExistsByUsername); err != nil {
		return nil, err
	}
	if err := s.checkFree(ctx, "email", email, s.users.ExistsByEmail); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	now := s.now().UTC()
	return s.users.Create(ctx, &domain.User{
		Username:           username,
		Email:              email,
		PasswordHash:       hash,
		Role:               role,
		EmailNotifications: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
}

func (s *userService) revokeBefore(ctx context.Context, userID string, version int) error {
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.RevokeUserBefore(ctx, userID, version); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to revoke user tokens")
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}
