package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/ports"
	"github.com/Chamindu18/task-management-system/internal/core/security"
)

// AuthService coordinates registration, login and logout.
type AuthService struct {
	users   ports.UserRepository
	hasher  ports.PasswordHasher
	codec   ports.TokenCodec
	revoker ports.TokenRevoker
	audit   ports.AuditPublisher
	log     zerolog.Logger
	now     func() time.Time

	dummyMu   sync.Mutex
	dummyHash string
}

// NewAuthService wires the coordinator. revoker and audit may be nil, in
// which case logout is a no-op and no audit events are emitted.
func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	codec ports.TokenCodec,
	revoker ports.TokenRevoker,
	audit ports.AuditPublisher,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		hasher:  hasher,
		codec:   codec,
		revoker: revoker,
		audit:   audit,
		log:     log,
		now:     time.Now,
	}
}

// Register creates a USER account and logs it in. Username uniqueness is
// checked before email so the reported conflict is deterministic.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("register: %w: username, email and password are required", domain.ErrInvalidOperation)
	}

	if err := s.ensureUnique(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:           username,
		Email:              email,
		PasswordHash:       hash,
		Role:               domain.RoleUser,
		EmailNotifications: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	token, claims, err := s.codec.Encode(created)
	if err != nil {
		// Registration is all or nothing: roll the record back.
		if delErr := s.users.Delete(ctx, created.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("user_id", created.ID).Msg("failed to roll back registration")
		}
		return nil, fmt.Errorf("register: issue token: %w", err)
	}

	s.emit(ctx, domain.AuditEvent{Type: domain.AuditUserRegistered, UserID: created.ID, Username: created.Username})
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")

	return &ports.AuthResult{User: created, Token: token, Claims: claims}, nil
}

func (s *AuthService) ensureUnique(ctx context.Context, username, email string) error {
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("register: check username: %w", err)
	}
	if taken {
		return domain.UserConflict("username")
	}

	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("register: check email: %w", err)
	}
	if taken {
		return domain.UserConflict("email")
	}
	return nil
}

// Login verifies credentials and issues a token carrying the current role.
// Unknown usernames and wrong passwords both yield domain.ErrInvalidCredentials
// after a full hash comparison.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	username = strings.TrimSpace(username)

	user, err := s.users.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		s.burnVerify(ctx, password)
		s.loginFailed(ctx, username, "unknown user")
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("login: %w", ctxErr)
		}
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
		ok = false
	}
	if !ok {
		s.loginFailed(ctx, username, "bad password")
		return nil, domain.ErrInvalidCredentials
	}

	token, claims, err := s.codec.Encode(user)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.emit(ctx, domain.AuditEvent{Type: domain.AuditUserLoggedIn, UserID: user.ID, Username: user.Username})
	return &ports.AuthResult{User: user, Token: token, Claims: claims}, nil
}

// burnVerify spends the same hashing work as a real verification so unknown
// usernames are not distinguishable by latency.
func (s *AuthService) burnVerify(ctx context.Context, password string) {
	if digest := s.placeholderHash(ctx); digest != "" {
		_, _ = s.hasher.Verify(ctx, password, digest)
	}
}

// placeholderHash computes the comparison digest on first use. The hash runs
// detached from the caller's cancellation, and a failed attempt is retried by
// the next caller instead of being cached.
func (s *AuthService) placeholderHash(ctx context.Context) string {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()
	if s.dummyHash != "" {
		return s.dummyHash
	}

	h, err := s.hasher.Hash(context.WithoutCancel(ctx), "task-manager-placeholder")
	if err != nil {
		s.log.Warn().Err(err).Msg("could not prepare placeholder hash")
		return ""
	}
	s.dummyHash = h
	return h
}

func (s *AuthService) loginFailed(ctx context.Context, username, reason string) {
	s.log.Info().Str("username", username).Str("reason", reason).Msg("login rejected")
	s.emit(ctx, domain.AuditEvent{Type: domain.AuditLoginFailed, Username: username})
}

// Logout revokes the token the current request was authenticated with.
func (s *AuthService) Logout(ctx context.Context) error {
	p, ok := security.PrincipalFrom(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}
	if s.revoker != nil {
		if err := s.revoker.RevokeToken(ctx, p.TokenID, p.ExpiresAt); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
	}
	s.emit(ctx, domain.AuditEvent{Type: domain.AuditUserLoggedOut, UserID: p.UserID, Username: p.Username})
	return nil
}

// CurrentIdentity returns the account behind the request's principal.
func (s *AuthService) CurrentIdentity(ctx context.Context) (*domain.User, error) {
	p, ok := security.PrincipalFrom(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("current identity: %w", err)
	}
	return user, nil
}

func (s *AuthService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := s.users.ExistsByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return !taken, nil
}

func (s *AuthService) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	taken, err := s.users.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return !taken, nil
}

func (s *AuthService) emit(ctx context.Context, ev domain.AuditEvent) {
	emitAudit(ctx, s.audit, s.log, ev, s.now)
}
