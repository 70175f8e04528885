package ports

import (
	"context"
	"time"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords. Both calls are CPU heavy and
// may block until a hashing slot is free or ctx is done.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

// TokenCodec issues and verifies access tokens. Decode fails with exactly one
// of domain.ErrTokenMalformed, domain.ErrTokenInvalidSignature or
// domain.ErrTokenExpired.
type TokenCodec interface {
	Encode(user *domain.User) (string, domain.Claims, error)
	Decode(token string) (domain.Claims, error)
}

// TokenRevoker records tokens that must no longer be honoured before they expire.
type TokenRevoker interface {
	// RevokeToken deny-lists a single token until expiresAt.
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	// RevokeUserBefore invalidates every token of userID whose version is
	// lower than minVersion.
	RevokeUserBefore(ctx context.Context, userID string, minVersion int) error
	IsRevoked(ctx context.Context, claims domain.Claims) (bool, error)
}
