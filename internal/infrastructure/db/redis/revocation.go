package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

// RevocationStore is the token deny-list backed by Redis.
//
// Key formats:
//
//	revoked:jti:<token_id>  -> "1", expires with the token
//	revoked:user:<user_id>  -> lowest accepted token version, expires after one token TTL
type RevocationStore struct {
	client   redis.UniversalClient
	tokenTTL time.Duration
	prefix   string
}

// NewRevocationStore wraps client. tokenTTL must match the codec's TTL: once
// it has elapsed no token older than a per-user floor can still be valid.
func NewRevocationStore(client redis.UniversalClient, tokenTTL time.Duration) *RevocationStore {
	return &RevocationStore{client: client, tokenTTL: tokenTTL, prefix: "revoked:"}
}

// RevokeToken deny-lists a single token until it expires on its own.
func (s *RevocationStore) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("revoke token: empty token id")
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.tokenKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// RevokeUserBefore raises the user's version floor. Lower floors never
// overwrite higher ones.
func (s *RevocationStore) RevokeUserBefore(ctx context.Context, userID string, minVersion int) error {
	key := s.userKey(userID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Int()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil && current >= minVersion {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, strconv.Itoa(minVersion), s.tokenTTL)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

// IsRevoked reports whether claims belong to a deny-listed token or to a
// token version below the user's floor.
func (s *RevocationStore) IsRevoked(ctx context.Context, claims domain.Claims) (bool, error) {
	pipe := s.client.Pipeline()
	tokenHit := pipe.Exists(ctx, s.tokenKey(claims.TokenID))
	floor := pipe.Get(ctx, s.userKey(claims.UserID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("revocation lookup: %w", err)
	}

	if tokenHit.Val() > 0 {
		return true, nil
	}

	minVersion, err := floor.Int()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("revocation lookup: %w", err)
	}
	return claims.Version < minVersion, nil
}

func (s *RevocationStore) tokenKey(id string) string { return s.prefix + "jti:" + id }
func (s *RevocationStore) userKey(id string) string  { return s.prefix + "user:" + id }
