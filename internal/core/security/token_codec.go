package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

// DefaultTokenTTL is used when the codec is built with a non-positive TTL.
const DefaultTokenTTL = 24 * time.Hour

// accessClaims is the wire shape of an access token.
type accessClaims struct {
	jwt.RegisteredClaims
	UserID  string `json:"uid"`
	Role    string `json:"role"`
	Version int    `json:"ver"`
}

// JWTCodec signs and verifies HS256 access tokens. It holds no mutable state
// after construction and is safe for concurrent use.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// CodecOption customises a JWTCodec.
type CodecOption func(*JWTCodec)

// WithIssuer sets the iss claim and requires it on decode.
func WithIssuer(issuer string) CodecOption {
	return func(c *JWTCodec) { c.issuer = issuer }
}

// WithClock replaces the time source used for issuing and verifying tokens.
func WithClock(now func() time.Time) CodecOption {
	return func(c *JWTCodec) { c.now = now }
}

// NewJWTCodec builds a codec around secret. The secret is copied so later
// changes to the caller's slice have no effect.
func NewJWTCodec(secret []byte, ttl time.Duration, opts ...CodecOption) (*JWTCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token codec: signing secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	c := &JWTCodec{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the lifetime given to newly issued tokens.
func (c *JWTCodec) TTL() time.Duration {
	return c.ttl
}

// Encode issues a token for user carrying its current role.
func (c *JWTCodec) Encode(user *domain.User) (string, domain.Claims, error) {
	if user == nil || user.ID == "" || user.Username == "" {
		return "", domain.Claims{}, errors.New("token codec: user id and username are required")
	}
	if !user.Role.Valid() {
		return "", domain.Claims{}, fmt.Errorf("token codec: invalid role %q", user.Role)
	}

	issuedAt := c.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(c.ttl)

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:  user.ID,
		Role:    string(user.Role),
		Version: user.TokenVersion,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", domain.Claims{}, fmt.Errorf("token codec: sign: %w", err)
	}

	return signed, domain.Claims{
		TokenID:   claims.ID,
		Subject:   user.Username,
		UserID:    user.ID,
		Role:      user.Role,
		Version:   user.TokenVersion,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Decode verifies token and returns its claims. The signature is checked
// before any time-based claim, so an expired token with a bad signature
// reports domain.ErrTokenInvalidSignature.
func (c *JWTCodec) Decode(token string) (domain.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var claims accessClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return domain.Claims{}, classify(err)
	}

	role := domain.Role(claims.Role)
	if claims.Subject == "" || claims.UserID == "" || claims.ID == "" || claims.IssuedAt == nil || claims.Version < 0 || !role.Valid() {
		return domain.Claims{}, domain.ErrTokenMalformed
	}

	return domain.Claims{
		TokenID:   claims.ID,
		Subject:   claims.Subject,
		UserID:    claims.UserID,
		Role:      role,
		Version:   claims.Version,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

// classify collapses jwt parser errors into the three decode failures.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrTokenInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	default:
		return domain.ErrTokenMalformed
	}
}
