package security

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCodec(t *testing.T, clock *fakeClock) *JWTCodec {
	t.Helper()
	codec, err := NewJWTCodec(testSecret, time.Hour, WithClock(clock.Now), WithIssuer("task-manager"))
	require.NoError(t, err)
	return codec
}

func alice() *domain.User {
	return &domain.User{ID: "u-1", Username: "alice", Email: "alice@x.com", Role: domain.RoleUser}
}

func TestJWTCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	token, issued, err := codec.Encode(alice())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	for _, offset := range []time.Duration{0, time.Minute, 59*time.Minute + 59*time.Second} {
		clock.t = issued.IssuedAt.Add(offset)

		got, err := codec.Decode(token)
		require.NoError(t, err, "offset %s", offset)
		assert.Equal(t, "alice", got.Subject)
		assert.Equal(t, "u-1", got.UserID)
		assert.Equal(t, domain.RoleUser, got.Role)
		assert.True(t, got.IssuedAt.Equal(issued.IssuedAt))
		assert.True(t, got.ExpiresAt.Equal(issued.IssuedAt.Add(time.Hour)))
		assert.Equal(t, issued.TokenID, got.TokenID)
	}
}

func TestJWTCodec_RoleAtIssuance(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, clock)

	user := alice()
	token, _, err := codec.Encode(user)
	require.NoError(t, err)

	user.Role = domain.RoleAdmin

	got, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, got.Role)
}

func TestJWTCodec_CarriesTokenVersion(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, &fakeClock{t: time.Now()})
	user := alice()
	user.TokenVersion = 3

	token, _, err := codec.Encode(user)
	require.NoError(t, err)

	got, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Version)
}

func TestJWTCodec_UniqueTokenIDs(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, &fakeClock{t: time.Now()})

	_, a, err := codec.Encode(alice())
	require.NoError(t, err)
	_, b, err := codec.Encode(alice())
	require.NoError(t, err)
	assert.NotEqual(t, a.TokenID, b.TokenID)
}

func TestJWTCodec_SignatureBitFlip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, &fakeClock{t: time.Now()})
	token, _, err := codec.Encode(alice())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)

	for i := 0; i < len(sig)*8; i++ {
		mutated := append([]byte(nil), sig...)
		mutated[i/8] ^= 1 << (i % 8)
		tampered := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(mutated)

		_, err := codec.Decode(tampered)
		require.ErrorIs(t, err, domain.ErrTokenInvalidSignature, "bit %d", i)
	}
}

func TestJWTCodec_TamperedPayload(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, &fakeClock{t: time.Now()})
	token, _, err := codec.Encode(alice())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(payload), `"role":"USER"`, `"role":"ADMIN"`, 1)
	require.NotEqual(t, string(payload), forged)

	tampered := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(forged)) + "." + parts[2]
	_, err = codec.Decode(tampered)
	assert.ErrorIs(t, err, domain.ErrTokenInvalidSignature)
}

func TestJWTCodec_Expired(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	token, claims, err := codec.Encode(alice())
	require.NoError(t, err)

	clock.t = claims.ExpiresAt
	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired, "now == expiresAt must be expired")

	clock.Advance(48 * time.Hour)
	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestJWTCodec_ExpiredWithBadSignature(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, clock)
	token, _, err := codec.Encode(alice())
	require.NoError(t, err)

	other, err := NewJWTCodec([]byte("another-secret-another-secret-xx"), time.Hour, WithClock(clock.Now), WithIssuer("task-manager"))
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = other.Decode(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalidSignature)
}

func TestJWTCodec_Malformed(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, clock)

	sign := func(claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		require.NoError(t, err)
		return s
	}
	now := clock.Now()

	cases := map[string]string{
		"empty":         "",
		"garbage":       "not-a-token",
		"two segments":  "abc.def",
		"bad base64":    "!!!.???.***",
		"missing exp":   sign(accessClaims{RegisteredClaims: jwt.RegisteredClaims{ID: "x", Issuer: "task-manager", Subject: "alice", IssuedAt: jwt.NewNumericDate(now)}, UserID: "u-1", Role: "USER"}),
		"unknown role":  sign(accessClaims{RegisteredClaims: jwt.RegisteredClaims{ID: "x", Issuer: "task-manager", Subject: "alice", IssuedAt: jwt.NewNumericDate(now), ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}, UserID: "u-1", Role: "ROOT"}),
		"missing uid":   sign(accessClaims{RegisteredClaims: jwt.RegisteredClaims{ID: "x", Issuer: "task-manager", Subject: "alice", IssuedAt: jwt.NewNumericDate(now), ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}, Role: "USER"}),
		"wrong issuer":  sign(accessClaims{RegisteredClaims: jwt.RegisteredClaims{ID: "x", Issuer: "elsewhere", Subject: "alice", IssuedAt: jwt.NewNumericDate(now), ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}, UserID: "u-1", Role: "USER"}),
		"missing iat":   sign(accessClaims{RegisteredClaims: jwt.RegisteredClaims{ID: "x", Issuer: "task-manager", Subject: "alice", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}, UserID: "u-1", Role: "USER"}),
		"missing jti":   sign(accessClaims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "task-manager", Subject: "alice", IssuedAt: jwt.NewNumericDate(now), ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}, UserID: "u-1", Role: "USER"}),
		"missing sub":   sign(accessClaims{RegisteredClaims: jwt.RegisteredClaims{ID: "x", Issuer: "task-manager", IssuedAt: jwt.NewNumericDate(now), ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}, UserID: "u-1", Role: "USER"}),
		"not yet valid": sign(accessClaims{RegisteredClaims: jwt.RegisteredClaims{ID: "x", Issuer: "task-manager", Subject: "alice", IssuedAt: jwt.NewNumericDate(now), NotBefore: jwt.NewNumericDate(now.Add(time.Hour)), ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Hour))}, UserID: "u-1", Role: "USER"}),
	}

	for name, token := range cases {
		_, err := codec.Decode(token)
		assert.ErrorIs(t, err, domain.ErrTokenMalformed, name)
	}
}

func TestJWTCodec_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, clock)
	now := clock.Now()

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "x", Issuer: "task-manager", Subject: "alice", IssuedAt: jwt.NewNumericDate(now), ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		UserID:           "u-1",
		Role:             "ADMIN",
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)
	_, err = codec.Decode(hs512)
	assert.ErrorIs(t, err, domain.ErrTokenInvalidSignature)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = codec.Decode(none)
	assert.ErrorIs(t, err, domain.ErrTokenInvalidSignature)
}

func TestNewJWTCodec(t *testing.T) {
	t.Parallel()

	_, err := NewJWTCodec(nil, time.Hour)
	assert.Error(t, err)

	codec, err := NewJWTCodec(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, codec.TTL())

	_, _, err = codec.Encode(&domain.User{ID: "u", Username: "bob", Role: "ROOT"})
	assert.Error(t, err)
	_, _, err = codec.Encode(nil)
	assert.Error(t, err)
}
