package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/ports"
	"github.com/Chamindu18/task-management-system/internal/core/security"
	"github.com/Chamindu18/task-management-system/internal/pkg/metrics"
)

// PrincipalKey is the echo.Context key holding the request's domain.Principal.
const PrincipalKey = "principal"

// ResolveIdentity verifies the bearer token, if any, and attaches the
// resulting principal to both the request context and the echo context.
//
// It never rejects a request: a missing, malformed, expired, forged or
// revoked token simply leaves the request anonymous, and route-level
// authorization decides what that means. revoker may be nil. When the
// revocation lookup itself fails, failClosed decides whether the token is
// dropped (true) or honoured (false).
func ResolveIdentity(codec ports.TokenCodec, revoker ports.TokenRevoker, failClosed bool, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return next(c)
			}

			claims, err := codec.Decode(token)
			if err != nil {
				metrics.TokenDecodeFailuresTotal.WithLabelValues(decodeReason(err)).Inc()
				log.Debug().Err(err).Str("path", c.Path()).Msg("ignoring bearer token")
				return next(c)
			}

			if revoker != nil {
				revoked, err := revoker.IsRevoked(c.Request().Context(), claims)
				switch {
				case err != nil:
					metrics.TokenDecodeFailuresTotal.WithLabelValues("revocation_check").Inc()
					log.Warn().Err(err).Str("token_id", claims.TokenID).Bool("fail_closed", failClosed).
						Msg("revocation lookup failed")
					if failClosed {
						return next(c)
					}
				case revoked:
					metrics.TokenDecodeFailuresTotal.WithLabelValues("revoked").Inc()
					log.Debug().Str("token_id", claims.TokenID).Msg("ignoring revoked token")
					return next(c)
				}
			}

			p := domain.PrincipalFromClaims(claims)
			ctx := security.WithPrincipal(c.Request().Context(), p)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(PrincipalKey, p)

			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func decodeReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}
