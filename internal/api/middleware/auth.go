package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/ecommerce-api/internal/api/metrics"
	"github.com/storefront/ecommerce-api/internal/core/domain"
	"github.com/storefront/ecommerce-api/internal/core/ports"
)

// TokenHeader carries the auth token on requests and on register/login responses.
const TokenHeader = "X-Auth-Token"

// IdentityKey is the echo context key holding the *domain.Identity.
const IdentityKey = "identity"

// Auth verifies the token header and injects the identity into both the echo
// context and the request context. A missing token stops the chain with
// domain.ErrMissingToken, a bad one with domain.ErrInvalidToken.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := strings.TrimSpace(c.Request().Header.Get(TokenHeader))
			if token == "" {
				metrics.AuthRejectionsTotal.WithLabelValues("missing_token").Inc()
				return domain.ErrMissingToken
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return domain.ErrInvalidToken
			}

			c.Set(IdentityKey, identity)
			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithIdentity(req.Context(), identity)))

			return next(c)
		}
	}
}
