package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// Timeout bounds each request's context. Handlers that fail because the
// deadline passed surface domain.ErrServiceTimeout; store calls already in
// flight are cancelled through the same context.
func Timeout(d time.Duration) echo.MiddlewareFunc {
	return echomiddleware.ContextTimeoutWithConfig(echomiddleware.ContextTimeoutConfig{
		Timeout: d,
		ErrorHandler: func(err error, c echo.Context) error {
			if errors.Is(err, context.DeadlineExceeded) {
				return domain.ErrServiceTimeout
			}
			return err
		},
	})
}
