package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/storefront/ecommerce-api/internal/api/middleware"
	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// --- Request types ---

// accountRequest is shared by registration and update; both use the full
// registration schema.
type accountRequest struct {
	Firstname string `json:"firstname" validate:"required,min=4,max=50"`
	Lastname  string `json:"lastname"  validate:"required,min=4,max=50"`
	Email     string `json:"email"     validate:"required,min=5,max=255,email"`
	Password  string `json:"password"  validate:"required,min=5,max=255"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,min=5,max=255,email"`
	Password string `json:"password" validate:"required,min=5,max=255"`
}

// --- Response types ---

// envelope is the success shape of every endpoint.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// registeredAccount is the subset of fields echoed back on registration.
type registeredAccount struct {
	ID        string `json:"_id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

// bindAndValidate decodes the JSON body into req and checks its constraints.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return bindError(err)
	}
	return c.Validate(req)
}

func bindError(err error) error {
	if isTimeout(err) {
		return domain.ErrRequestTimeout
	}

	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		return domain.NewValidationError(ute.Field, "%q must be a %s", ute.Field, ute.Type)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code != http.StatusBadRequest {
		return he
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// identityFrom returns the identity stored by the Auth middleware.
func identityFrom(c echo.Context) (*domain.Identity, error) {
	if id, ok := c.Get(middleware.IdentityKey).(*domain.Identity); ok && id != nil {
		return id, nil
	}
	if id, ok := domain.IdentityFrom(c.Request().Context()); ok {
		return id, nil
	}
	return nil, fmt.Errorf("identity: %w", domain.ErrMissingToken)
}
