package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/ecommerce-api/internal/api/metrics"
	"github.com/storefront/ecommerce-api/internal/api/middleware"
	"github.com/storefront/ecommerce-api/internal/core/domain"
	"github.com/storefront/ecommerce-api/internal/core/ports"
)

// AccountHandler serves one account kind. Customers and staff share it, each
// mounted on its own route group with its own service.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// RegisterRoutes mounts the account endpoints on g. auth guards every route
// except registration and login.
func (h *AccountHandler) RegisterRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("", h.Register)
	g.POST("/login", h.Login)

	g.GET("", h.List, auth)
	g.GET("/me", h.Me, auth)
	g.GET("/:id", h.Get, auth)
	g.PUT("/:id", h.Update, auth)
	g.DELETE("/:id", h.Delete, auth)
}

// Register creates an account and returns its token in the X-Auth-Token header.
//
// @Summary      Register an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        kind  path      string          true  "Account kind"  Enums(customer, staff)
// @Param        body  body      accountRequest  true  "Account details"
// @Success      200   {object}  envelope{data=registeredAccount}
// @Header       200   {string}  X-Auth-Token  "Signed identity token"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/{kind} [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req accountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	kind := h.service.Kind()
	res, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Password:  req.Password,
		RequestID: requestID(c),
	})
	if err != nil {
		return err
	}
	metrics.AccountsRegisteredTotal.WithLabelValues(string(kind)).Inc()

	c.Response().Header().Set(middleware.TokenHeader, res.Token)
	return c.JSON(http.StatusOK, envelope{
		Message: "Successful! " + kind.Label() + " created",
		Data: registeredAccount{
			ID:        res.Account.ID,
			Firstname: res.Account.Firstname,
			Lastname:  res.Account.Lastname,
			Email:     res.Account.Email,
		},
	})
}

// Login authenticates an account and returns a token in both the body and
// the X-Auth-Token header.
//
// @Summary      Login
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        kind  path      string        true  "Account kind"  Enums(customer, staff)
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  envelope{data=string}
// @Header       200   {string}  X-Auth-Token  "Signed identity token"
// @Failure      400   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /api/{kind}/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	kind := h.service.Kind()
	token, err := h.service.Login(c.Request().Context(), ports.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		RequestID: requestID(c),
	})
	metrics.LoginsTotal.WithLabelValues(string(kind), loginResult(err)).Inc()
	if err != nil {
		return err
	}

	c.Response().Header().Set(middleware.TokenHeader, token)
	return c.JSON(http.StatusOK, envelope{Message: string(kind) + " login", Data: token})
}

// List returns every account of the kind, ordered by first name.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     TokenAuth
// @Param        kind  path      string  true  "Account kind"  Enums(customer, staff)
// @Success      200   {object}  envelope{data=[]domain.Account}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/{kind} [get]
func (h *AccountHandler) List(c echo.Context) error {
	accounts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if accounts == nil {
		accounts = []*domain.Account{}
	}
	return c.JSON(http.StatusOK, envelope{Message: "Success", Data: accounts})
}

// Get returns one account by id.
//
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Security     TokenAuth
// @Param        kind  path      string  true  "Account kind"  Enums(customer, staff)
// @Param        id    path      string  true  "Account id"
// @Success      200   {object}  envelope{data=domain.Account}
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/{kind}/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	return h.get(c, c.Param("id"))
}

// Me returns the account the token was issued for.
//
// @Summary      Get the current account
// @Tags         accounts
// @Produce      json
// @Security     TokenAuth
// @Param        kind  path      string  true  "Account kind"  Enums(customer, staff)
// @Success      200   {object}  envelope{data=domain.Account}
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/{kind}/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	return h.get(c, id.AccountID)
}

func (h *AccountHandler) get(c echo.Context, id string) error {
	account, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Message: "success", Data: account})
}

// Update replaces firstname, lastname and email. The password in the payload
// is validated but never applied.
//
// @Summary      Update an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        kind  path      string          true  "Account kind"  Enums(customer, staff)
// @Param        id    path      string          true  "Account id"
// @Param        body  body      accountRequest  true  "Account details"
// @Success      200   {object}  envelope{data=domain.Account}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/{kind}/{id} [put]
func (h *AccountHandler) Update(c echo.Context) error {
	var req accountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Password:  req.Password,
		RequestID: requestID(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Message: h.service.Kind().Label() + " updated", Data: account})
}

// Delete removes an account and returns the removed record.
//
// @Summary      Delete an account
// @Tags         accounts
// @Produce      json
// @Security     TokenAuth
// @Param        kind  path      string  true  "Account kind"  Enums(customer, staff)
// @Param        id    path      string  true  "Account id"
// @Success      200   {object}  envelope{data=domain.Account}
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/{kind}/{id} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	account, err := h.service.Delete(c.Request().Context(), c.Param("id"), requestID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Message: h.service.Kind().Label() + " deleted!", Data: account})
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	default:
		return "error"
	}
}
