package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront/ecommerce-api/internal/api/middleware"
	"github.com/storefront/ecommerce-api/internal/core/domain"
	"github.com/storefront/ecommerce-api/internal/core/ports"
)

type mockAccountService struct {
	mock.Mock
	kind domain.Kind
}

func (m *mockAccountService) Kind() domain.Kind { return m.kind }

func (m *mockAccountService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	args := m.Called(ctx, in)
	res, _ := args.Get(0).(*ports.AuthResult)
	return res, args.Error(1)
}

func (m *mockAccountService) Login(ctx context.Context, in ports.LoginInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *mockAccountService) List(ctx context.Context) ([]*domain.Account, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).([]*domain.Account)
	return res, args.Error(1)
}

func (m *mockAccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*domain.Account)
	return res, args.Error(1)
}

func (m *mockAccountService) Update(ctx context.Context, id string, in ports.UpdateInput) (*domain.Account, error) {
	args := m.Called(ctx, id, in)
	res, _ := args.Get(0).(*domain.Account)
	return res, args.Error(1)
}

func (m *mockAccountService) Delete(ctx context.Context, id string, requestID string) (*domain.Account, error) {
	args := m.Called(ctx, id, requestID)
	res, _ := args.Get(0).(*domain.Account)
	return res, args.Error(1)
}

const janeID = "64b7f0c2a1b2c3d4e5f60718"

func jane() *domain.Account {
	return &domain.Account{ID: janeID, Firstname: "Jane", Lastname: "Doe", Email: "jane@x.com"}
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	rec.Header().Set(echo.HeaderXRequestID, "req-42")
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAccountHandler_Register_Success(t *testing.T) {
	svc := &mockAccountService{kind: domain.KindCustomer}
	svc.On("Register", mock.Anything, ports.RegisterInput{
		Firstname: "Jane",
		Lastname:  "Doee",
		Email:     "jane@x.com",
		Password:  "secret1",
		RequestID: "req-42",
	}).Return(&ports.AuthResult{Account: jane(), Token: "tok-123"}, nil)

	c, rec := newContext(http.MethodPost, "/api/customer",
		`{"firstname":"Jane","lastname":"Doee","email":"jane@x.com","password":"secret1"}`)

	require.NoError(t, NewAccountHandler(svc).Register(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-123", rec.Header().Get(middleware.TokenHeader))

	body := decode(t, rec)
	assert.Equal(t, "Successful! Customer created", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, janeID, data["_id"])
	assert.Equal(t, "jane@x.com", data["email"])
	assert.NotContains(t, data, "password")
	svc.AssertExpectations(t)
}

func TestAccountHandler_Register_Validation(t *testing.T) {
	cases := map[string]struct {
		body string
		msg  string
	}{
		"empty body":      {`{}`, `"firstname" is required`},
		"short firstname": {`{"firstname":"Jan","lastname":"Doee","email":"jane@x.com","password":"secret1"}`, `"firstname" length must be at least 4 characters long`},
		"long lastname":   {`{"firstname":"Jane","lastname":"` + strings.Repeat("d", 51) + `","email":"jane@x.com","password":"secret1"}`, `"lastname" length must be less than or equal to 50 characters long`},
		"bad email":       {`{"firstname":"Jane","lastname":"Doee","email":"not-an-email","password":"secret1"}`, `"email" must be a valid email`},
		"short password":  {`{"firstname":"Jane","lastname":"Doee","email":"jane@x.com","password":"abc"}`, `"password" length must be at least 5 characters long`},
		"wrong type":      {`{"firstname":1234,"lastname":"Doee","email":"jane@x.com","password":"secret1"}`, `"firstname" must be a string`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &mockAccountService{kind: domain.KindCustomer}
			c, _ := newContext(http.MethodPost, "/api/customer", tc.body)

			err := NewAccountHandler(svc).Register(c)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.msg, ve.Message)
			svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		})
	}
}

func TestAccountHandler_Register_InvalidPayload(t *testing.T) {
	svc := &mockAccountService{kind: domain.KindStaff}
	c, _ := newContext(http.MethodPost, "/api/staff", "not-json")

	err := NewAccountHandler(svc).Register(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, "invalid payload", he.Message)
}

func TestAccountHandler_Register_Duplicate(t *testing.T) {
	svc := &mockAccountService{kind: domain.KindCustomer}
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrAccountExists)
	c, rec := newContext(http.MethodPost, "/api/customer",
		`{"firstname":"Jane","lastname":"Doee","email":"jane@x.com","password":"secret1"}`)

	err := NewAccountHandler(svc).Register(c)

	assert.ErrorIs(t, err, domain.ErrAccountExists)
	assert.Empty(t, rec.Header().Get(middleware.TokenHeader))
}

func TestAccountHandler_Login(t *testing.T) {
	svc := &mockAccountService{kind: domain.KindStaff}
	svc.On("Login", mock.Anything, ports.LoginInput{Email: "jane@x.com", Password: "secret1", RequestID: "req-42"}).
		Return("tok-456", nil)
	c, rec := newContext(http.MethodPost, "/api/staff/login", `{"email":"jane@x.com","password":"secret1"}`)

	require.NoError(t, NewAccountHandler(svc).Login(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-456", rec.Header().Get(middleware.TokenHeader))
	body := decode(t, rec)
	assert.Equal(t, "staff login", body["message"])
	assert.Equal(t, "tok-456", body["data"])
}

func TestAccountHandler_Login_Failures(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrTooManyAttempts} {
		svc := &mockAccountService{kind: domain.KindCustomer}
		svc.On("Login", mock.Anything, mock.Anything).Return("", want)
		c, rec := newContext(http.MethodPost, "/api/customer/login", `{"email":"jane@x.com","password":"wrong1"}`)

		err := NewAccountHandler(svc).Login(c)

		assert.ErrorIs(t, err, want)
		assert.Empty(t, rec.Header().Get(middleware.TokenHeader))
	}
}

func TestAccountHandler_List(t *testing.T) {
	svc := &mockAccountService{kind: domain.KindCustomer}
	svc.On("List", mock.Anything).Return([]*domain.Account{jane()}, nil)
	c, rec := newContext(http.MethodGet, "/api/customer", "")

	require.NoError(t, NewAccountHandler(svc).List(c))

	body := decode(t, rec)
	assert.Equal(t, "Success", body["message"])
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Jane", data[0].(map[string]any)["firstname"])
}

func TestAccountHandler_List_EmptyIsArray(t *testing.T) {
	svc := &mockAccountService{kind: domain.KindCustomer}
	svc.On("List", mock.Anything).Return(nil, nil)
	c, rec := newContext(http.MethodGet, "/api/customer", "")

	require.NoError(t, NewAccountHandler(svc).List(c))

	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestAccountHandler_Get(t *testing.T) {
	svc := &mockAccountService{kind: domain.KindCustomer}
	svc.On("Get", mock.Anything, janeID).Return(jane(), nil)
	svc.On("Get", mock.Anything, "missing").Return(nil, domain.ErrAccountNotFound)
	h := NewAccountHandler(svc)

	c, rec := newContext(http.MethodGet, "/api/customer/"+janeID, "")
	c.SetParamNames("id")
	c.SetParamValues(janeID)
	require.NoError(t, h.Get(c))
	body := decode(t, rec)
	assert.Equal(t, "success", body["message"])
	assert.Equal(t, janeID, body["data"].(map[string]any)["_id"])

	c, _ = newContext(http.MethodGet, "/api/customer/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")
	assert.ErrorIs(t, h.Get(c), domain.ErrAccountNotFound)
}

func TestAccountHandler_Me(t *testing.T) {
	svc := &mockAccountService{kind: domain.KindStaff}
	svc.On("Get", mock.Anything, janeID).Return(jane(), nil)
	h := NewAccountHandler(svc)

	c, rec := newContext(http.MethodGet, "/api/staff/me", "")
	c.Set(middleware.IdentityKey, &domain.Identity{AccountID: janeID})
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, _ = newContext(http.MethodGet, "/api/staff/me", "")
	assert.ErrorIs(t, h.Me(c), domain.ErrMissingToken)
}

func TestAccountHandler_Update(t *testing.T) {
	svc := &mockAccountService{kind: domain.KindCustomer}
	updated := jane()
	updated.Firstname = "Janet"
	svc.On("Update", mock.Anything, janeID, ports.UpdateInput{
		Firstname: "Janet",
		Lastname:  "Doee",
		Email:     "jane@x.com",
		Password:  "secret1",
		RequestID: "req-42",
	}).Return(updated, nil)

	c, rec := newContext(http.MethodPut, "/api/customer/"+janeID,
		`{"firstname":"Janet","lastname":"Doee","email":"jane@x.com","password":"secret1"}`)
	c.SetParamNames("id")
	c.SetParamValues(janeID)

	require.NoError(t, NewAccountHandler(svc).Update(c))

	body := decode(t, rec)
	assert.Equal(t, "Customer updated", body["message"])
	assert.Equal(t, "Janet", body["data"].(map[string]any)["firstname"])
	svc.AssertExpectations(t)
}

func TestAccountHandler_Update_RequiresFullSchema(t *testing.T) {
	svc := &mockAccountService{kind: domain.KindCustomer}
	c, _ := newContext(http.MethodPut, "/api/customer/"+janeID, `{"firstname":"Janet","lastname":"Doee","email":"jane@x.com"}`)
	c.SetParamNames("id")
	c.SetParamValues(janeID)

	err := NewAccountHandler(svc).Update(c)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, `"password" is required`, ve.Message)
}

func TestAccountHandler_Delete(t *testing.T) {
	svc := &mockAccountService{kind: domain.KindStaff}
	svc.On("Delete", mock.Anything, janeID, "req-42").Return(jane(), nil)
	c, rec := newContext(http.MethodDelete, "/api/staff/"+janeID, "")
	c.SetParamNames("id")
	c.SetParamValues(janeID)

	require.NoError(t, NewAccountHandler(svc).Delete(c))

	body := decode(t, rec)
	assert.Equal(t, "Staff deleted!", body["message"])
	assert.Equal(t, janeID, body["data"].(map[string]any)["_id"])
}
