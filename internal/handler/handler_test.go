package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/atm-system/internal/middleware"
	"github.com/mmeshcher/atm-system/internal/model"
	"github.com/mmeshcher/atm-system/internal/repository"
)

var testServices = []string{"Water", "Electricity", "Internet", "Telephone"}

type stubService struct {
	registerUser *model.User
	registerErr  error
	registerKind model.AccountKind

	authUser *model.User
	authErr  error
	authPIN  string

	getUser    *model.User
	getUserErr error

	opUser *model.User
	opErr  error

	paidService string
	paidAmount  string
}

func (s *stubService) Register(ctx context.Context, fullName, identityNumber, pin string, kind model.AccountKind, initialBalance string) (*model.User, error) {
	s.registerKind = kind
	return s.registerUser, s.registerErr
}

func (s *stubService) Authenticate(ctx context.Context, accountNumber, pin string) (*model.User, error) {
	s.authPIN = pin
	return s.authUser, s.authErr
}

func (s *stubService) GetUser(ctx context.Context, accountNumber string) (*model.User, error) {
	return s.getUser, s.getUserErr
}

func (s *stubService) Deposit(ctx context.Context, accountNumber, amount string) (*model.User, error) {
	return s.opUser, s.opErr
}

func (s *stubService) Withdraw(ctx context.Context, accountNumber, amount string) (*model.User, error) {
	return s.opUser, s.opErr
}

func (s *stubService) PayService(ctx context.Context, accountNumber, serviceName, amount string) (*model.User, error) {
	s.paidService = serviceName
	s.paidAmount = amount
	return s.opUser, s.opErr
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	auth := middleware.NewAuthMiddleware("test-secret")

	return NewHandler(svc, logger, auth, testServices)
}

func newTestUser(t *testing.T, balance string) *model.User {
	t.Helper()

	acc, err := model.NewAccount("123456", "1234", model.AccountKindSavings, decimal.RequireFromString(balance))
	require.NoError(t, err)
	return model.NewUser("Ana Pérez", "12345678", acc)
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()

	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

// serveAuthenticated вызывает обработчик за AuthMiddleware с cookie сессии счёта 123456.
func serveAuthenticated(h *Handler, fn http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.authMiddleware.SetAuthCookie(rec, "123456")
	req.AddCookie(rec.Result().Cookies()[0])

	respRec := httptest.NewRecorder()
	h.authMiddleware.Middleware(fn).ServeHTTP(respRec, req)
	return respRec
}

func TestRegister_Success(t *testing.T) {
	svc := &stubService{registerUser: newTestUser(t, "500")}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/atm/register", jsonBody(t, registerRequest{
		FullName:       " Ana Pérez ",
		IdentityNumber: "12345678",
		PIN:            "1234",
		AccountType:    "Savings",
		InitialBalance: "500.00",
	}))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	res := rec.Result()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, res.Cookies())
	assert.Equal(t, model.AccountKindSavings, svc.registerKind)

	var resp accountResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	assert.Equal(t, "123456", resp.AccountNumber)
	assert.Equal(t, "500.00", resp.Balance)
	assert.Equal(t, "Savings account", resp.AccountLabel)
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        any
		registerErr error
		wantStatus  int
	}{
		{name: "malformed json", body: "{", wantStatus: http.StatusBadRequest},
		{name: "unknown account type", body: registerRequest{AccountType: "credit"}, wantStatus: http.StatusBadRequest},
		{name: "invalid input", body: registerRequest{AccountType: "checking"}, registerErr: repository.ErrIdentityExists, wantStatus: http.StatusBadRequest},
		{name: "exhausted numbers", body: registerRequest{AccountType: "checking"}, registerErr: repository.ErrAccountNumbersExhausted, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &stubService{registerErr: tt.registerErr})

			var body *bytes.Reader
			if s, ok := tt.body.(string); ok {
				body = bytes.NewReader([]byte(s))
			} else {
				body = jsonBody(t, tt.body)
			}

			rec := httptest.NewRecorder()
			h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/atm/register", body))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	svc := &stubService{authUser: newTestUser(t, "10")}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/atm/login", jsonBody(t, credentialsRequest{
		AccountNumber: "123456",
		PIN:           " 1234 ",
	}))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	res := rec.Result()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Cookies())
	assert.Equal(t, "1234", svc.authPIN)
}

func TestLogin_EmptyFields(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/atm/login", jsonBody(t, credentialsRequest{AccountNumber: "123456"})))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_MalformedCredentialsSkipService(t *testing.T) {
	tests := []struct {
		name   string
		number string
		pin    string
	}{
		{name: "short number", number: "12345", pin: "1234"},
		{name: "long number", number: "1234567", pin: "1234"},
		{name: "letters in number", number: "12a456", pin: "1234"},
		{name: "short pin", number: "123456", pin: "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{authUser: newTestUser(t, "10")}
			h := newTestHandler(t, svc)

			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/atm/login", jsonBody(t, credentialsRequest{
				AccountNumber: tt.number,
				PIN:           tt.pin,
			})))

			res := rec.Result()
			assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
			assert.Empty(t, res.Cookies())
			assert.Contains(t, rec.Body.String(), "invalid account number or pin")
			assert.Empty(t, svc.authPIN)
		})
	}
}

func TestLogin_UnauthorizedOnError(t *testing.T) {
	svc := &stubService{authErr: model.ErrAuthenticationFailed}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/atm/login", jsonBody(t, credentialsRequest{
		AccountNumber: "123456",
		PIN:           "0000",
	}))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	res := rec.Result()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Empty(t, res.Cookies())
	assert.Contains(t, rec.Body.String(), "invalid account number or pin")
}

func TestGetBalance_JSONResponse(t *testing.T) {
	svc := &stubService{getUser: newTestUser(t, "1234.5")}
	h := newTestHandler(t, svc)

	respRec := serveAuthenticated(h, h.GetBalance, httptest.NewRequest(http.MethodGet, "/api/atm/balance", nil))

	res := respRec.Result()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

	var resp balanceResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	assert.Equal(t, "1,234.50", resp.Balance)
}

func TestGetAccount_UnknownAccount(t *testing.T) {
	h := newTestHandler(t, &stubService{getUserErr: repository.ErrUserNotFound})

	respRec := serveAuthenticated(h, h.GetAccount, httptest.NewRequest(http.MethodGet, "/api/atm/account", nil))

	assert.Equal(t, http.StatusUnauthorized, respRec.Code)
}

func TestWithdraw_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		opErr      error
		wantStatus int
		wantBody   string
	}{
		{name: "ok", wantStatus: http.StatusOK},
		{name: "insufficient funds", opErr: &model.InsufficientFundsError{Balance: decimal.NewFromInt(500)}, wantStatus: http.StatusPaymentRequired, wantBody: "500.00"},
		{name: "invalid amount", opErr: model.InvalidInputf("withdrawal amount must be greater than 0"), wantStatus: http.StatusBadRequest, wantBody: "greater than 0"},
		{name: "unexpected", opErr: context.DeadlineExceeded, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{opUser: newTestUser(t, "300"), opErr: tt.opErr}
			h := newTestHandler(t, svc)

			req := httptest.NewRequest(http.MethodPost, "/api/atm/withdraw", jsonBody(t, amountRequest{Amount: "200"}))
			respRec := serveAuthenticated(h, h.Withdraw, req)

			assert.Equal(t, tt.wantStatus, respRec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, respRec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestDeposit_RequiresSession(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/atm/deposit", jsonBody(t, amountRequest{Amount: "10"}))
	h.authMiddleware.Middleware(http.HandlerFunc(h.Deposit)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPayService_UnknownService(t *testing.T) {
	svc := &stubService{opUser: newTestUser(t, "300")}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/atm/payments", jsonBody(t, paymentRequest{Service: "Gas", Amount: "10"}))
	respRec := serveAuthenticated(h, h.PayService, req)

	assert.Equal(t, http.StatusBadRequest, respRec.Code)
	assert.Empty(t, svc.paidService)
}

func TestPayService_Success(t *testing.T) {
	svc := &stubService{opUser: newTestUser(t, "300")}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/atm/payments", jsonBody(t, paymentRequest{Service: "Water", Amount: " 25 "}))
	respRec := serveAuthenticated(h, h.PayService, req)

	assert.Equal(t, http.StatusOK, respRec.Code)
	assert.Equal(t, "Water", svc.paidService)
	assert.Equal(t, "25", svc.paidAmount)
}

func TestGetServices(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	rec := httptest.NewRecorder()
	h.GetServices(rec, httptest.NewRequest(http.MethodGet, "/api/atm/services", nil))

	var got []string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, testServices, got)
}
