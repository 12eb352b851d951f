// Package handler содержит HTTP-обработчики API банкомата.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/atm-system/internal/middleware"
	"github.com/mmeshcher/atm-system/internal/model"
	"github.com/mmeshcher/atm-system/internal/repository"
	"github.com/mmeshcher/atm-system/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Register(ctx context.Context, fullName, identityNumber, pin string, kind model.AccountKind, initialBalance string) (*model.User, error)
	Authenticate(ctx context.Context, accountNumber, pin string) (*model.User, error)
	GetUser(ctx context.Context, accountNumber string) (*model.User, error)
	Deposit(ctx context.Context, accountNumber, amount string) (*model.User, error)
	Withdraw(ctx context.Context, accountNumber, amount string) (*model.User, error)
	PayService(ctx context.Context, accountNumber, serviceName, amount string) (*model.User, error)
}

// Handler реализует HTTP-обработчики API банкомата.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	services       []string
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
// services задаёт перечень услуг, которые можно оплатить.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, services []string) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		services:       services,
	}
}

type registerRequest struct {
	FullName       string `json:"fullName"`
	IdentityNumber string `json:"identityNumber"`
	PIN            string `json:"pin"`
	AccountType    string `json:"accountType"`
	InitialBalance string `json:"initialBalance"`
}

type credentialsRequest struct {
	AccountNumber string `json:"accountNumber"`
	PIN           string `json:"pin"`
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type paymentRequest struct {
	Service string `json:"service"`
	Amount  string `json:"amount"`
}

type accountResponse struct {
	FullName      string `json:"fullName"`
	AccountNumber string `json:"accountNumber"`
	AccountType   string `json:"accountType"`
	AccountLabel  string `json:"accountLabel"`
	Balance       string `json:"balance"`
}

type balanceResponse struct {
	Balance string `json:"balance"`
}

func newAccountResponse(u *model.User) accountResponse {
	acc := u.Account()
	return accountResponse{
		FullName:      u.FullName(),
		AccountNumber: acc.Number(),
		AccountType:   string(acc.Kind()),
		AccountLabel:  acc.Kind().Label(),
		Balance:       acc.BalanceDisplay(),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

// writeError переводит ошибки сервиса в HTTP-статусы. Текст ответа предназначен оператору.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, model.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, model.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, model.ErrAuthenticationFailed):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, repository.ErrUserNotFound):
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	default:
		h.logger.Error(op+" error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Register открывает новый счёт. Вход в систему после регистрации не выполняется.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var kind model.AccountKind
	if t := strings.TrimSpace(req.AccountType); t != "" {
		k, ok := model.ParseAccountKind(t)
		if !ok {
			http.Error(w, "invalid input: unknown account type", http.StatusBadRequest)
			return
		}
		kind = k
	}

	u, err := h.service.Register(r.Context(),
		strings.TrimSpace(req.FullName),
		strings.TrimSpace(req.IdentityNumber),
		strings.TrimSpace(req.PIN),
		kind,
		strings.TrimSpace(req.InitialBalance),
	)
	if err != nil {
		h.writeError(w, "register", err)
		return
	}

	h.writeJSON(w, newAccountResponse(u))
}

// Login проверяет номер счёта и PIN и открывает сессию.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	number := strings.TrimSpace(req.AccountNumber)
	pin := strings.TrimSpace(req.PIN)
	if number == "" || pin == "" {
		http.Error(w, "invalid input: account number and pin are required", http.StatusBadRequest)
		return
	}
	// Заведомо несуществующие номер или PIN отклоняются без поиска по реестру.
	if !validation.IsValidAccountNumber(number) || !validation.IsValidPIN(pin) {
		h.writeError(w, "login", model.ErrAuthenticationFailed)
		return
	}

	u, err := h.service.Authenticate(r.Context(), number, pin)
	if err != nil {
		h.writeError(w, "login", err)
		return
	}

	h.authMiddleware.SetAuthCookie(w, u.Account().Number())
	h.writeJSON(w, newAccountResponse(u))
}

// Logout завершает сессию.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMiddleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// GetServices возвращает перечень услуг, доступных для оплаты.
func (h *Handler) GetServices(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.services)
}

// GetAccount возвращает сведения о счёте текущего клиента.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	number, ok := middleware.GetAccountNumberFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	u, err := h.service.GetUser(r.Context(), number)
	if err != nil {
		h.writeError(w, "get account", err)
		return
	}

	h.writeJSON(w, newAccountResponse(u))
}

// GetBalance возвращает баланс текущего клиента.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	number, ok := middleware.GetAccountNumberFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	u, err := h.service.GetUser(r.Context(), number)
	if err != nil {
		h.writeError(w, "get balance", err)
		return
	}

	h.writeJSON(w, balanceResponse{Balance: u.Account().BalanceDisplay()})
}

// Deposit зачисляет сумму на счёт текущего клиента.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	number, ok := middleware.GetAccountNumberFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	u, err := h.service.Deposit(r.Context(), number, strings.TrimSpace(req.Amount))
	if err != nil {
		h.writeError(w, "deposit", err)
		return
	}

	h.writeJSON(w, newAccountResponse(u))
}

// Withdraw списывает сумму со счёта текущего клиента.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	number, ok := middleware.GetAccountNumberFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	u, err := h.service.Withdraw(r.Context(), number, strings.TrimSpace(req.Amount))
	if err != nil {
		h.writeError(w, "withdraw", err)
		return
	}

	h.writeJSON(w, newAccountResponse(u))
}

// PayService оплачивает услугу из перечня со счёта текущего клиента.
func (h *Handler) PayService(w http.ResponseWriter, r *http.Request) {
	number, ok := middleware.GetAccountNumberFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if !slices.Contains(h.services, req.Service) {
		http.Error(w, "invalid input: unknown service", http.StatusBadRequest)
		return
	}

	u, err := h.service.PayService(r.Context(), number, req.Service, strings.TrimSpace(req.Amount))
	if err != nil {
		h.writeError(w, "pay service", err)
		return
	}

	h.writeJSON(w, newAccountResponse(u))
}
