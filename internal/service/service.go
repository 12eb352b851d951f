// Package service реализует бизнес-логику банкомата: регистрацию, вход и операции со счётом.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/atm-system/internal/model"
	"github.com/mmeshcher/atm-system/internal/validation"
)

// Registry описывает контракт реестра клиентов, используемый сервисом.
type Registry interface {
	CreateUser(fullName, identityNumber, pin string, kind model.AccountKind, balance decimal.Decimal) (*model.User, error)
	Authenticate(accountNumber, pin string) (*model.User, error)
	FindByAccountNumber(accountNumber string) (*model.User, error)
	ExistsByIdentity(identityNumber string) bool
	HasUsers() bool
}

// Service содержит бизнес-логику банкомата.
type Service struct {
	registry Registry
	logger   *zap.Logger
}

// NewService создаёт новый сервис поверх указанного реестра.
func NewService(registry Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry: registry,
		logger:   logger,
	}
}

// Register проверяет данные клиента и открывает ему счёт.
// Проверки выполняются по порядку, возвращается первая сработавшая.
func (s *Service) Register(ctx context.Context, fullName, identityNumber, pin string, kind model.AccountKind, initialBalance string) (*model.User, error) {
	if isBlank(fullName, identityNumber, pin, initialBalance, string(kind)) {
		return nil, model.InvalidInputf("all fields are required")
	}
	if !kind.Valid() {
		return nil, model.InvalidInputf("unknown account type %q", kind)
	}
	if !validation.IsValidFullName(fullName) {
		return nil, model.InvalidInputf("name may contain only letters and spaces")
	}
	if !validation.IsValidIdentityNumber(identityNumber) {
		return nil, model.InvalidInputf("identity number may contain only digits")
	}
	if !validation.IsValidPIN(pin) {
		return nil, model.InvalidInputf("pin must be exactly 4 digits")
	}

	// Повторная проверка выполняется в реестре под блокировкой вместе с добавлением.
	if s.registry.ExistsByIdentity(identityNumber) {
		return nil, model.InvalidInputf("a user with this identity number already exists, each person may hold only one account")
	}

	balance, err := validation.ParseAmount(initialBalance)
	if err != nil {
		return nil, model.InvalidInputf("initial balance must be a valid number")
	}
	if balance.IsNegative() {
		return nil, model.InvalidInputf("initial balance must not be negative")
	}

	u, err := s.registry.CreateUser(fullName, identityNumber, pin, kind, balance)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		zap.String("account", u.Account().Number()),
		zap.String("kind", string(kind)),
	)

	return u, nil
}

// Authenticate проверяет номер счёта и PIN.
func (s *Service) Authenticate(ctx context.Context, accountNumber, pin string) (*model.User, error) {
	u, err := s.registry.Authenticate(accountNumber, pin)
	if err != nil {
		if errors.Is(err, model.ErrAuthenticationFailed) {
			s.logger.Warn("authentication failed")
		}
		return nil, err
	}
	return u, nil
}

// GetUser возвращает клиента по номеру счёта.
func (s *Service) GetUser(ctx context.Context, accountNumber string) (*model.User, error) {
	return s.registry.FindByAccountNumber(accountNumber)
}

// HasUsers сообщает, зарегистрирован ли хотя бы один клиент.
func (s *Service) HasUsers(ctx context.Context) bool {
	return s.registry.HasUsers()
}

// Deposit зачисляет сумму на счёт.
func (s *Service) Deposit(ctx context.Context, accountNumber, amount string) (*model.User, error) {
	u, sum, err := s.prepare(ctx, accountNumber, amount)
	if err != nil {
		return nil, err
	}

	if err := u.Account().Deposit(sum); err != nil {
		return nil, err
	}

	s.logger.Info("deposit", zap.String("account", accountNumber), zap.String("amount", sum.String()))
	return u, nil
}

// Withdraw списывает сумму со счёта.
func (s *Service) Withdraw(ctx context.Context, accountNumber, amount string) (*model.User, error) {
	u, sum, err := s.prepare(ctx, accountNumber, amount)
	if err != nil {
		return nil, err
	}

	if err := u.Account().Withdraw(sum); err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal", zap.String("account", accountNumber), zap.String("amount", sum.String()))
	return u, nil
}

// PayService оплачивает услугу со счёта.
func (s *Service) PayService(ctx context.Context, accountNumber, serviceName, amount string) (*model.User, error) {
	u, sum, err := s.prepare(ctx, accountNumber, amount)
	if err != nil {
		return nil, err
	}

	if err := u.Account().PayService(sum, serviceName); err != nil {
		return nil, err
	}

	s.logger.Info("service payment",
		zap.String("account", accountNumber),
		zap.String("service", serviceName),
		zap.String("amount", sum.String()),
	)
	return u, nil
}

func isBlank(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}

func (s *Service) prepare(ctx context.Context, accountNumber, amount string) (*model.User, decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return nil, decimal.Zero, err
	}

	u, err := s.registry.FindByAccountNumber(accountNumber)
	if err != nil {
		return nil, decimal.Zero, err
	}

	sum, err := validation.ParseAmount(amount)
	if err != nil {
		if errors.Is(err, validation.ErrEmptyAmount) {
			return nil, decimal.Zero, model.InvalidInputf("amount is required")
		}
		return nil, decimal.Zero, model.InvalidInputf("invalid amount")
	}

	return u, sum, nil
}
