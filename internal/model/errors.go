package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidInput возвращается при некорректных или недопустимых входных данных.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientFunds возвращается, если сумма списания превышает баланс.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAuthenticationFailed возвращается при неверной паре номер счёта / PIN.
	// Сообщение не раскрывает, какое из полей неверно.
	ErrAuthenticationFailed = errors.New("invalid account number or pin")
)

// InvalidInputf создаёт ошибку ErrInvalidInput с пояснением.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

// InsufficientFundsError содержит баланс на момент отказа в списании.
type InsufficientFundsError struct {
	Balance decimal.Decimal
	Service string
}

func (e *InsufficientFundsError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("insufficient funds to pay %s, balance: %s", e.Service, FormatAmount(e.Balance))
	}
	return fmt.Sprintf("insufficient funds, balance: %s", FormatAmount(e.Balance))
}

// Is позволяет сравнивать ошибку с ErrInsufficientFunds через errors.Is.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// BalanceDisplay возвращает баланс в формате для показа оператору.
func (e *InsufficientFundsError) BalanceDisplay() string {
	return FormatAmount(e.Balance)
}
