// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	fullNamePattern       = regexp.MustCompile(`^[A-Za-zÀ-ÿÑñ ]+$`)
	identityNumberPattern = regexp.MustCompile(`^\d+$`)
	pinPattern            = regexp.MustCompile(`^\d{4}$`)
	accountNumberPattern  = regexp.MustCompile(`^\d{6}$`)
	// Не больше 15 цифр целой части и 2 знаков после точки, без экспоненты.
	amountPattern         = regexp.MustCompile(`^[+-]?\d{1,15}(\.\d{1,2})?$`)
)

// ErrEmptyAmount возвращается, если сумма не указана.
var ErrEmptyAmount = errors.New("amount is required")

// ErrMalformedAmount возвращается, если сумма не записана как десятичное число
// с точностью до копейки.
var ErrMalformedAmount = errors.New("amount is not a valid number")

// IsValidFullName проверяет, что имя состоит только из букв (включая латинские с диакритикой) и пробелов.
func IsValidFullName(name string) bool {
	return fullNamePattern.MatchString(name)
}

// IsValidIdentityNumber проверяет, что номер документа состоит только из цифр.
func IsValidIdentityNumber(id string) bool {
	return identityNumberPattern.MatchString(id)
}

// IsValidPIN проверяет, что PIN состоит ровно из 4 цифр.
func IsValidPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}

// IsValidAccountNumber проверяет, что номер счёта состоит ровно из 6 цифр.
func IsValidAccountNumber(number string) bool {
	return accountNumberPattern.MatchString(number)
}

// ParseAmount разбирает денежную сумму вида "1234.56". Знак не проверяется.
func ParseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	if !amountPattern.MatchString(s) {
		return decimal.Zero, ErrMalformedAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}

	return d, nil
}
