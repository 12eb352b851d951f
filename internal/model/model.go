// Package model содержит доменные сущности банкомата: счета, их виды и владельцев.
package model

import "strings"

// AccountKind описывает вид счёта. Виды пока ведут себя одинаково.
type AccountKind string

const (
	AccountKindSavings  AccountKind = "savings"
	AccountKindChecking AccountKind = "checking"
)

// ParseAccountKind разбирает вид счёта без учёта регистра.
func ParseAccountKind(s string) (AccountKind, bool) {
	switch AccountKind(strings.ToLower(strings.TrimSpace(s))) {
	case AccountKindSavings:
		return AccountKindSavings, true
	case AccountKindChecking:
		return AccountKindChecking, true
	}
	return "", false
}

// Valid сообщает, является ли значение известным видом счёта.
func (k AccountKind) Valid() bool {
	return k == AccountKindSavings || k == AccountKindChecking
}

// Label возвращает название вида счёта для показа оператору.
func (k AccountKind) Label() string {
	switch k {
	case AccountKindSavings:
		return "Savings account"
	case AccountKindChecking:
		return "Checking account"
	}
	return "Unknown account"
}

// User связывает личность клиента с его единственным счётом.
// После создания поля не меняются.
type User struct {
	fullName       string
	identityNumber string
	account        *Account
}

// NewUser создаёт владельца счёта.
func NewUser(fullName, identityNumber string, account *Account) *User {
	return &User{
		fullName:       fullName,
		identityNumber: identityNumber,
		account:        account,
	}
}

// FullName возвращает имя клиента.
func (u *User) FullName() string { return u.fullName }

// IdentityNumber возвращает номер документа клиента.
func (u *User) IdentityNumber() string { return u.identityNumber }

// Account возвращает счёт клиента.
func (u *User) Account() *Account { return u.account }
