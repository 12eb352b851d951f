// Package repository содержит реестр клиентов и счетов, хранимый в памяти процесса.
package repository

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/atm-system/internal/model"
)

const (
	minAccountNumber = 100000
	maxAccountNumber = 999999

	// DefaultMaxAttempts ограничивает число попыток подобрать свободный номер счёта.
	DefaultMaxAttempts = 1000
)

var (
	// ErrIdentityExists возвращается при попытке зарегистрировать уже известный номер документа.
	ErrIdentityExists = fmt.Errorf("%w: a user with this identity number already exists, each person may hold only one account", model.ErrInvalidInput)
	// ErrUserNotFound возвращается, если счёт с указанным номером не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountNumbersExhausted возвращается, если за отведённое число попыток не найден свободный номер.
	ErrAccountNumbersExhausted = errors.New("no free account number found")
)

// NumberSource возвращает случайное число из диапазона [0, n).
type NumberSource func(n int64) (int64, error)

func cryptoSource(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

// Option настраивает Registry.
type Option func(*Registry)

// WithNumberSource задаёт источник случайных чисел для генерации номеров счетов.
func WithNumberSource(src NumberSource) Option {
	return func(r *Registry) {
		if src != nil {
			r.random = src
		}
	}
}

// WithMaxAttempts задаёт предельное число попыток генерации номера счёта.
// Неположительное значение оставляет DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// Registry хранит клиентов в порядке регистрации. Номера документов
// и номера счетов в реестре попарно различны.
type Registry struct {
	mu    sync.RWMutex
	users []*model.User

	random      NumberSource
	maxAttempts int
}

// NewRegistry создаёт пустой реестр.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		random:      cryptoSource,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateUser генерирует уникальный номер счёта, создаёт счёт и добавляет клиента в реестр.
// Проверка номера документа, генерация номера и добавление выполняются под одной блокировкой.
func (r *Registry) CreateUser(fullName, identityNumber, pin string, kind model.AccountKind, balance decimal.Decimal) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.existsByIdentity(identityNumber) {
		return nil, ErrIdentityExists
	}

	number, err := r.generateAccountNumber()
	if err != nil {
		return nil, err
	}

	account, err := model.NewAccount(number, pin, kind, balance)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	u := model.NewUser(fullName, identityNumber, account)
	r.users = append(r.users, u)

	return u, nil
}

// generateAccountNumber вызывается под r.mu.
func (r *Registry) generateAccountNumber() (string, error) {
	span := int64(maxAccountNumber - minAccountNumber + 1)

	for i := 0; i < r.maxAttempts; i++ {
		v, err := r.random(span)
		if err != nil {
			return "", fmt.Errorf("generate account number: %w", err)
		}
		if v < 0 || v >= span {
			return "", fmt.Errorf("generate account number: value %d out of range", v)
		}

		candidate := strconv.FormatInt(minAccountNumber+v, 10)
		if r.findByAccountNumber(candidate) == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrAccountNumbersExhausted, r.maxAttempts)
}

// Authenticate возвращает клиента, у счёта которого совпадают и номер, и PIN.
func (r *Registry) Authenticate(accountNumber, pin string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		acc := u.Account()
		if acc.Number() == accountNumber && subtle.ConstantTimeCompare([]byte(acc.PIN()), []byte(pin)) == 1 {
			return u, nil
		}
	}

	return nil, model.ErrAuthenticationFailed
}

// FindByAccountNumber возвращает клиента по номеру счёта.
func (r *Registry) FindByAccountNumber(accountNumber string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u := r.findByAccountNumber(accountNumber); u != nil {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (r *Registry) findByAccountNumber(accountNumber string) *model.User {
	for _, u := range r.users {
		if u.Account().Number() == accountNumber {
			return u
		}
	}
	return nil
}

// ExistsByIdentity сообщает, зарегистрирован ли клиент с таким номером документа.
func (r *Registry) ExistsByIdentity(identityNumber string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.existsByIdentity(identityNumber)
}

func (r *Registry) existsByIdentity(identityNumber string) bool {
	for _, u := range r.users {
		if u.IdentityNumber() == identityNumber {
			return true
		}
	}
	return false
}

// HasUsers сообщает, есть ли в реестре хотя бы один клиент.
func (r *Registry) HasUsers() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users) > 0
}

// Users возвращает копию списка клиентов в порядке регистрации.
func (r *Registry) Users() []*model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*model.User, len(r.users))
	copy(res, r.users)
	return res
}
