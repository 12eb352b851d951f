package model

import (
	"fmt"
	"sync"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const (
	displayFraction = 2
	// maxIntegerDigits ограничивает целую часть сумм и балансов.
	maxIntegerDigits = 15
)

// MaxAmount — наибольшая допустимая сумма операции и наибольший баланс счёта.
// В копейках она помещается в int64.
var MaxAmount = decimal.New(1, maxIntegerDigits).Sub(decimal.New(1, -displayFraction))

var amountFormatter = money.NewFormatter(displayFraction, ".", ",", "", "1")

// FormatAmount форматирует сумму с разделителями тысяч и двумя знаками после точки.
// Сумма не должна превышать MaxAmount по модулю.
func FormatAmount(amount decimal.Decimal) string {
	cents := amount.RoundBank(displayFraction).Shift(displayFraction).IntPart()
	return amountFormatter.Format(cents)
}

// Account хранит номер, PIN и баланс счёта. Баланс никогда не бывает отрицательным
// и меняется только через Deposit, Withdraw и PayService.
type Account struct {
	number string
	pin    string
	kind   AccountKind

	mu      sync.Mutex
	balance decimal.Decimal
}

// NewAccount создаёт счёт указанного вида.
func NewAccount(number, pin string, kind AccountKind, balance decimal.Decimal) (*Account, error) {
	if !isDigits(number, 6) {
		return nil, fmt.Errorf("account number must be 6 digits, got %q", number)
	}
	if !isDigits(pin, 4) {
		return nil, fmt.Errorf("pin must be 4 digits")
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown account kind %q", kind)
	}
	if balance.IsNegative() {
		return nil, fmt.Errorf("initial balance must not be negative")
	}
	if tooPrecise(balance) || exceedsMax(balance) {
		return nil, fmt.Errorf("initial balance must have at most %d decimal places and not exceed %s",
			displayFraction, FormatAmount(MaxAmount))
	}

	return &Account{
		number:  number,
		pin:     pin,
		kind:    kind,
		balance: balance,
	}, nil
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// tooPrecise сообщает, что в сумме больше двух знаков после точки.
func tooPrecise(amount decimal.Decimal) bool {
	return amount.Exponent() < -displayFraction
}

// exceedsMax сначала грубо отсекает по числу цифр, затем сравнивает точно.
// Вызывать после tooPrecise.
func exceedsMax(amount decimal.Decimal) bool {
	if int64(amount.NumDigits())+int64(amount.Exponent()) > maxIntegerDigits+1 {
		return true
	}
	return amount.Abs().GreaterThan(MaxAmount)
}

// checkAmount проверяет сумму операции: положительная, не точнее копейки.
func checkAmount(amount decimal.Decimal, op string) error {
	if !amount.IsPositive() {
		return InvalidInputf("%s amount must be greater than 0", op)
	}
	if tooPrecise(amount) {
		return InvalidInputf("%s amount must have at most %d decimal places", op, displayFraction)
	}
	return nil
}

// Number возвращает номер счёта.
func (a *Account) Number() string { return a.number }

// PIN возвращает PIN счёта.
func (a *Account) PIN() string { return a.pin }

// Kind возвращает вид счёта.
func (a *Account) Kind() AccountKind { return a.kind }

// Balance возвращает текущий баланс.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// BalanceDisplay возвращает баланс в виде "1,234.56".
func (a *Account) BalanceDisplay() string {
	return FormatAmount(a.Balance())
}

// Deposit зачисляет положительную сумму на счёт. Баланс не может превысить MaxAmount.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if err := checkAmount(amount, "deposit"); err != nil {
		return err
	}
	if exceedsMax(amount) {
		return InvalidInputf("deposit amount must not exceed %s", FormatAmount(MaxAmount))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.balance.Add(amount)
	if next.GreaterThan(MaxAmount) {
		return InvalidInputf("balance must not exceed %s", FormatAmount(MaxAmount))
	}

	a.balance = next
	return nil
}

// Withdraw списывает сумму, не превышающую баланс.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if err := checkAmount(amount, "withdrawal"); err != nil {
		return err
	}
	return a.debit(amount, "")
}

// PayService оплачивает услугу со счёта. Проверки те же, что у Withdraw,
// название услуги попадает только в текст ошибки.
func (a *Account) PayService(amount decimal.Decimal, service string) error {
	if service == "" {
		return InvalidInputf("service name is required")
	}
	if err := checkAmount(amount, "payment"); err != nil {
		return err
	}
	return a.debit(amount, service)
}

func (a *Account) debit(amount decimal.Decimal, service string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if exceedsMax(amount) || amount.GreaterThan(a.balance) {
		return &InsufficientFundsError{Balance: a.balance, Service: service}
	}

	a.balance = a.balance.Sub(amount)
	return nil
}
