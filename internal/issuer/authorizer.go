package issuer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownAccount    = errors.New("unknown account")
)

// Authorizer decides whether a matched card may be charged the amount.
// A nil error is an accept; any error is a decline and its message is
// the decline reason.
type Authorizer interface {
	Authorize(card StoredCard, amount decimal.Decimal, currency string) error
}

// Account is a fixture account at the simulated issuing bank.
type Account struct {
	ID      string
	Balance decimal.Decimal
}

// BalanceAuthorizer accepts when the card's account covers the amount
// and debits it on accept, so a second authorization sees the reduced
// balance.
type BalanceAuthorizer struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

func NewBalanceAuthorizer(accounts []Account) *BalanceAuthorizer {
	balances := make(map[string]decimal.Decimal, len(accounts))
	for _, a := range accounts {
		balances[a.ID] = a.Balance
	}
	return &BalanceAuthorizer{balances: balances}
}

func (a *BalanceAuthorizer) Authorize(card StoredCard, amount decimal.Decimal, currency string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	balance, ok := a.balances[card.AccountID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, card.AccountID)
	}
	if balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.balances[card.AccountID] = balance.Sub(amount)
	return nil
}

// Balance returns the current balance for tests and the account view.
func (a *BalanceAuthorizer) Balance(accountID string) (decimal.Decimal, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.balances[accountID]
	return b, ok
}
