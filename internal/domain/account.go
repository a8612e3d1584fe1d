package domain

import (
	"time"
)

// AccountType is a closed set of account kinds.
type AccountType string

const (
	AccountTypeCurrent AccountType = "current"
	AccountTypeSavings AccountType = "savings"
)

var validAccountTypes = map[AccountType]bool{
	AccountTypeCurrent: true,
	AccountTypeSavings: true,
}

// IsValid checks if the account type is known.
func (t AccountType) IsValid() bool {
	return validAccountTypes[t]
}

// ParseAccountType returns the default type for an empty string.
func ParseAccountType(s string) (AccountType, error) {
	if s == "" {
		return AccountTypeCurrent, nil
	}
	t := AccountType(s)
	if !t.IsValid() {
		return "", ErrInvalidAccountType
	}
	return t, nil
}

// Account holds the balance of exactly one user.
type Account struct {
	ID        string
	OwnerID   string
	Balance   Money
	Type      AccountType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount returns a zero-balance account for owner.
func NewAccount(id, ownerID string, accountType AccountType, now time.Time) (*Account, error) {
	if !accountType.IsValid() {
		return nil, ErrInvalidAccountType
	}
	return &Account{
		ID:        id,
		OwnerID:   ownerID,
		Balance:   0,
		Type:      accountType,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount Money) error {
	if a.Balance < amount {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDelta applies a signed change to the balance and returns it.
// The account is left untouched when the result would be negative.
func (a *Account) ApplyDelta(delta Money) (Money, error) {
	newBalance, err := a.Balance.Add(delta)
	if err != nil {
		return a.Balance, err
	}
	if newBalance < 0 {
		return a.Balance, ErrInsufficientFunds
	}
	a.Balance = newBalance
	return newBalance, nil
}

// ApplyDebit subtracts amount from the balance.
func (a *Account) ApplyDebit(amount Money) (Money, error) {
	if err := a.ValidateDebit(amount); err != nil {
		return a.Balance, err
	}
	return a.ApplyDelta(-amount)
}

// ApplyCredit adds amount to the balance.
func (a *Account) ApplyCredit(amount Money) (Money, error) {
	return a.ApplyDelta(amount)
}
