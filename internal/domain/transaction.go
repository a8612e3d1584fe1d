package domain

import (
	"time"
)

// TransactionStatus is the lifecycle state of a recorded transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

var validTransactionStatuses = map[TransactionStatus]bool{
	TransactionStatusPending:   true,
	TransactionStatusCompleted: true,
	TransactionStatusFailed:    true,
}

// IsValid checks if the status is known.
func (s TransactionStatus) IsValid() bool {
	return validTransactionStatuses[s]
}

// TransactionKind is derived from which side of the transaction is set.
type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "deposit"
	TransactionKindWithdrawal TransactionKind = "withdrawal"
	TransactionKindTransfer   TransactionKind = "transfer"
)

// Transaction is an immutable record of one balance movement.
// A nil SourceAccountID means money entered the system (deposit),
// a nil DestAccountID means it left (withdrawal).
type Transaction struct {
	ID              string
	SourceAccountID *string
	DestAccountID   *string
	Amount          Money
	Status          TransactionStatus
	UserID          string
	CreatedAt       time.Time
}

// NewTransaction builds and validates a transaction record.
func NewTransaction(id string, source, dest *string, amount Money, status TransactionStatus, userID string, now time.Time) (*Transaction, error) {
	t := &Transaction{
		ID:              id,
		SourceAccountID: source,
		DestAccountID:   dest,
		Amount:          amount,
		Status:          status,
		UserID:          userID,
		CreatedAt:       now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the record invariants.
func (t *Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.SourceAccountID == nil && t.DestAccountID == nil {
		return ErrInvalidTransaction
	}
	if t.SourceAccountID != nil && t.DestAccountID != nil && *t.SourceAccountID == *t.DestAccountID {
		return ErrSameAccount
	}
	if !t.Status.IsValid() {
		return ErrInvalidTransaction
	}
	return nil
}

// Kind reports whether the transaction is a deposit, withdrawal or transfer.
func (t *Transaction) Kind() TransactionKind {
	switch {
	case t.SourceAccountID == nil:
		return TransactionKindDeposit
	case t.DestAccountID == nil:
		return TransactionKindWithdrawal
	default:
		return TransactionKindTransfer
	}
}

// Involves reports whether accountID is the source or destination.
func (t *Transaction) Involves(accountID string) bool {
	return (t.SourceAccountID != nil && *t.SourceAccountID == accountID) ||
		(t.DestAccountID != nil && *t.DestAccountID == accountID)
}
