package domain

import (
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name        string
		source      *string
		dest        *string
		amount      Money
		status      TransactionStatus
		expectError error
	}{
		{
			name:   "valid transfer",
			source: strPtr("account-1"),
			dest:   strPtr("account-2"),
			amount: 100,
			status: TransactionStatusCompleted,
		},
		{
			name:   "valid deposit",
			dest:   strPtr("account-1"),
			amount: 100,
			status: TransactionStatusCompleted,
		},
		{
			name:   "valid withdrawal",
			source: strPtr("account-1"),
			amount: 100,
			status: TransactionStatusPending,
		},
		{
			name:        "both sides missing",
			amount:      100,
			status:      TransactionStatusCompleted,
			expectError: ErrInvalidTransaction,
		},
		{
			name:        "same account",
			source:      strPtr("account-1"),
			dest:        strPtr("account-1"),
			amount:      100,
			status:      TransactionStatusCompleted,
			expectError: ErrSameAccount,
		},
		{
			name:        "zero amount",
			dest:        strPtr("account-1"),
			amount:      0,
			status:      TransactionStatusCompleted,
			expectError: ErrInvalidAmount,
		},
		{
			name:        "negative amount",
			dest:        strPtr("account-1"),
			amount:      -100,
			status:      TransactionStatusCompleted,
			expectError: ErrInvalidAmount,
		},
		{
			name:        "unknown status",
			dest:        strPtr("account-1"),
			amount:      100,
			status:      TransactionStatus("reversed"),
			expectError: ErrInvalidTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{
				SourceAccountID: tt.source,
				DestAccountID:   tt.dest,
				Amount:          tt.amount,
				Status:          tt.status,
			}

			err := tx.Validate()

			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestTransaction_Kind(t *testing.T) {
	deposit := &Transaction{DestAccountID: strPtr("a")}
	withdrawal := &Transaction{SourceAccountID: strPtr("a")}
	transfer := &Transaction{SourceAccountID: strPtr("a"), DestAccountID: strPtr("b")}

	if deposit.Kind() != TransactionKindDeposit {
		t.Errorf("expected deposit, got %s", deposit.Kind())
	}
	if withdrawal.Kind() != TransactionKindWithdrawal {
		t.Errorf("expected withdrawal, got %s", withdrawal.Kind())
	}
	if transfer.Kind() != TransactionKindTransfer {
		t.Errorf("expected transfer, got %s", transfer.Kind())
	}
}

func TestTransaction_Involves(t *testing.T) {
	tx := &Transaction{SourceAccountID: strPtr("a"), DestAccountID: strPtr("b")}

	if !tx.Involves("a") || !tx.Involves("b") {
		t.Error("expected both sides to be involved")
	}
	if tx.Involves("c") {
		t.Error("unrelated account reported as involved")
	}
}

func TestNewTransactionCompletedEvent(t *testing.T) {
	now := time.Now()
	tx, err := NewTransaction("tx-1", nil, strPtr("acc-1"), 5000, TransactionStatusCompleted, "user-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ev := NewTransactionCompletedEvent("ev-1", tx)

	if ev.EventType != EventTypeTransactionCompleted || ev.AggregateID != "tx-1" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.Payload["kind"] != "deposit" || ev.Payload["amount"] != "50.00" {
		t.Errorf("unexpected payload: %+v", ev.Payload)
	}
	if _, ok := ev.Payload["source_account_id"]; ok {
		t.Error("deposit payload must not carry a source account")
	}
}
