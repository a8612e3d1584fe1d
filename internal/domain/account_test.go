package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestAccount_ValidateDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     Money
		debitAmount Money
		expectError bool
	}{
		{
			name:        "debit more than balance",
			balance:     100,
			debitAmount: 150,
			expectError: true,
		},
		{
			name:        "debit exact balance",
			balance:     100,
			debitAmount: 100,
			expectError: false,
		},
		{
			name:        "debit less than balance",
			balance:     100,
			debitAmount: 50,
			expectError: false,
		},
		{
			name:        "debit from empty account",
			balance:     0,
			debitAmount: 1,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance}

			err := acc.ValidateDebit(tt.debitAmount)

			if tt.expectError && !errors.Is(err, ErrInsufficientFunds) {
				t.Errorf("expected ErrInsufficientFunds, got %v", err)
			}

			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAccount_ApplyDebit(t *testing.T) {
	acc := &Account{Balance: 100}
	newBalance, err := acc.ApplyDebit(30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if newBalance != 70 || acc.Balance != 70 {
		t.Errorf("expected 70, got %d (account %d)", newBalance, acc.Balance)
	}
}

func TestAccount_ApplyDebit_InsufficientLeavesBalance(t *testing.T) {
	acc := &Account{Balance: 50}
	if _, err := acc.ApplyDebit(100); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if acc.Balance != 50 {
		t.Errorf("balance changed to %d", acc.Balance)
	}
}

func TestAccount_ApplyCredit(t *testing.T) {
	acc := &Account{Balance: 100}
	newBalance, err := acc.ApplyCredit(50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if newBalance != 150 {
		t.Errorf("expected 150, got %d", newBalance)
	}
}

func TestAccount_ApplyCredit_Overflow(t *testing.T) {
	acc := &Account{Balance: math.MaxInt64 - 10}
	if _, err := acc.ApplyCredit(11); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}

	if acc.Balance != math.MaxInt64-10 {
		t.Errorf("balance changed on overflow")
	}
}

func TestAccount_ApplyDelta(t *testing.T) {
	acc := &Account{Balance: 10}
	if _, err := acc.ApplyDelta(-11); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	got, err := acc.ApplyDelta(-10)
	if err != nil || got != 0 {
		t.Fatalf("expected 0 balance, got %d (%v)", got, err)
	}
}

func TestNewAccount(t *testing.T) {
	now := time.Now()

	acc, err := NewAccount("acc-1", "user-1", AccountTypeCurrent, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acc.Balance != 0 || acc.OwnerID != "user-1" || !acc.CreatedAt.Equal(now) {
		t.Errorf("unexpected account: %+v", acc)
	}

	if _, err := NewAccount("acc-2", "user-1", AccountType("loan"), now); !errors.Is(err, ErrInvalidAccountType) {
		t.Errorf("expected ErrInvalidAccountType, got %v", err)
	}
}

func TestParseAccountType(t *testing.T) {
	tests := []struct {
		in      string
		want    AccountType
		wantErr bool
	}{
		{in: "", want: AccountTypeCurrent},
		{in: "current", want: AccountTypeCurrent},
		{in: "savings", want: AccountTypeSavings},
		{in: "Savings", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseAccountType(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAccountType) {
				t.Errorf("ParseAccountType(%q): expected error, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseAccountType(%q) = %q, %v", tt.in, got, err)
		}
	}
}
