package dto

import (
	"testing"
	"time"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/usecase"
)

func TestAccountFromDomain(t *testing.T) {
	now := time.Now()
	account := &domain.Account{
		ID:        "acc-1",
		OwnerID:   "user-1",
		Type:      domain.AccountTypeCurrent,
		Balance:   12345,
		CreatedAt: now,
		UpdatedAt: now,
	}

	resp := AccountFromDomain(account)
	if resp.ID != "acc-1" || resp.BalancePence != 12345 || resp.Balance != "123.45" {
		t.Fatalf("unexpected account response: %+v", resp)
	}

	list := AccountsFromDomain([]*domain.Account{account})
	if len(list) != 1 || list[0].OwnerID != "user-1" {
		t.Fatalf("AccountsFromDomain returned %+v", list)
	}
}

func TestTransactionFromDomain(t *testing.T) {
	from := "acc-a"
	tx := &domain.Transaction{
		ID:              "tx-1",
		SourceAccountID: &from,
		Amount:          5,
		Status:          domain.TransactionStatusCompleted,
		UserID:          "user-1",
	}

	resp := TransactionFromDomain(tx)
	if resp.Kind != domain.TransactionKindWithdrawal {
		t.Fatalf("expected withdrawal, got %s", resp.Kind)
	}
	if resp.Amount != "0.05" || resp.ToAccountID != nil || *resp.FromAccountID != "acc-a" {
		t.Fatalf("unexpected transaction response: %+v", resp)
	}
}

func TestOperationFromUseCase(t *testing.T) {
	to := "acc-a"
	res := &usecase.Result{
		Transaction: &domain.Transaction{ID: "tx-1", DestAccountID: &to, Amount: 5000, Status: domain.TransactionStatusCompleted},
		Balance:     15000,
	}

	resp := OperationFromUseCase(res)
	if resp.TransactionID != "tx-1" || resp.BalancePence != 15000 || resp.Balance != "150.00" {
		t.Fatalf("unexpected operation response: %+v", resp)
	}
	want := "Successfully deposited 50.00, your new balance is 150.00"
	if resp.Message != want {
		t.Fatalf("message = %q, want %q", resp.Message, want)
	}
}

func TestConsistencyFromDomain(t *testing.T) {
	report := &domain.ConsistencyReport{
		Totals: domain.LedgerTotals{TotalBalance: 100, TotalDeposits: 300, TotalWithdrawals: 200, AccountCount: 2},
		Discrepancies: []domain.AccountDiscrepancy{
			{AccountID: "acc-a", RecordedBalance: 100, ComputedBalance: 50},
		},
	}

	resp := ConsistencyFromDomain(report)
	if resp.Consistent || resp.TotalDeposits != "3.00" || resp.AccountCount != 2 {
		t.Fatalf("unexpected consistency response: %+v", resp)
	}
	if len(resp.Discrepancies) != 1 || resp.Discrepancies[0].ComputedBalance != "0.50" {
		t.Fatalf("unexpected discrepancies: %+v", resp.Discrepancies)
	}
}

func TestUserFromDomainOmitsPassword(t *testing.T) {
	user := &domain.User{ID: "u1", Username: "alice", HashedPassword: "secret", Role: domain.RoleUser, Active: true}

	resp := UserFromDomain(user)
	if resp.Username != "alice" || resp.Role != domain.RoleUser || !resp.Active {
		t.Fatalf("unexpected user response: %+v", resp)
	}
}
