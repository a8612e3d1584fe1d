package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/iho/minibank/internal/domain"
)

type fakeLedgerRepository struct {
	totals        domain.LedgerTotals
	discrepancies []domain.AccountDiscrepancy
	err           error
}

func (f *fakeLedgerRepository) Totals(ctx context.Context) (domain.LedgerTotals, error) {
	return f.totals, f.err
}

func (f *fakeLedgerRepository) AccountDiscrepancies(ctx context.Context) ([]domain.AccountDiscrepancy, error) {
	return f.discrepancies, f.err
}

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	tests := []struct {
		name        string
		repo        *fakeLedgerRepository
		want        bool
		expectedErr error
	}{
		{
			name: "happy path balanced ledger",
			repo: &fakeLedgerRepository{
				totals: domain.LedgerTotals{TotalBalance: 700, TotalDeposits: 1000, TotalWithdrawals: 300},
			},
			want: true,
		},
		{
			name: "empty ledger",
			repo: &fakeLedgerRepository{},
			want: true,
		},
		{
			name:        "repo error surfaces",
			repo:        &fakeLedgerRepository{err: errors.New("db down")},
			expectedErr: errors.New("db down"),
		},
		{
			name: "money created from nothing",
			repo: &fakeLedgerRepository{
				totals: domain.LedgerTotals{TotalBalance: 701, TotalDeposits: 1000, TotalWithdrawals: 300},
			},
			expectedErr: domain.ErrInconsistentLedger,
		},
		{
			name: "account drifted from its history",
			repo: &fakeLedgerRepository{
				totals:        domain.LedgerTotals{TotalBalance: 700, TotalDeposits: 1000, TotalWithdrawals: 300},
				discrepancies: []domain.AccountDiscrepancy{{AccountID: "acc-1", RecordedBalance: 10, ComputedBalance: 0}},
			},
			expectedErr: domain.ErrInconsistentLedger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewLedgerUseCase(tt.repo, nil)
			report, err := uc.CheckConsistency(context.Background())

			if tt.expectedErr != nil {
				if err == nil || err.Error() != tt.expectedErr.Error() {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
				if errors.Is(err, domain.ErrInconsistentLedger) && (report == nil || report.Consistent) {
					t.Fatalf("expected inconsistent report, got %+v", report)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report.Consistent != tt.want {
				t.Fatalf("expected consistent=%v, got %v", tt.want, report.Consistent)
			}
		})
	}
}

func TestLedgerUseCase_CheckConsistencyAs(t *testing.T) {
	uc := NewLedgerUseCase(&fakeLedgerRepository{}, nil)

	if _, err := uc.CheckConsistencyAs(context.Background(), domain.Principal{UserID: "u", Role: domain.RoleUser}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if _, err := uc.CheckConsistencyAs(context.Background(), domain.Principal{UserID: "a", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
