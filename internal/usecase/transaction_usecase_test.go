package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/usecase"
	"github.com/iho/minibank/internal/usecase/mocks"
)

func newTransactionUseCase(t *testing.T) (*usecase.TransactionUseCase, *mocks.MockAccountRepository, *mocks.MockTransactionRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountRepository(ctrl)
	txs := mocks.NewMockTransactionRepository(ctrl)
	return usecase.NewTransactionUseCase(accounts, txs), accounts, txs
}

func TestTransactionUseCase_GetTransaction(t *testing.T) {
	from, to := "acc-a", "acc-b"
	record := &domain.Transaction{ID: "tx-1", SourceAccountID: &from, DestAccountID: &to, Amount: 10, Status: domain.TransactionStatusCompleted}

	tests := []struct {
		name        string
		principal   domain.Principal
		setupMocks  func(*mocks.MockAccountRepository)
		expectError error
	}{
		{
			name:      "sender reads",
			principal: alice,
			setupMocks: func(a *mocks.MockAccountRepository) {
				a.EXPECT().GetByOwner(gomock.Any(), "alice").Return(&domain.Account{ID: "acc-a", OwnerID: "alice"}, nil)
			},
		},
		{
			name:       "admin reads",
			principal:  domain.Principal{UserID: "root", Role: domain.RoleAdmin},
			setupMocks: func(a *mocks.MockAccountRepository) {},
		},
		{
			name:      "third party forbidden",
			principal: domain.Principal{UserID: "carol", Role: domain.RoleUser},
			setupMocks: func(a *mocks.MockAccountRepository) {
				a.EXPECT().GetByOwner(gomock.Any(), "carol").Return(&domain.Account{ID: "acc-c", OwnerID: "carol"}, nil)
			},
			expectError: domain.ErrForbidden,
		},
		{
			name:      "caller without account forbidden",
			principal: domain.Principal{UserID: "dave", Role: domain.RoleUser},
			setupMocks: func(a *mocks.MockAccountRepository) {
				a.EXPECT().GetByOwner(gomock.Any(), "dave").Return(nil, domain.ErrAccountNotFound)
			},
			expectError: domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, accounts, txs := newTransactionUseCase(t)
			txs.EXPECT().GetByID(gomock.Any(), "tx-1").Return(record, nil)
			tt.setupMocks(accounts)

			got, err := uc.GetTransaction(context.Background(), tt.principal, "tx-1")
			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != "tx-1" {
				t.Errorf("unexpected transaction: %+v", got)
			}
		})
	}
}

func TestTransactionUseCase_GetTransaction_NotFound(t *testing.T) {
	uc, _, txs := newTransactionUseCase(t)
	txs.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, domain.ErrTransactionNotFound)

	if _, err := uc.GetTransaction(context.Background(), alice, "missing"); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestTransactionUseCase_ListForAccount(t *testing.T) {
	uc, accounts, txs := newTransactionUseCase(t)
	accounts.EXPECT().GetByID(gomock.Any(), "acc-b").Return(&domain.Account{ID: "acc-b", OwnerID: "bob"}, nil).Times(2)

	if _, err := uc.ListForAccount(context.Background(), alice, "acc-b", usecase.ListTransactionsInput{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	bob := domain.Principal{UserID: "bob", Role: domain.RoleUser}
	txs.EXPECT().ListByAccount(gomock.Any(), "acc-b", 20, 40).Return([]*domain.Transaction{{ID: "t1"}, {ID: "t2"}}, nil)

	list, err := uc.ListForAccount(context.Background(), bob, "acc-b", usecase.ListTransactionsInput{Limit: 20, Offset: 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 transactions, got %d", len(list))
	}
}

func TestTransactionUseCase_ListMine(t *testing.T) {
	uc, accounts, txs := newTransactionUseCase(t)
	accounts.EXPECT().GetByOwner(gomock.Any(), "alice").Return(&domain.Account{ID: "acc-a", OwnerID: "alice"}, nil)
	txs.EXPECT().ListByAccount(gomock.Any(), "acc-a", 50, 0).Return(nil, nil)

	if _, err := uc.ListMine(context.Background(), alice, usecase.ListTransactionsInput{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionUseCase_ListAll(t *testing.T) {
	uc, _, txs := newTransactionUseCase(t)

	if _, err := uc.ListAll(context.Background(), alice, usecase.ListTransactionsInput{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	txs.EXPECT().List(gomock.Any(), 50, 0).Return([]*domain.Transaction{{ID: "t1"}}, nil)
	list, err := uc.ListAll(context.Background(), domain.Principal{UserID: "root", Role: domain.RoleAdmin}, usecase.ListTransactionsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 transaction, got %d", len(list))
	}
}
