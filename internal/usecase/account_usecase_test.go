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

type accountMocks struct {
	txMgr    *mocks.MockTransactionManager
	tx       *mocks.MockTransaction
	accounts *mocks.MockAccountRepository
	users    *mocks.MockUserRepository
	outbox   *mocks.MockOutboxRepository
	idGen    *mocks.MockIDGenerator
}

func newAccountUseCase(t *testing.T) (*usecase.AccountUseCase, *accountMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := &accountMocks{
		txMgr:    mocks.NewMockTransactionManager(ctrl),
		tx:       mocks.NewMockTransaction(ctrl),
		accounts: mocks.NewMockAccountRepository(ctrl),
		users:    mocks.NewMockUserRepository(ctrl),
		outbox:   mocks.NewMockOutboxRepository(ctrl),
		idGen:    mocks.NewMockIDGenerator(ctrl),
	}
	m.idGen.EXPECT().Generate().Return("test-id-123").AnyTimes()

	return usecase.NewAccountUseCase(m.txMgr, nil, m.accounts, m.users, m.outbox, m.idGen, nil, nil), m
}

func TestAccountUseCase_CreateAccount(t *testing.T) {
	activeAlice := &domain.User{ID: "alice", Role: domain.RoleUser, Active: true}

	tests := []struct {
		name        string
		principal   domain.Principal
		input       usecase.CreateAccountInput
		setupMocks  func(*accountMocks)
		expectError error
	}{
		{
			name:      "successful account creation",
			principal: alice,
			input:     usecase.CreateAccountInput{},
			setupMocks: func(m *accountMocks) {
				m.users.EXPECT().GetByID(gomock.Any(), "alice").Return(activeAlice, nil)
				m.txMgr.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
				m.accounts.EXPECT().CreateTx(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
					func(_ context.Context, _ usecase.Transaction, acc *domain.Account) error {
						if acc.OwnerID != "alice" || acc.Balance != 0 || acc.Type != domain.AccountTypeCurrent {
							t.Errorf("unexpected account: %+v", acc)
						}
						return nil
					})
				m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
				m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
				m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
		},
		{
			name:      "second account rejected",
			principal: alice,
			input:     usecase.CreateAccountInput{Type: "savings"},
			setupMocks: func(m *accountMocks) {
				m.users.EXPECT().GetByID(gomock.Any(), "alice").Return(activeAlice, nil)
				m.txMgr.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
				m.accounts.EXPECT().CreateTx(gomock.Any(), m.tx, gomock.Any()).Return(domain.ErrAccountAlreadyExists)
				m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
			expectError: domain.ErrAccountAlreadyExists,
		},
		{
			name:        "user cannot open account for someone else",
			principal:   alice,
			input:       usecase.CreateAccountInput{OwnerID: "bob"},
			setupMocks:  func(m *accountMocks) {},
			expectError: domain.ErrForbidden,
		},
		{
			name:        "unknown account type",
			principal:   alice,
			input:       usecase.CreateAccountInput{Type: "loan"},
			setupMocks:  func(m *accountMocks) {},
			expectError: domain.ErrInvalidAccountType,
		},
		{
			name:      "owner missing",
			principal: domain.Principal{UserID: "root", Role: domain.RoleAdmin},
			input:     usecase.CreateAccountInput{OwnerID: "ghost"},
			setupMocks: func(m *accountMocks) {
				m.users.EXPECT().GetByID(gomock.Any(), "ghost").Return(nil, domain.ErrUserNotFound)
			},
			expectError: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newAccountUseCase(t)
			tt.setupMocks(m)

			account, err := uc.CreateAccount(context.Background(), tt.principal, tt.input)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if account == nil || account.ID != "test-id-123" {
				t.Errorf("unexpected account: %+v", account)
			}
		})
	}
}

func TestAccountUseCase_GetAccount(t *testing.T) {
	tests := []struct {
		name        string
		principal   domain.Principal
		expectError error
	}{
		{name: "owner reads", principal: alice},
		{name: "admin reads", principal: domain.Principal{UserID: "root", Role: domain.RoleAdmin}},
		{name: "stranger forbidden", principal: domain.Principal{UserID: "bob", Role: domain.RoleUser}, expectError: domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newAccountUseCase(t)
			m.accounts.EXPECT().GetByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1", OwnerID: "alice", Balance: 42}, nil)

			acc, err := uc.GetAccount(context.Background(), tt.principal, "acc-1")
			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil || acc.Balance != 42 {
				t.Fatalf("unexpected result %+v, %v", acc, err)
			}
		})
	}
}

func TestAccountUseCase_GetAccountByOwner(t *testing.T) {
	uc, m := newAccountUseCase(t)

	if _, err := uc.GetAccountByOwner(context.Background(), alice, "bob"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	m.accounts.EXPECT().GetByOwner(gomock.Any(), "alice").Return(nil, domain.ErrAccountNotFound)
	if _, err := uc.GetAccountByOwner(context.Background(), alice, "alice"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountUseCase_LookupAccount(t *testing.T) {
	uc, m := newAccountUseCase(t)
	m.users.EXPECT().GetByUsername(gomock.Any(), "bob").Return(&domain.User{ID: "bob-id", Username: "bob"}, nil)
	m.accounts.EXPECT().GetByOwner(gomock.Any(), "bob-id").Return(&domain.Account{ID: "acc-bob", OwnerID: "bob-id", Balance: 999}, nil)

	entry, err := uc.LookupAccount(context.Background(), "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.AccountID != "acc-bob" || entry.Username != "bob" {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestAccountUseCase_ListAccounts(t *testing.T) {
	uc, m := newAccountUseCase(t)

	if _, err := uc.ListAccounts(context.Background(), alice, usecase.ListAccountsInput{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	m.accounts.EXPECT().List(gomock.Any(), 1000, 0).Return([]*domain.Account{{ID: "a"}, {ID: "b"}}, nil)
	accounts, err := uc.ListAccounts(context.Background(), domain.Principal{UserID: "root", Role: domain.RoleAdmin}, usecase.ListAccountsInput{Limit: 5000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 2 {
		t.Errorf("expected 2 accounts, got %d", len(accounts))
	}
}
