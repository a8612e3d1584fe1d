package usecase

import (
	"context"
	"errors"

	"github.com/iho/minibank/internal/domain"
)

// TransactionUseCase serves reads of the transaction log.
type TransactionUseCase struct {
	accountRepo AccountRepository
	txRepo      TransactionRepository
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(accountRepo AccountRepository, txRepo TransactionRepository) *TransactionUseCase {
	return &TransactionUseCase{
		accountRepo: accountRepo,
		txRepo:      txRepo,
	}
}

// ListTransactionsInput represents pagination for transaction listings.
type ListTransactionsInput struct {
	Limit  int
	Offset int
}

// GetTransaction returns a transaction the caller is party to. Admins see all.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, principal domain.Principal, id string) (*domain.Transaction, error) {
	t, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if principal.CanReadAll() {
		return t, nil
	}

	account, err := uc.accountRepo.GetByOwner(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}

	if !t.Involves(account.ID) {
		return nil, domain.ErrForbidden
	}

	return t, nil
}

// ListForAccount returns every transaction where accountID is the source or the
// destination, oldest first.
func (uc *TransactionUseCase) ListForAccount(ctx context.Context, principal domain.Principal, accountID string, input ListTransactionsInput) ([]*domain.Transaction, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if !principal.CanReadAccount(account) {
		return nil, domain.ErrForbidden
	}

	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.txRepo.ListByAccount(ctx, account.ID, limit, offset)
}

// ListMine returns the transactions of the caller's own account.
func (uc *TransactionUseCase) ListMine(ctx context.Context, principal domain.Principal, input ListTransactionsInput) ([]*domain.Transaction, error) {
	account, err := uc.accountRepo.GetByOwner(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.txRepo.ListByAccount(ctx, account.ID, limit, offset)
}

// ListAll returns every transaction in the ledger. Admin only.
func (uc *TransactionUseCase) ListAll(ctx context.Context, principal domain.Principal, input ListTransactionsInput) ([]*domain.Transaction, error) {
	if !principal.CanReadAll() {
		return nil, domain.ErrForbidden
	}

	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.txRepo.List(ctx, limit, offset)
}
