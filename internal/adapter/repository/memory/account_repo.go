package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

func accountLockKey(id string) string {
	return "account:" + id
}

func ownerLockKey(ownerID string) string {
	return "owner:" + ownerID
}

// CreateTx buffers a new account. The owner lock is held until the transaction
// ends so two concurrent creations for one user cannot both succeed.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	mt, err := asTx(tx)
	if err != nil {
		return err
	}

	if err := mt.lock(ctx, ownerLockKey(account.OwnerID)); err != nil {
		return err
	}

	r.store.mu.RLock()
	_, userExists := r.store.users[account.OwnerID]
	_, hasAccount := r.store.owners[account.OwnerID]
	r.store.mu.RUnlock()

	if !userExists {
		return domain.ErrUserNotFound
	}
	if hasAccount {
		return domain.ErrAccountAlreadyExists
	}

	stored := copyAccount(account)
	mt.buffer(func() {
		r.store.accounts[stored.ID] = stored
		r.store.owners[stored.OwnerID] = stored.ID
	})

	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	acc, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return copyAccount(acc), nil
}

// GetByOwner retrieves the account owned by ownerID.
func (r *AccountRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.owners[ownerID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return copyAccount(r.store.accounts[id]), nil
}

// GetByIDsForUpdate locks the accounts in the order given and returns the ones
// that exist.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	mt, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if err := mt.lock(ctx, accountLockKey(id)); err != nil {
			return nil, err
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		if acc, ok := r.store.accounts[id]; ok {
			accounts = append(accounts, copyAccount(acc))
		}
	}
	return accounts, nil
}

// UpdateBalance buffers a balance write. The caller must hold the account lock.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance domain.Money, updatedAt time.Time) error {
	mt, err := asTx(tx)
	if err != nil {
		return err
	}

	if _, held := mt.held[accountLockKey(id)]; !held {
		return usecase.ErrLockContention
	}

	if balance < 0 {
		return domain.ErrInsufficientFunds
	}

	mt.buffer(func() {
		if acc, ok := r.store.accounts[id]; ok {
			acc.Balance = balance
			acc.UpdatedAt = updatedAt
		}
	})

	return nil
}

// List lists accounts ordered by creation time.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	r.store.mu.RLock()
	accounts := make([]*domain.Account, 0, len(r.store.accounts))
	for _, acc := range r.store.accounts {
		accounts = append(accounts, copyAccount(acc))
	}
	r.store.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].ID < accounts[j].ID
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	return paginate(accounts, limit, offset), nil
}
