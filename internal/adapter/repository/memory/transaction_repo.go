package memory

import (
	"context"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create buffers a transaction record. Records are never updated afterwards.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	mt, err := asTx(tx)
	if err != nil {
		return err
	}

	if err := t.Validate(); err != nil {
		return err
	}

	stored := copyTransaction(t)
	mt.buffer(func() {
		r.store.txIndex[stored.ID] = len(r.store.transactions)
		r.store.transactions = append(r.store.transactions, stored)
	})

	return nil
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	i, ok := r.store.txIndex[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return copyTransaction(r.store.transactions[i]), nil
}

// ListByAccount lists transactions where accountID is the source or destination
// in commit order.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*domain.Transaction
	for _, t := range r.store.transactions {
		if t.Involves(accountID) {
			matched = append(matched, t)
		}
	}

	return copyTransactions(paginate(matched, limit, offset)), nil
}

// List lists all transactions in commit order.
func (r *TransactionRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return copyTransactions(paginate(r.store.transactions, limit, offset)), nil
}

func copyTransactions(in []*domain.Transaction) []*domain.Transaction {
	out := make([]*domain.Transaction, 0, len(in))
	for _, t := range in {
		out = append(out, copyTransaction(t))
	}
	return out
}
