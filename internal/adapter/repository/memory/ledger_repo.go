package memory

import (
	"context"
	"sort"

	"github.com/iho/minibank/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Totals aggregates balances and completed movements.
func (r *LedgerRepository) Totals(ctx context.Context) (domain.LedgerTotals, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var totals domain.LedgerTotals
	for _, acc := range r.store.accounts {
		totals.TotalBalance += acc.Balance
		totals.AccountCount++
	}

	for _, t := range r.store.transactions {
		totals.TransactionCount++
		if t.Status != domain.TransactionStatusCompleted {
			continue
		}
		switch t.Kind() {
		case domain.TransactionKindDeposit:
			totals.TotalDeposits += t.Amount
		case domain.TransactionKindWithdrawal:
			totals.TotalWithdrawals += t.Amount
		}
	}

	return totals, nil
}

// AccountDiscrepancies returns accounts whose balance differs from their
// completed incoming minus outgoing movements.
func (r *LedgerRepository) AccountDiscrepancies(ctx context.Context) ([]domain.AccountDiscrepancy, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	computed := make(map[string]domain.Money, len(r.store.accounts))
	for _, t := range r.store.transactions {
		if t.Status != domain.TransactionStatusCompleted {
			continue
		}
		if t.SourceAccountID != nil {
			computed[*t.SourceAccountID] -= t.Amount
		}
		if t.DestAccountID != nil {
			computed[*t.DestAccountID] += t.Amount
		}
	}

	var out []domain.AccountDiscrepancy
	for id, acc := range r.store.accounts {
		if acc.Balance != computed[id] {
			out = append(out, domain.AccountDiscrepancy{
				AccountID:       id,
				RecordedBalance: acc.Balance,
				ComputedBalance: computed[id],
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}
