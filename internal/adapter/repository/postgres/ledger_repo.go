package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/minibank/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	db querier
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: pool}
}

// Totals aggregates balances and completed movements in one snapshot.
func (r *LedgerRepository) Totals(ctx context.Context) (domain.LedgerTotals, error) {
	var totals domain.LedgerTotals

	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COALESCE(SUM(balance_minor_units), 0)::bigint FROM accounts),
			(SELECT COUNT(*) FROM accounts),
			(SELECT COALESCE(SUM(amount_minor_units), 0)::bigint FROM transactions
			  WHERE status = 'completed' AND from_account_id IS NULL),
			(SELECT COALESCE(SUM(amount_minor_units), 0)::bigint FROM transactions
			  WHERE status = 'completed' AND to_account_id IS NULL),
			(SELECT COUNT(*) FROM transactions)`,
	).Scan(
		&totals.TotalBalance,
		&totals.AccountCount,
		&totals.TotalDeposits,
		&totals.TotalWithdrawals,
		&totals.TransactionCount,
	)

	return totals, err
}

// AccountDiscrepancies returns accounts whose balance differs from their
// completed incoming minus outgoing movements.
func (r *LedgerRepository) AccountDiscrepancies(ctx context.Context) ([]domain.AccountDiscrepancy, error) {
	rows, err := r.db.Query(ctx, `
		WITH movements AS (
			SELECT to_account_id AS account_id, amount_minor_units AS delta
			FROM transactions
			WHERE status = 'completed' AND to_account_id IS NOT NULL
			UNION ALL
			SELECT from_account_id, -amount_minor_units
			FROM transactions
			WHERE status = 'completed' AND from_account_id IS NOT NULL
		)
		SELECT a.id, a.balance_minor_units, COALESCE(SUM(m.delta), 0)::bigint AS computed
		FROM accounts a
		LEFT JOIN movements m ON m.account_id = a.id
		GROUP BY a.id, a.balance_minor_units
		HAVING a.balance_minor_units <> COALESCE(SUM(m.delta), 0)
		ORDER BY a.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AccountDiscrepancy
	for rows.Next() {
		var d domain.AccountDiscrepancy
		if err := rows.Scan(&d.AccountID, &d.RecordedBalance, &d.ComputedBalance); err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	return out, rows.Err()
}
