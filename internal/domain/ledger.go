package domain

import "time"

// LedgerTotals aggregates balances and completed movements across the ledger.
type LedgerTotals struct {
	TotalBalance     Money
	TotalDeposits    Money
	TotalWithdrawals Money
	AccountCount     int64
	TransactionCount int64
}

// Expected returns the balance the ledger should hold given the recorded
// deposits and withdrawals. Transfers net to zero.
func (t LedgerTotals) Expected() Money {
	return t.TotalDeposits - t.TotalWithdrawals
}

// AccountDiscrepancy is an account whose balance differs from the sum of its
// recorded incoming and outgoing movements.
type AccountDiscrepancy struct {
	AccountID       string
	RecordedBalance Money
	ComputedBalance Money
}

// ConsistencyReport is the result of a ledger-wide check.
type ConsistencyReport struct {
	Totals        LedgerTotals
	Discrepancies []AccountDiscrepancy
	Consistent    bool
	CheckedAt     time.Time
}
