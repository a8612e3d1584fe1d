package usecase

import (
	"context"
	"time"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/infrastructure/metrics"
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
	metrics    *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository, m *metrics.Metrics) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
		metrics:    m,
	}
}

// CheckConsistency verifies money conservation: the sum of all balances equals
// completed deposits minus completed withdrawals, and every account balance
// equals its incoming minus outgoing movements. An inconsistent ledger returns
// the report together with domain.ErrInconsistentLedger.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*domain.ConsistencyReport, error) {
	totals, err := uc.ledgerRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	discrepancies, err := uc.ledgerRepo.AccountDiscrepancies(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.ConsistencyReport{
		Totals:        totals,
		Discrepancies: discrepancies,
		Consistent:    totals.TotalBalance == totals.Expected() && len(discrepancies) == 0,
		CheckedAt:     time.Now().UTC(),
	}

	if uc.metrics != nil {
		result := "consistent"
		if !report.Consistent {
			result = "inconsistent"
		}
		uc.metrics.ConsistencyRuns.WithLabelValues(result).Inc()
	}

	if !report.Consistent {
		return report, domain.ErrInconsistentLedger
	}

	return report, nil
}

// CheckConsistencyAs runs CheckConsistency on behalf of an admin caller.
func (uc *LedgerUseCase) CheckConsistencyAs(ctx context.Context, principal domain.Principal) (*domain.ConsistencyReport, error) {
	if !principal.CanReadAll() {
		return nil, domain.ErrForbidden
	}
	return uc.CheckConsistency(ctx)
}
