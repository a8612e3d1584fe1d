package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/minibank/internal/adapter/http/dto"
	"github.com/iho/minibank/internal/domain"
)

// ConsistencyChecker verifies ledger-wide money conservation.
type ConsistencyChecker interface {
	CheckConsistencyAs(ctx context.Context, principal domain.Principal) (*domain.ConsistencyReport, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC ConsistencyChecker
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC ConsistencyChecker) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// CheckConsistency reports whether balances match the transaction log.
// An inconsistent ledger answers 409 with the full report.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	report, err := h.ledgerUC.CheckConsistencyAs(r.Context(), principal)
	switch {
	case errors.Is(err, domain.ErrInconsistentLedger) && report != nil:
		writeJSON(w, http.StatusConflict, dto.ConsistencyFromDomain(report))
	case err != nil:
		writeDomainError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, dto.ConsistencyFromDomain(report))
	}
}
