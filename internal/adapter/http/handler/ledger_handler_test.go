package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/minibank/internal/adapter/http/dto"
	"github.com/iho/minibank/internal/domain"
)

type consistencyStub func(ctx context.Context, p domain.Principal) (*domain.ConsistencyReport, error)

func (f consistencyStub) CheckConsistencyAs(ctx context.Context, p domain.Principal) (*domain.ConsistencyReport, error) {
	return f(ctx, p)
}

func TestLedgerHandler_CheckConsistency(t *testing.T) {
	healthy := &domain.ConsistencyReport{Consistent: true, Totals: domain.LedgerTotals{TotalBalance: 100, TotalDeposits: 100}}
	broken := &domain.ConsistencyReport{
		Totals:        domain.LedgerTotals{TotalBalance: 150, TotalDeposits: 100},
		Discrepancies: []domain.AccountDiscrepancy{{AccountID: "acc-1", RecordedBalance: 150, ComputedBalance: 100}},
	}

	tests := []struct {
		name           string
		report         *domain.ConsistencyReport
		err            error
		wantStatus     int
		wantConsistent bool
	}{
		{name: "consistent", report: healthy, wantStatus: http.StatusOK, wantConsistent: true},
		{name: "inconsistent", report: broken, err: domain.ErrInconsistentLedger, wantStatus: http.StatusConflict},
		{name: "not admin", err: domain.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "storage failure", err: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLedgerHandler(consistencyStub(func(ctx context.Context, p domain.Principal) (*domain.ConsistencyReport, error) {
				return tt.report, tt.err
			}))

			rec := httptest.NewRecorder()
			h.CheckConsistency(rec, authed(httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil), root))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.report == nil {
				return
			}

			var resp dto.ConsistencyResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Consistent != tt.wantConsistent || len(resp.Discrepancies) != len(tt.report.Discrepancies) {
				t.Fatalf("unexpected report %+v", resp)
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler()
	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}

	ok := Check{Name: "postgres", Fn: func(ctx context.Context) error { return nil }}
	down := Check{Name: "redis", Fn: func(ctx context.Context) error { return errors.New("connection refused") }}

	rec = httptest.NewRecorder()
	NewHealthHandler(ok).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewHealthHandler(ok, down).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("not ready: expected 503, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["postgres"] != "ok" || body["redis"] != "connection refused" || body["status"] != "unavailable" {
		t.Fatalf("unexpected readiness body %v", body)
	}
}
