package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/iho/minibank/internal/adapter/http/dto"
	"github.com/iho/minibank/internal/adapter/http/middleware"
	"github.com/iho/minibank/internal/domain"
)

var (
	alice = domain.Principal{UserID: "user-alice", Role: domain.RoleUser}
	root  = domain.Principal{UserID: "user-root", Role: domain.RoleAdmin}
)

func authed(req *http.Request, p domain.Principal) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), p))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/accounts?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/accounts?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestPagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5000&offset=-3", nil)
	limit, offset := pagination(req)
	if limit != 1000 || offset != 0 {
		t.Fatalf("expected clamped 1000/0, got %d/%d", limit, offset)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if limit, _ := pagination(req); limit != 50 {
		t.Fatalf("expected default limit 50, got %d", limit)
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"account not found", domain.ErrAccountNotFound, domain.CodeNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", domain.ErrUserNotFound), domain.CodeNotFound, http.StatusNotFound},
		{"insufficient funds", domain.ErrInsufficientFunds, domain.CodeInsufficientFunds, http.StatusUnprocessableEntity},
		{"invalid amount", domain.ErrInvalidAmount, domain.CodeInvalidAmount, http.StatusBadRequest},
		{"same account", domain.ErrSameAccount, domain.CodeInvalidRequest, http.StatusBadRequest},
		{"bad credentials", domain.ErrInvalidCredentials, domain.CodeUnauthorized, http.StatusUnauthorized},
		{"admin exists", domain.ErrAdminAlreadyExists, domain.CodeForbidden, http.StatusForbidden},
		{"conflict", domain.ErrConflict, domain.CodeConflict, http.StatusConflict},
		{"duplicate account", domain.ErrAccountAlreadyExists, domain.CodeAlreadyExists, http.StatusConflict},
		{"has funds", domain.ErrUserHasFunds, domain.CodePreconditionFailed, http.StatusConflict},
		{"recipient deactivated", domain.ErrRecipientInactive, domain.CodePreconditionFailed, http.StatusConflict},
		{"caller deactivated", domain.ErrUserInactive, domain.CodeUnauthorized, http.StatusUnauthorized},
		{"unknown error", errors.New("boom"), domain.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, status := mapDomainError(tt.err)
			if code != tt.wantCode || status != tt.wantStatus {
				t.Fatalf("expected %s/%d, got %s/%d", tt.wantCode, tt.wantStatus, code, status)
			}
		})
	}
}

func TestWriteDomainErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	writeDomainError(rec, req, errors.New("dial tcp 10.0.0.1:5432: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.1") {
		t.Fatalf("internal details leaked: %s", rec.Body.String())
	}
	if body := decodeError(t, rec); body.Code != domain.CodeInternal {
		t.Fatalf("expected INTERNAL, got %+v", body)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %s", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
	}{
		{name: "valid", body: `{"username":"alice"}`, wantOK: true},
		{name: "empty", body: ``, wantStatus: http.StatusBadRequest},
		{name: "malformed", body: `{"username":`, wantStatus: http.StatusBadRequest},
		{name: "too large", body: `{"username":"` + strings.Repeat("a", maxBodyBytes) + `"}`, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst dto.TokenRequest
			ok := decodeJSON(rec, req, &dst)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok && rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestPrincipalFromMissing(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, ok := principalFrom(rec, req); ok {
		t.Fatal("expected no principal")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
