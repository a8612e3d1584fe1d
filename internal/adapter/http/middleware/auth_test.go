package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/minibank/internal/adapter/http/dto"
	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/infrastructure/auth"
)

type verifierStub struct {
	claims *auth.Claims
	err    error
	got    string
}

func (v *verifierStub) Verify(token string) (*auth.Claims, error) {
	v.got = token
	return v.claims, v.err
}

func TestAuthenticate(t *testing.T) {
	claims := &auth.Claims{UserID: "user-1", Username: "alice", Role: domain.RoleUser}

	tests := []struct {
		name       string
		header     string
		verifier   *verifierStub
		wantStatus int
	}{
		{name: "missing header", header: "", verifier: &verifierStub{claims: claims}, wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", verifier: &verifierStub{claims: claims}, wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", verifier: &verifierStub{claims: claims}, wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", verifier: &verifierStub{err: domain.ErrInvalidToken}, wantStatus: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", verifier: &verifierStub{claims: claims}, wantStatus: http.StatusOK},
		{name: "scheme is case insensitive", header: "bearer good", verifier: &verifierStub{claims: claims}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen domain.Principal
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				p, ok := PrincipalFromContext(r.Context())
				if !ok {
					t.Fatalf("principal missing from context")
				}
				seen = p
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			Authenticate(tt.verifier)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				if seen.UserID != "user-1" || seen.Role != domain.RoleUser {
					t.Fatalf("unexpected principal %+v", seen)
				}
				if tt.verifier.got != "good" {
					t.Fatalf("expected token to be passed to verifier, got %q", tt.verifier.got)
				}
				return
			}

			var body dto.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Code != domain.CodeUnauthorized {
				t.Fatalf("expected UNAUTHORIZED code, got %+v", body)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		principal  *domain.Principal
		wantStatus int
	}{
		{name: "anonymous", wantStatus: http.StatusUnauthorized},
		{name: "user", principal: &domain.Principal{UserID: "u", Role: domain.RoleUser}, wantStatus: http.StatusForbidden},
		{name: "admin", principal: &domain.Principal{UserID: "a", Role: domain.RoleAdmin}, wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), *tt.principal))
			}
			rec := httptest.NewRecorder()

			RequireAdmin(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestPrincipalFromContextMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := PrincipalFromContext(req.Context()); ok {
		t.Fatal("expected no principal")
	}
}

func claimsFor(userID string) *auth.Claims {
	return &auth.Claims{UserID: userID, Role: domain.RoleUser}
}
