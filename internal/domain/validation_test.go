package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	t.Run("valid username", func(t *testing.T) {
		if err := ValidateUsername("alice.smith-01"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("too short", func(t *testing.T) {
		if err := ValidateUsername("al"); !errors.Is(err, ErrInvalidUsername) {
			t.Fatalf("expected ErrInvalidUsername, got %v", err)
		}
	})

	t.Run("too long", func(t *testing.T) {
		if err := ValidateUsername(strings.Repeat("a", MaxUsernameLength+1)); !errors.Is(err, ErrInvalidUsername) {
			t.Fatalf("expected ErrInvalidUsername, got %v", err)
		}
	})

	t.Run("forbidden characters", func(t *testing.T) {
		if err := ValidateUsername("alice; DROP"); !errors.Is(err, ErrInvalidUsername) {
			t.Fatalf("expected ErrInvalidUsername, got %v", err)
		}
	})
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	if err := ValidateName("Alice"); err != nil {
		t.Fatalf("expected valid name, got %v", err)
	}

	if err := ValidateName("   "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}

	if err := ValidateName(strings.Repeat("x", MaxNameLength+1)); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(1); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if err := ValidateAmount(-5); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if err := ValidateAmount(MaxAmount + 1); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "strong", password: "Secr3tPass"},
		{name: "too short", password: "S3c", wantErr: true},
		{name: "too long", password: "A1" + strings.Repeat("a", MaxPasswordLength), wantErr: true},
		{name: "no digits", password: "SecretPass", wantErr: true},
		{name: "no uppercase", password: "secr3tpass", wantErr: true},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if tt.wantErr && !errors.Is(err, ErrPasswordTooWeak) {
			t.Errorf("%s: expected ErrPasswordTooWeak, got %v", tt.name, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset, err := ValidatePagination(0, -10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults 50/0, got %d/%d", limit, offset)
	}

	limit, _, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Fatalf("expected limit capped to 1000, got %d", limit)
	}
}
