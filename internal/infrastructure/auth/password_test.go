package auth_test

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/infrastructure/auth"
)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("Str0ngPass")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if hash == "Str0ngPass" {
		t.Fatal("hash equals the plain password")
	}

	if err := hasher.Verify(hash, "Str0ngPass"); err != nil {
		t.Fatalf("expected password to verify, got %v", err)
	}

	if err := hasher.Verify(hash, "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	t.Parallel()

	hash, err := auth.NewBcryptHasher(1).Hash("Str0ngPass")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("cost failed: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", cost)
	}
}
