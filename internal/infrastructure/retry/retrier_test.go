package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/minibank/internal/domain"
)

var errContention = errors.New("contention")

func isContention(err error) bool {
	return errors.Is(err, errContention)
}

func fastConfig(maxRetries int) Config {
	return Config{
		MaxRetries:      maxRetries,
		InitialInterval: 1 * time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxElapsedTime:  time.Second,
	}
}

func TestRetrierRetriesOnRetryableError(t *testing.T) {
	retries := 0
	r := New(fastConfig(2), isContention, zerolog.Nop(), WithOnRetry(func() { retries++ }))

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errContention
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if retries != 1 {
		t.Fatalf("expected retry hook to run once, got %d", retries)
	}
}

func TestRetrierStopsOnPermanentError(t *testing.T) {
	r := New(DefaultConfig(), isContention, zerolog.Nop())
	attempts := 0

	err := r.Retry(context.Background(), func() error {
		attempts++
		return domain.ErrInsufficientFunds
	})

	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected business error, got %v", err)
	}
	if errors.Is(err, domain.ErrConflict) {
		t.Fatalf("business error must not be reported as conflict")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetrierExhaustionSurfacesConflict(t *testing.T) {
	r := New(fastConfig(2), isContention, zerolog.Nop())
	attempts := 0

	err := r.Retry(context.Background(), func() error {
		attempts++
		return errContention
	})

	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if !errors.Is(err, errContention) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}
