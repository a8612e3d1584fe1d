package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/minibank/internal/domain"
)

// Classifier reports whether an error is transient contention worth retrying.
type Classifier func(err error) bool

// Config holds retry parameters.
type Config struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultConfig returns the default backoff settings.
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     1 * time.Second,
		MaxElapsedTime:  10 * time.Second,
	}
}

// Retrier implements usecase.Retrier with exponential backoff.
type Retrier struct {
	cfg         Config
	isRetryable Classifier
	logger      zerolog.Logger
	onRetry     func()
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithOnRetry registers a hook called before every retry, e.g. a metrics counter.
func WithOnRetry(fn func()) Option {
	return func(r *Retrier) {
		r.onRetry = fn
	}
}

// New creates a Retrier.
func New(cfg Config, isRetryable Classifier, logger zerolog.Logger, opts ...Option) *Retrier {
	r := &Retrier{
		cfg:         cfg,
		isRetryable: isRetryable,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retry executes an operation with exponential backoff on retryable errors.
// When retries are exhausted the last error is returned wrapped in domain.ErrConflict.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxInterval = r.cfg.MaxInterval
	b.MaxElapsedTime = r.cfg.MaxElapsedTime

	retryCount := 0

	err := backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !r.isRetryable(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.cfg.MaxRetries {
			return backoff.Permanent(err)
		}

		r.logger.Warn().
			Err(err).
			Int("retry", retryCount).
			Msg("retryable storage error, retrying")

		if r.onRetry != nil {
			r.onRetry()
		}

		return err
	}, backoff.WithContext(b, ctx))

	if err != nil && r.isRetryable(err) {
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}

	return err
}
