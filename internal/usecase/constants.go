package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a storage transaction
	// including its retries.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultCacheTTL is how long account reads stay cached.
	DefaultCacheTTL = 30 * time.Second
)
