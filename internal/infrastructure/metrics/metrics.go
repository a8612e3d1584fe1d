package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	Transactions        *prometheus.CounterVec
	TransactionDuration *prometheus.HistogramVec
	TransactionAmount   *prometheus.HistogramVec
	LedgerErrors        *prometheus.CounterVec
	Retries             prometheus.Counter

	// Account metrics
	AccountsCreated prometheus.Counter

	// User metrics
	UsersRegistered prometheus.Counter
	AdminPromotions *prometheus.CounterVec
	AuthAttempts    *prometheus.CounterVec

	// Background and infrastructure metrics
	ConsistencyRuns *prometheus.CounterVec
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter
	CacheOperations *prometheus.CounterVec
	RateLimitHits   prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registerer
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics on reg
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Transactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minibank_transactions_total",
				Help: "Total number of ledger transactions by kind and status",
			},
			[]string{"kind", "status"},
		),
		TransactionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "minibank_transaction_duration_seconds",
				Help:    "Duration of deposit, withdrawal and transfer operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		TransactionAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "minibank_transaction_amount_pence",
				Help:    "Transaction amounts in pence",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"kind"},
		),
		LedgerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minibank_ledger_errors_total",
				Help: "Total number of failed ledger operations by error code",
			},
			[]string{"kind", "code"},
		),
		Retries: factory.NewCounter(prometheus.CounterOpts{
			Name: "minibank_storage_retries_total",
			Help: "Total number of storage transaction retries after contention",
		}),

		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "minibank_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "minibank_users_registered_total",
			Help: "Total number of registered users",
		}),
		AdminPromotions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minibank_admin_promotions_total",
				Help: "Total number of promotions to admin",
			},
			[]string{"path"},
		),
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minibank_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
		ConsistencyRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minibank_consistency_checks_total",
				Help: "Total ledger consistency checks by result",
			},
			[]string{"result"},
		),
		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "minibank_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "minibank_outbox_failures_total",
			Help: "Total outbox events that failed to publish",
		}),
		CacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minibank_cache_operations_total",
				Help: "Account cache lookups by result",
			},
			[]string{"result"},
		),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "minibank_rate_limit_hits_total",
			Help: "Total rate limited requests",
		}),
	}
}
