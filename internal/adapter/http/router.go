package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/minibank/internal/adapter/http/handler"
	"github.com/iho/minibank/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler        *handler.AuthHandler
	UserHandler        *handler.UserHandler
	AccountHandler     *handler.AccountHandler
	TransactionHandler *handler.TransactionHandler
	LedgerHandler      *handler.LedgerHandler
	HealthHandler      *handler.HealthHandler
	TokenVerifier      middleware.TokenVerifier
	RateLimiter        *middleware.RateLimiter
	Logger             zerolog.Logger
	MetricsHandler     http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/token", cfg.AuthHandler.Token)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.TokenVerifier))

			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Route("/users", func(r chi.Router) {
				r.Post("/bootstrap-admin", cfg.UserHandler.BootstrapAdmin)
				r.Put("/me", cfg.UserHandler.UpdateMe)
				r.Delete("/me", cfg.UserHandler.DeleteMe)
				r.Get("/{id}", cfg.UserHandler.Get)
				r.With(middleware.RequireAdmin).Get("/", cfg.UserHandler.List)
				r.With(middleware.RequireAdmin).Post("/{id}/promote", cfg.UserHandler.Promote)
			})

			r.Route("/accounts", func(r chi.Router) {
				r.Post("/", cfg.AccountHandler.Create)
				r.Get("/me", cfg.AccountHandler.Mine)
				r.Get("/lookup/{username}", cfg.AccountHandler.Lookup)
				r.Get("/{id}", cfg.AccountHandler.Get)
				r.Get("/{id}/transactions", cfg.TransactionHandler.ListByAccount)
				r.With(middleware.RequireAdmin).Get("/", cfg.AccountHandler.List)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/deposit", cfg.TransactionHandler.Deposit)
				r.Post("/withdraw", cfg.TransactionHandler.Withdraw)
				r.Post("/transfer", cfg.TransactionHandler.Transfer)
				r.Get("/me", cfg.TransactionHandler.ListMine)
				r.Get("/{id}", cfg.TransactionHandler.Get)
				r.With(middleware.RequireAdmin).Get("/", cfg.TransactionHandler.List)
			})

			r.With(middleware.RequireAdmin).Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
		})
	})

	return r
}
