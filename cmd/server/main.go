package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	httpAdapter "github.com/iho/minibank/internal/adapter/http"
	"github.com/iho/minibank/internal/adapter/http/handler"
	"github.com/iho/minibank/internal/adapter/http/middleware"
	"github.com/iho/minibank/internal/adapter/repository/idgen"
	"github.com/iho/minibank/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/minibank/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/minibank/internal/adapter/repository/redis"
	"github.com/iho/minibank/internal/infrastructure/auth"
	"github.com/iho/minibank/internal/infrastructure/config"
	"github.com/iho/minibank/internal/infrastructure/eventpublisher"
	"github.com/iho/minibank/internal/infrastructure/logger"
	"github.com/iho/minibank/internal/infrastructure/metrics"
	"github.com/iho/minibank/internal/infrastructure/postgres"
	"github.com/iho/minibank/internal/infrastructure/redis"
	"github.com/iho/minibank/internal/infrastructure/retry"
	"github.com/iho/minibank/internal/usecase"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTTL         = 15 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

// storage bundles the repositories of one backend.
type storage struct {
	txManager    usecase.TransactionManager
	accounts     usecase.AccountRepository
	users        usecase.UserRepository
	transactions usecase.TransactionRepository
	outbox       usecase.OutboxRepository
	ledger       usecase.LedgerRepository
	checks       []handler.Check
	close        func()
}

// openStorage selects the backend named by cfg.StorageDriver.
func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		store := memory.NewStore(cfg.LedgerLockTimeout)
		logger.Warn().Msg("using in-memory storage, data will not survive a restart")
		return &storage{
			txManager:    memory.NewTxManager(store),
			accounts:     memory.NewAccountRepository(store),
			users:        memory.NewUserRepository(store),
			transactions: memory.NewTransactionRepository(store),
			outbox:       memory.NewOutboxRepository(store),
			ledger:       memory.NewLedgerRepository(store),
			close:        func() {},
		}, nil

	case config.StorageDriverPostgres:
		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info().Msg("connected to postgres")

		return &storage{
			txManager:    postgresRepo.NewTxManager(pool, cfg.LedgerLockTimeout),
			accounts:     postgresRepo.NewAccountRepository(pool),
			users:        postgresRepo.NewUserRepository(pool),
			transactions: postgresRepo.NewTransactionRepository(pool),
			outbox:       postgresRepo.NewOutboxRepository(pool),
			ledger:       postgresRepo.NewLedgerRepository(pool),
			checks:       []handler.Check{{Name: "postgres", Fn: pool.Ping}},
			close:        pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, cfg.StorageDriver)
}

// isRetryable classifies lock contention from either backend as transient.
func isRetryable(err error) bool {
	return postgresRepo.IsRetryableError(err) || errors.Is(err, usecase.ErrLockContention)
}

func newRetrier(cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *retry.Retrier {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.LedgerMaxRetries
	if cfg.LedgerTxTimeout > 0 {
		retryCfg.MaxElapsedTime = cfg.LedgerTxTimeout
	}

	return retry.New(retryCfg, isRetryable, logger, retry.WithOnRetry(func() {
		m.Retries.Inc()
	}))
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	m := metrics.New()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	var accountCache *usecase.AccountCache
	var publisher eventpublisher.Publisher = eventpublisher.NewLogPublisher(logger)
	checks := store.checks

	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		logger.Info().Msg("connected to redis")

		accountCache = usecase.NewAccountCache(redisRepo.NewCache(redisClient), cfg.CacheTTL, m, logger)
		publisher = redisRepo.NewEventPublisher(redisClient, cfg.EventsChannel)
		checks = append(checks, handler.Check{
			Name: "redis",
			Fn:   func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	retrier := newRetrier(cfg, m, logger)
	ids := idgen.NewULID()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	userUC := usecase.NewUserUseCase(store.txManager, retrier, store.users, store.accounts, store.outbox, ids, auth.NewBcryptHasher(bcrypt.DefaultCost), m)
	accountUC := usecase.NewAccountUseCase(store.txManager, retrier, store.accounts, store.users, store.outbox, ids, accountCache, m)
	transferUC := usecase.NewTransferUseCase(store.txManager, retrier, store.accounts, store.users, store.transactions, store.outbox, ids, m, logger)
	transferUC.SetTimeout(cfg.LedgerTxTimeout)
	transactionUC := usecase.NewTransactionUseCase(store.accounts, store.transactions)
	ledgerUC := usecase.NewLedgerUseCase(store.ledger, m)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m.RateLimitHits)
	go cleanupLimiters(ctx, limiter)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:        handler.NewAuthHandler(userUC, jwtManager),
		UserHandler:        handler.NewUserHandler(userUC, jwtManager),
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(transferUC, transactionUC, accountUC),
		LedgerHandler:      handler.NewLedgerHandler(ledgerUC),
		HealthHandler:      handler.NewHealthHandler(checks...),
		TokenVerifier:      jwtManager,
		RateLimiter:        limiter,
		Logger:             logger,
	})

	outbox := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: store.outbox,
		Publisher:  publisher,
		Logger:     logger,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})
	go func() {
		if err := outbox.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("outbox publisher stopped")
		}
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

func cleanupLimiters(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.CleanupLimiters(limiterIdleTTL)
		}
	}
}
