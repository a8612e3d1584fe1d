package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/infrastructure/metrics"
)

// TransferUseCase moves money: deposits, withdrawals and transfers. Every
// operation is one storage transaction that locks the touched accounts, updates
// their balances and appends the transaction record, or changes nothing.
type TransferUseCase struct {
	txManager   TransactionManager
	retrier     Retrier
	accountRepo AccountRepository
	userRepo    UserRepository
	txRepo      TransactionRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	timeout     time.Duration
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	userRepo UserRepository,
	txRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:   txManager,
		retrier:     retrier,
		accountRepo: accountRepo,
		userRepo:    userRepo,
		txRepo:      txRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     m,
		logger:      logger,
		timeout:     DefaultTransactionTimeout,
	}
}

// SetTimeout overrides the per-operation deadline, retries included.
func (uc *TransferUseCase) SetTimeout(d time.Duration) {
	if d > 0 {
		uc.timeout = d
	}
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	AccountID string
	Amount    domain.Money
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	AccountID string
	Amount    domain.Money
}

// TransferInput represents input for a transfer between two accounts.
type TransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        domain.Money
}

// Result is the outcome of a committed money movement. Balance is the new
// balance of the caller's account.
type Result struct {
	Transaction *domain.Transaction
	Balance     domain.Money
}

// Deposit adds amount to the caller's account.
func (uc *TransferUseCase) Deposit(ctx context.Context, principal domain.Principal, input DepositInput) (*Result, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, uc.fail(domain.TransactionKindDeposit, err)
	}

	var result *Result

	err := uc.execute(ctx, domain.TransactionKindDeposit, func(ctx context.Context, tx Transaction) error {
		accounts, err := uc.lockAccounts(ctx, tx, input.AccountID)
		if err != nil {
			return err
		}
		account := accounts[input.AccountID]

		if !principal.CanMutateAccount(account) {
			return domain.ErrForbidden
		}

		if err := uc.requireActive(ctx, account, domain.ErrUserInactive); err != nil {
			return err
		}

		balance, err := account.ApplyCredit(input.Amount)
		if err != nil {
			return err
		}

		t, err := uc.record(ctx, tx, principal, nil, &account.ID, input.Amount, []*domain.Account{account})
		if err != nil {
			return err
		}

		result = &Result{Transaction: t, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.committed(result.Transaction)
	return result, nil
}

// Withdraw removes amount from the caller's account.
func (uc *TransferUseCase) Withdraw(ctx context.Context, principal domain.Principal, input WithdrawInput) (*Result, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, uc.fail(domain.TransactionKindWithdrawal, err)
	}

	var result *Result

	err := uc.execute(ctx, domain.TransactionKindWithdrawal, func(ctx context.Context, tx Transaction) error {
		accounts, err := uc.lockAccounts(ctx, tx, input.AccountID)
		if err != nil {
			return err
		}
		account := accounts[input.AccountID]

		if !principal.CanMutateAccount(account) {
			return domain.ErrForbidden
		}

		if err := uc.requireActive(ctx, account, domain.ErrUserInactive); err != nil {
			return err
		}

		balance, err := account.ApplyDebit(input.Amount)
		if err != nil {
			return err
		}

		t, err := uc.record(ctx, tx, principal, &account.ID, nil, input.Amount, []*domain.Account{account})
		if err != nil {
			return err
		}

		result = &Result{Transaction: t, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.committed(result.Transaction)
	return result, nil
}

// Transfer moves amount from the caller's account to another account.
func (uc *TransferUseCase) Transfer(ctx context.Context, principal domain.Principal, input TransferInput) (*Result, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, uc.fail(domain.TransactionKindTransfer, domain.ErrSameAccount)
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, uc.fail(domain.TransactionKindTransfer, err)
	}

	var result *Result

	err := uc.execute(ctx, domain.TransactionKindTransfer, func(ctx context.Context, tx Transaction) error {
		accounts, err := uc.lockAccounts(ctx, tx, input.FromAccountID, input.ToAccountID)
		if err != nil {
			return err
		}
		from := accounts[input.FromAccountID]
		to := accounts[input.ToAccountID]

		if !principal.CanMutateAccount(from) {
			return domain.ErrForbidden
		}

		if err := uc.requireActive(ctx, from, domain.ErrUserInactive); err != nil {
			return err
		}
		if err := uc.requireActive(ctx, to, domain.ErrRecipientInactive); err != nil {
			return err
		}

		balance, err := from.ApplyDebit(input.Amount)
		if err != nil {
			return err
		}

		if _, err := to.ApplyCredit(input.Amount); err != nil {
			return err
		}

		t, err := uc.record(ctx, tx, principal, &from.ID, &to.ID, input.Amount, []*domain.Account{from, to})
		if err != nil {
			return err
		}

		result = &Result{Transaction: t, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.committed(result.Transaction)
	return result, nil
}

// execute runs fn in a retried storage transaction bounded by the use case timeout.
func (uc *TransferUseCase) execute(ctx context.Context, kind domain.TransactionKind, fn func(ctx context.Context, tx Transaction) error) error {
	txCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	start := time.Now()
	err := runInTx(txCtx, uc.txManager, uc.retrier, fn)

	if uc.metrics != nil {
		uc.metrics.TransactionDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = errors.Join(domain.ErrConflict, err)
		}
		return uc.fail(kind, err)
	}

	return nil
}

// lockAccounts locks the given accounts in ascending id order and returns them by id.
func (uc *TransferUseCase) lockAccounts(ctx context.Context, tx Transaction, ids ...string) (map[string]*domain.Account, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, sorted)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(sorted) {
		return nil, domain.ErrAccountNotFound
	}

	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, acc := range accounts {
		accountMap[acc.ID] = acc
	}

	for _, id := range ids {
		if accountMap[id] == nil {
			return nil, domain.ErrAccountNotFound
		}
	}

	return accountMap, nil
}

// requireActive fails with inactive when the owner of a locked account has
// been deactivated. Deactivation locks the account row too, so the owner read
// here cannot race a concurrent Deactivate into leaving funds behind.
func (uc *TransferUseCase) requireActive(ctx context.Context, account *domain.Account, inactive error) error {
	owner, err := uc.userRepo.GetByID(ctx, account.OwnerID)
	if err != nil {
		return err
	}
	if !owner.Active {
		return inactive
	}
	return nil
}

// record persists new balances, the transaction record and its outbox event.
func (uc *TransferUseCase) record(
	ctx context.Context,
	tx Transaction,
	principal domain.Principal,
	source, dest *string,
	amount domain.Money,
	accounts []*domain.Account,
) (*domain.Transaction, error) {
	now := time.Now().UTC()

	t, err := domain.NewTransaction(uc.idGen.Generate(), source, dest, amount, domain.TransactionStatusCompleted, principal.UserID, now)
	if err != nil {
		return nil, err
	}

	for _, acc := range accounts {
		if err := uc.accountRepo.UpdateBalance(ctx, tx, acc.ID, acc.Balance, now); err != nil {
			return nil, err
		}
		acc.UpdatedAt = now
	}

	if err := uc.txRepo.Create(ctx, tx, t); err != nil {
		return nil, err
	}

	if err := uc.outboxRepo.Create(ctx, tx, domain.NewTransactionCompletedEvent(uc.idGen.Generate(), t)); err != nil {
		return nil, err
	}

	return t, nil
}

func (uc *TransferUseCase) committed(t *domain.Transaction) {
	if uc.metrics != nil {
		kind := string(t.Kind())
		uc.metrics.Transactions.WithLabelValues(kind, string(t.Status)).Inc()
		uc.metrics.TransactionAmount.WithLabelValues(kind).Observe(float64(t.Amount))
	}

	uc.logger.Info().
		Str("transaction_id", t.ID).
		Str("kind", string(t.Kind())).
		Str("amount", t.Amount.String()).
		Str("user_id", t.UserID).
		Msg("transaction committed")
}

func (uc *TransferUseCase) fail(kind domain.TransactionKind, err error) error {
	if uc.metrics != nil {
		uc.metrics.LedgerErrors.WithLabelValues(string(kind), domain.ErrorCode(err)).Inc()
	}
	return err
}
