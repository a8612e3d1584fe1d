package usecase

import (
	"context"
	"time"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	retrier     Retrier
	accountRepo AccountRepository
	userRepo    UserRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	cache       *AccountCache
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase. cache and m may be nil.
func NewAccountUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	userRepo UserRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache *AccountCache,
	m *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		retrier:     retrier,
		accountRepo: accountRepo,
		userRepo:    userRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		cache:       cache,
		metrics:     m,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	OwnerID string
	Type    string
}

// CreateAccount opens the single account of OwnerID with a zero balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, principal domain.Principal, input CreateAccountInput) (*domain.Account, error) {
	if input.OwnerID == "" {
		input.OwnerID = principal.UserID
	}

	if !principal.CanCreateAccountFor(input.OwnerID) {
		return nil, domain.ErrForbidden
	}

	accountType, err := domain.ParseAccountType(input.Type)
	if err != nil {
		return nil, err
	}

	owner, err := uc.userRepo.GetByID(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}
	if !owner.Active {
		return nil, domain.ErrUserInactive
	}

	account, err := domain.NewAccount(uc.idGen.Generate(), owner.ID, accountType, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	err = runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
			return err
		}
		return uc.outboxRepo.Create(ctx, tx, domain.NewAccountCreatedEvent(uc.idGen.Generate(), account))
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID. Only the owner and admins may read it.
// The balance is always read from the store.
func (uc *AccountUseCase) GetAccount(ctx context.Context, principal domain.Principal, id string) (*domain.Account, error) {
	ref, cached := uc.cache.ref(ctx, accountIDKey(id))
	if cached && !ref.readableBy(principal) {
		return nil, domain.ErrForbidden
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cached {
		uc.cache.storeRef(ctx, account)
	}

	if !principal.CanReadAccount(account) {
		return nil, domain.ErrForbidden
	}

	return account, nil
}

// GetAccountByOwner retrieves the account owned by ownerID. A cached owner
// mapping turns the lookup into a primary key read.
func (uc *AccountUseCase) GetAccountByOwner(ctx context.Context, principal domain.Principal, ownerID string) (*domain.Account, error) {
	if !principal.CanReadUser(ownerID) {
		return nil, domain.ErrForbidden
	}

	if ref, ok := uc.cache.ref(ctx, accountOwnerKey(ownerID)); ok {
		return uc.accountRepo.GetByID(ctx, ref.ID)
	}

	account, err := uc.accountRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	uc.cache.storeRef(ctx, account)

	return account, nil
}

// AccountDirectoryEntry is the public view of another user's account, enough
// to address a transfer to it.
type AccountDirectoryEntry struct {
	AccountID string `json:"account_id"`
	OwnerID   string `json:"owner_id"`
	Username  string `json:"username"`
}

// LookupAccount resolves a username to its account id for any authenticated caller.
func (uc *AccountUseCase) LookupAccount(ctx context.Context, username string) (*AccountDirectoryEntry, error) {
	if entry, ok := uc.cache.directory(ctx, username); ok {
		return entry, nil
	}

	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	entry := &AccountDirectoryEntry{
		AccountID: account.ID,
		OwnerID:   user.ID,
		Username:  user.Username,
	}
	uc.cache.storeDirectory(ctx, entry)

	return entry, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists every account. Admin only.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, principal domain.Principal, input ListAccountsInput) ([]*domain.Account, error) {
	if !principal.CanReadAll() {
		return nil, domain.ErrForbidden
	}

	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}
