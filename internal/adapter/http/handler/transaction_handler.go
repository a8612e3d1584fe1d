package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/minibank/internal/adapter/http/dto"
	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/usecase"
)

// TransferService moves money between accounts.
type TransferService interface {
	Deposit(ctx context.Context, principal domain.Principal, input usecase.DepositInput) (*usecase.Result, error)
	Withdraw(ctx context.Context, principal domain.Principal, input usecase.WithdrawInput) (*usecase.Result, error)
	Transfer(ctx context.Context, principal domain.Principal, input usecase.TransferInput) (*usecase.Result, error)
}

// TransactionService reads the transaction log.
type TransactionService interface {
	GetTransaction(ctx context.Context, principal domain.Principal, id string) (*domain.Transaction, error)
	ListForAccount(ctx context.Context, principal domain.Principal, accountID string, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
	ListMine(ctx context.Context, principal domain.Principal, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
	ListAll(ctx context.Context, principal domain.Principal, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

// AccountResolver fills in account ids the client left out.
type AccountResolver interface {
	GetAccountByOwner(ctx context.Context, principal domain.Principal, ownerID string) (*domain.Account, error)
	LookupAccount(ctx context.Context, username string) (*usecase.AccountDirectoryEntry, error)
}

// TransactionHandler handles deposits, withdrawals, transfers and their history.
type TransactionHandler struct {
	transferUC    TransferService
	transactionUC TransactionService
	accounts      AccountResolver
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transferUC TransferService, transactionUC TransactionService, accounts AccountResolver) *TransactionHandler {
	return &TransactionHandler{
		transferUC:    transferUC,
		transactionUC: transactionUC,
		accounts:      accounts,
	}
}

// Deposit adds money to the caller's account.
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	var req dto.DepositRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if input.AccountID, err = h.ownAccountID(r.Context(), principal, input.AccountID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	res, err := h.transferUC.Deposit(r.Context(), principal, input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationFromUseCase(res))
}

// Withdraw takes money out of the caller's account.
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	var req dto.WithdrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if input.AccountID, err = h.ownAccountID(r.Context(), principal, input.AccountID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	res, err := h.transferUC.Withdraw(r.Context(), principal, input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationFromUseCase(res))
}

// Transfer moves money from the caller's account to another account.
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.ToAccountID == "" {
		if req.ToUsername == "" {
			writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "to_account_id or to_username is required")
			return
		}
		entry, err := h.accounts.LookupAccount(r.Context(), req.ToUsername)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		req.ToAccountID = entry.AccountID
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if input.FromAccountID, err = h.ownAccountID(r.Context(), principal, input.FromAccountID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	res, err := h.transferUC.Transfer(r.Context(), principal, input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationFromUseCase(res))
}

// Get retrieves a transaction the caller is party to.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	t, err := h.transactionUC.GetTransaction(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(t))
}

// ListMine lists the transactions of the caller's account.
func (h *TransactionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context, p domain.Principal, in usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
		return h.transactionUC.ListMine(ctx, p, in)
	})
}

// ListByAccount lists the transactions of one account.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	h.list(w, r, func(ctx context.Context, p domain.Principal, in usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
		return h.transactionUC.ListForAccount(ctx, p, accountID, in)
	})
}

// List lists every transaction. Admin only.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context, p domain.Principal, in usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
		return h.transactionUC.ListAll(ctx, p, in)
	})
}

type listFunc func(ctx context.Context, principal domain.Principal, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)

func (h *TransactionHandler) list(w http.ResponseWriter, r *http.Request, fn listFunc) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	txs, err := fn(r.Context(), principal, usecase.ListTransactionsInput{Limit: limit, Offset: offset})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txs),
		Limit:        limit,
		Offset:       offset,
	})
}

// ownAccountID returns accountID, defaulting to the caller's own account.
func (h *TransactionHandler) ownAccountID(ctx context.Context, principal domain.Principal, accountID string) (string, error) {
	if accountID != "" {
		return accountID, nil
	}

	account, err := h.accounts.GetAccountByOwner(ctx, principal, principal.UserID)
	if err != nil {
		return "", err
	}
	return account.ID, nil
}
