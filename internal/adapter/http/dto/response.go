package dto

import (
	"fmt"
	"time"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/usecase"
)

// UserResponse represents a user in API responses. The password hash is never exposed.
type UserResponse struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      domain.Role `json:"role"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UserFromDomain converts domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UsersFromDomain converts domain users to responses.
func UsersFromDomain(users []*domain.User) []*UserResponse {
	result := make([]*UserResponse, len(users))
	for i, u := range users {
		result[i] = UserFromDomain(u)
	}
	return result
}

// ListUsersResponse represents a page of users.
type ListUsersResponse struct {
	Users  []*UserResponse `json:"users"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// TokenResponse is returned after a successful credential exchange.
type TokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *UserResponse `json:"user"`
}

// PromotionResponse is returned when an admin promotes another user. Tokens
// carry the role they were issued with, so the promoted user must request a
// new one before admin routes accept them.
type PromotionResponse struct {
	User                 *UserResponse `json:"user"`
	TokenRefreshRequired bool          `json:"token_refresh_required"`
	Message              string        `json:"message"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID           string             `json:"id"`
	OwnerID      string             `json:"owner_id"`
	Type         domain.AccountType `json:"type"`
	BalancePence int64              `json:"balance_pence"`
	Balance      string             `json:"balance"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:           a.ID,
		OwnerID:      a.OwnerID,
		Type:         a.Type,
		BalancePence: int64(a.Balance),
		Balance:      a.Balance.String(),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// AccountDirectoryResponse is the public view of someone's account.
type AccountDirectoryResponse struct {
	AccountID string `json:"account_id"`
	OwnerID   string `json:"owner_id"`
	Username  string `json:"username"`
}

// AccountDirectoryFromUseCase converts a directory entry to response.
func AccountDirectoryFromUseCase(e *usecase.AccountDirectoryEntry) *AccountDirectoryResponse {
	return &AccountDirectoryResponse{
		AccountID: e.AccountID,
		OwnerID:   e.OwnerID,
		Username:  e.Username,
	}
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID            string                   `json:"id"`
	Kind          domain.TransactionKind   `json:"kind"`
	FromAccountID *string                  `json:"from_account_id"`
	ToAccountID   *string                  `json:"to_account_id"`
	AmountPence   int64                    `json:"amount_pence"`
	Amount        string                   `json:"amount"`
	Status        domain.TransactionStatus `json:"status"`
	UserID        string                   `json:"user_id"`
	CreatedAt     time.Time                `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		Kind:          t.Kind(),
		FromAccountID: t.SourceAccountID,
		ToAccountID:   t.DestAccountID,
		AmountPence:   int64(t.Amount),
		Amount:        t.Amount.String(),
		Status:        t.Status,
		UserID:        t.UserID,
		CreatedAt:     t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse represents a page of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

// OperationResponse is returned by deposit, withdraw and transfer.
type OperationResponse struct {
	TransactionID string               `json:"transaction_id"`
	BalancePence  int64                `json:"balance_pence"`
	Balance       string               `json:"balance"`
	Message       string               `json:"message"`
	Transaction   *TransactionResponse `json:"transaction"`
}

var operationVerbs = map[domain.TransactionKind]string{
	domain.TransactionKindDeposit:    "deposited",
	domain.TransactionKindWithdrawal: "withdrawn",
	domain.TransactionKindTransfer:   "transferred",
}

// OperationFromUseCase converts a committed movement to response.
func OperationFromUseCase(res *usecase.Result) *OperationResponse {
	t := res.Transaction
	return &OperationResponse{
		TransactionID: t.ID,
		BalancePence:  int64(res.Balance),
		Balance:       res.Balance.String(),
		Message: fmt.Sprintf("Successfully %s %s, your new balance is %s",
			operationVerbs[t.Kind()], t.Amount, res.Balance),
		Transaction: TransactionFromDomain(t),
	}
}

// DiscrepancyResponse is one account whose balance does not match its history.
type DiscrepancyResponse struct {
	AccountID       string `json:"account_id"`
	RecordedBalance string `json:"recorded_balance"`
	ComputedBalance string `json:"computed_balance"`
}

// ConsistencyResponse represents a ledger consistency report.
type ConsistencyResponse struct {
	Consistent       bool                   `json:"consistent"`
	TotalBalance     string                 `json:"total_balance"`
	TotalDeposits    string                 `json:"total_deposits"`
	TotalWithdrawals string                 `json:"total_withdrawals"`
	AccountCount     int64                  `json:"account_count"`
	TransactionCount int64                  `json:"transaction_count"`
	Discrepancies    []*DiscrepancyResponse `json:"discrepancies"`
	CheckedAt        time.Time              `json:"checked_at"`
}

// ConsistencyFromDomain converts a consistency report to response.
func ConsistencyFromDomain(r *domain.ConsistencyReport) *ConsistencyResponse {
	discrepancies := make([]*DiscrepancyResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = &DiscrepancyResponse{
			AccountID:       d.AccountID,
			RecordedBalance: d.RecordedBalance.String(),
			ComputedBalance: d.ComputedBalance.String(),
		}
	}

	return &ConsistencyResponse{
		Consistent:       r.Consistent,
		TotalBalance:     r.Totals.TotalBalance.String(),
		TotalDeposits:    r.Totals.TotalDeposits.String(),
		TotalWithdrawals: r.Totals.TotalWithdrawals.String(),
		AccountCount:     r.Totals.AccountCount,
		TransactionCount: r.Totals.TransactionCount,
		Discrepancies:    discrepancies,
		CheckedAt:        r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
