package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/usecase"
)

// RegisterRequest represents a request to register a user.
type RegisterRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Username:  r.Username,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Password:  r.Password,
	}
}

// TokenRequest represents a request to exchange credentials for a token.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *TokenRequest) ToUseCaseInput() usecase.AuthenticateInput {
	return usecase.AuthenticateInput{
		Username: r.Username,
		Password: r.Password,
	}
}

// UpdateProfileRequest represents a partial update of the caller's profile.
// Absent fields are left unchanged.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Password  *string `json:"password,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateProfileRequest) ToUseCaseInput() usecase.UpdateProfileInput {
	return usecase.UpdateProfileInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Password:  r.Password,
	}
}

// CreateAccountRequest represents a request to open an account. OwnerID
// defaults to the caller.
type CreateAccountRequest struct {
	OwnerID string `json:"owner_id,omitempty"`
	Type    string `json:"type,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		OwnerID: r.OwnerID,
		Type:    r.Type,
	}
}

// AmountRequest carries an amount either in pence or as a major-unit decimal
// such as "12.50". When both are given they must agree.
type AmountRequest struct {
	AmountPence int64            `json:"amount_pence,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

// Money resolves the requested amount in minor units.
func (r AmountRequest) Money() (domain.Money, error) {
	if r.Amount == nil {
		return domain.Money(r.AmountPence), nil
	}

	m, err := domain.MoneyFromDecimal(*r.Amount)
	if err != nil {
		return 0, err
	}
	if r.AmountPence != 0 && domain.Money(r.AmountPence) != m {
		return 0, domain.ErrInvalidAmount
	}
	return m, nil
}

// DepositRequest represents a deposit. AccountID defaults to the caller's account.
type DepositRequest struct {
	AccountID string `json:"account_id,omitempty"`
	AmountRequest
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput() (usecase.DepositInput, error) {
	amount, err := r.Money()
	if err != nil {
		return usecase.DepositInput{}, err
	}
	return usecase.DepositInput{AccountID: r.AccountID, Amount: amount}, nil
}

// WithdrawRequest represents a withdrawal. AccountID defaults to the caller's account.
type WithdrawRequest struct {
	AccountID string `json:"account_id,omitempty"`
	AmountRequest
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawRequest) ToUseCaseInput() (usecase.WithdrawInput, error) {
	amount, err := r.Money()
	if err != nil {
		return usecase.WithdrawInput{}, err
	}
	return usecase.WithdrawInput{AccountID: r.AccountID, Amount: amount}, nil
}

// TransferRequest represents a transfer. FromAccountID defaults to the
// caller's account; the receiver is addressed by account id or username.
type TransferRequest struct {
	FromAccountID string `json:"from_account_id,omitempty"`
	ToAccountID   string `json:"to_account_id,omitempty"`
	ToUsername    string `json:"to_username,omitempty"`
	AmountRequest
}

// ToUseCaseInput converts to use case input. ToAccountID must already be resolved.
func (r *TransferRequest) ToUseCaseInput() (usecase.TransferInput, error) {
	amount, err := r.Money()
	if err != nil {
		return usecase.TransferInput{}, err
	}
	return usecase.TransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        amount,
	}, nil
}
