package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("user already has an account")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrRecipientInactive    = errors.New("recipient account belongs to a deactivated user")
	ErrInvalidAccountType   = errors.New("invalid account type")

	// Transaction errors
	ErrSameAccount         = errors.New("cannot transfer to same account")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidTransaction  = errors.New("transaction must have a source or a destination")
	ErrTransactionNotFound = errors.New("transaction not found")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("username already taken")
	ErrUserInactive       = errors.New("user is deactivated")
	ErrUserHasFunds       = errors.New("user account still holds funds")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Concurrency errors
	ErrConflict = errors.New("operation conflicted with a concurrent update, retry later")

	// Ledger errors
	ErrInconsistentLedger = errors.New("ledger is inconsistent")
)
