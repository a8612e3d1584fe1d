package domain

import "errors"

// Error codes returned to callers.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeInvalidAmount      = "INVALID_AMOUNT"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodePreconditionFailed = "PRECONDITION_FAILED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrConflict, CodeConflict},
	{ErrAccountNotFound, CodeNotFound},
	{ErrUserNotFound, CodeNotFound},
	{ErrTransactionNotFound, CodeNotFound},
	{ErrInsufficientFunds, CodeInsufficientFunds},
	{ErrInvalidAmount, CodeInvalidAmount},
	{ErrAmountTooLarge, CodeInvalidAmount},
	{ErrSameAccount, CodeInvalidRequest},
	{ErrInvalidTransaction, CodeInvalidRequest},
	{ErrInvalidAccountType, CodeInvalidRequest},
	{ErrInvalidUsername, CodeInvalidRequest},
	{ErrInvalidName, CodeInvalidRequest},
	{ErrPasswordTooWeak, CodeInvalidRequest},
	{ErrInvalidRole, CodeInvalidRequest},
	{ErrUnauthorized, CodeUnauthorized},
	{ErrInvalidToken, CodeUnauthorized},
	{ErrExpiredToken, CodeUnauthorized},
	{ErrInvalidCredentials, CodeUnauthorized},
	{ErrUserInactive, CodeUnauthorized},
	{ErrForbidden, CodeForbidden},
	{ErrAccountAlreadyExists, CodeAlreadyExists},
	{ErrUserAlreadyExists, CodeAlreadyExists},
	{ErrUserHasFunds, CodePreconditionFailed},
	{ErrRecipientInactive, CodePreconditionFailed},
}

// ErrorCode maps an error to its caller-visible code. Unknown errors are INTERNAL.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}
