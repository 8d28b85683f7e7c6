package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	AccountNotFound       ErrorCode = "account_not_found"
	InsufficientBalance   ErrorCode = "insufficient_balance"
	SelfTransfer          ErrorCode = "self_transfer"
	InvalidAmount         ErrorCode = "invalid_amount"
	AmountLimitExceeded   ErrorCode = "amount_limit_exceeded"
	UnknownExternalSystem ErrorCode = "unknown_external_system"
	AuthorizationRejected ErrorCode = "authorization_rejected"
	AuthorizationChannel  ErrorCode = "authorization_channel_error"
	InternalConsistency   ErrorCode = "internal_consistency_error"
	DuplicateUser         ErrorCode = "duplicate_user"
	InvalidEmail          ErrorCode = "invalid_email"
	WeakPassword          ErrorCode = "weak_password"
	InvalidInput          ErrorCode = "invalid_input"
	InternalError         ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// HTTPStatus maps the error category to a response status. Callers use the
// code itself to decide whether a retry makes sense: channel errors are
// retryable, validation errors are not, and internal consistency errors need
// manual reconciliation.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case AccountNotFound:
		return http.StatusNotFound
	case InsufficientBalance, SelfTransfer, InvalidAmount, AmountLimitExceeded,
		UnknownExternalSystem, InvalidEmail, WeakPassword, InvalidInput:
		return http.StatusBadRequest
	case DuplicateUser:
		return http.StatusConflict
	case AuthorizationRejected:
		return http.StatusUnprocessableEntity
	case AuthorizationChannel:
		return http.StatusBadGateway
	case InternalConsistency, InternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrInsufficientBalance    = NewAppError(InsufficientBalance, "insufficient funds")
	ErrSelfTransfer           = NewAppError(SelfTransfer, "sender and receiver must differ")
	ErrInvalidAmount          = NewAppError(InvalidAmount, "amount must be greater than zero")
	ErrDuplicateUser          = NewAppError(DuplicateUser, "email already registered")
	ErrInvalidEmail           = NewAppError(InvalidEmail, "invalid email format")
	ErrWeakPassword           = NewAppError(WeakPassword, "password too short")
	ErrInvalidIdentifier      = NewAppError(InvalidInput, "identifier must be an account id or an email")
	ErrCannotBeginTransaction = NewAppError(InternalError, "cannot begin transaction outside a database connection")
)

// NewAccountNotFound names the identifier the caller asked for, so the
// message distinguishes a missing sender from a missing receiver.
func NewAccountNotFound(identifier string) *AppError {
	return NewAppErrorf(AccountNotFound, "account not found: %s", identifier)
}
