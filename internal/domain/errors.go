package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable, caller-facing identifier of a ledger failure.
type ErrorCode string

const (
	CodeInvalidAmount           ErrorCode = "InvalidAmount"
	CodeInvalidRequest          ErrorCode = "InvalidRequest"
	CodeAccountNotFound         ErrorCode = "AccountNotFound"
	CodeAccountTypeNotFound     ErrorCode = "AccountTypeNotFound"
	CodeBranchNotFound          ErrorCode = "BranchNotFound"
	CodeFormNotFound            ErrorCode = "FormNotFound"
	CodeInsufficientFunds       ErrorCode = "InsufficientFunds"
	CodeMinimumBalanceViolation ErrorCode = "MinimumBalanceViolation"
	CodeAllocationError         ErrorCode = "AllocationError"
	CodePersistenceError        ErrorCode = "PersistenceError"
	CodePolicyResolutionError   ErrorCode = "PolicyResolutionError"
)

// Error is a typed ledger error. Message is safe to show to callers; Err keeps
// the lower-level cause for logs only.
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so callers can write errors.Is(err, domain.ErrInsufficientFunds).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinel errors
var (
	ErrInvalidAmount           = &Error{Code: CodeInvalidAmount, Message: "amount must be greater than zero with at most two decimal places"}
	ErrInvalidRequest          = &Error{Code: CodeInvalidRequest, Message: "invalid request"}
	ErrAccountNotFound         = &Error{Code: CodeAccountNotFound, Message: "account not found"}
	ErrAccountTypeNotFound     = &Error{Code: CodeAccountTypeNotFound, Message: "account type not found"}
	ErrBranchNotFound          = &Error{Code: CodeBranchNotFound, Message: "branch not found"}
	ErrFormNotFound            = &Error{Code: CodeFormNotFound, Message: "application form not found"}
	ErrInsufficientFunds       = &Error{Code: CodeInsufficientFunds, Message: "insufficient funds in the source account"}
	ErrMinimumBalanceViolation = &Error{Code: CodeMinimumBalanceViolation, Message: "minimum balance required"}
	ErrAllocation              = &Error{Code: CodeAllocationError, Message: "identifier allocation unavailable", Retryable: true}
	ErrPersistence             = &Error{Code: CodePersistenceError, Message: "ledger storage unavailable"}
	ErrPolicyResolution        = &Error{Code: CodePolicyResolutionError, Message: "account has no resolvable account type"}
)

// Wrap attaches a cause to a sentinel, keeping its code and safe message.
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{
		Code:      sentinel.Code,
		Message:   sentinel.Message,
		Retryable: sentinel.Retryable,
		Err:       cause,
	}
}

// Invalid builds an InvalidRequest error with a specific safe message.
func Invalid(msg string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: msg}
}

// PersistenceFailure wraps a storage failure. retryable marks lock conflicts and
// timeouts the caller may safely try again.
func PersistenceFailure(cause error, retryable bool) *Error {
	return &Error{
		Code:      CodePersistenceError,
		Message:   ErrPersistence.Message,
		Retryable: retryable,
		Err:       cause,
	}
}

// AsError extracts the typed ledger error from err. Untyped errors are reported
// as a non-retryable PersistenceError.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return PersistenceFailure(err, false)
}
