package errx

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure for callers that branch on it.
type Code string

const (
	CodeParseFailure       Code = "PARSE_FAILURE"
	CodeItemNotFound       Code = "ITEM_NOT_FOUND"
	CodeInsufficientStock  Code = "INSUFFICIENT_STOCK"
	CodeInvalidQuantity    Code = "INVALID_QUANTITY"
	CodeAccountNotFound    Code = "ACCOUNT_NOT_FOUND"
	CodeInsufficientCredit Code = "INSUFFICIENT_CREDIT"
	CodeInvalidAmount      Code = "INVALID_AMOUNT"
	CodeCommitFailed       Code = "COMMIT_FAILED"
	CodeCreditCommitFailed Code = "CREDIT_COMMIT_FAILED"
	CodeClassifierFailure  Code = "CLASSIFIER_FAILURE"
	CodeStoreUnavailable   Code = "STORE_UNAVAILABLE"
	CodeInternal           Code = "INTERNAL"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// StoreErrorMessage describes record store failures.
	StoreErrorMessage = "record store unavailable"
)

// statusByCode maps each code onto the HTTP status the transport reports.
var statusByCode = map[Code]int{
	CodeParseFailure:       http.StatusUnprocessableEntity,
	CodeItemNotFound:       http.StatusNotFound,
	CodeInsufficientStock:  http.StatusConflict,
	CodeInvalidQuantity:    http.StatusBadRequest,
	CodeAccountNotFound:    http.StatusNotFound,
	CodeInsufficientCredit: http.StatusPaymentRequired,
	CodeInvalidAmount:      http.StatusBadRequest,
	CodeCommitFailed:       http.StatusBadGateway,
	CodeCreditCommitFailed: http.StatusBadGateway,
	CodeClassifierFailure:  http.StatusBadGateway,
	CodeStoreUnavailable:   http.StatusServiceUnavailable,
	CodeInternal:           http.StatusInternalServerError,
}

// StatusFor returns the HTTP status associated with code.
func StatusFor(code Code) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// AppError wraps an underlying error with a code, an HTTP status and a safe message.
type AppError struct {
	Code    Code
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(code Code, err error, message string) *AppError {
	return &AppError{
		Code:    code,
		Err:     err,
		Status:  StatusFor(code),
		Message: message,
	}
}

// Newf creates an AppError without an underlying cause.
func Newf(code Code, format string, args ...any) *AppError {
	return New(code, nil, fmt.Sprintf(format, args...))
}

// WrapStore marks a record or session store fault as STORE_UNAVAILABLE.
func WrapStore(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == CodeStoreUnavailable {
		return appErr
	}
	return New(CodeStoreUnavailable, err, StoreErrorMessage)
}

// CodeOf extracts the code carried by err, or CodeInternal when there is none.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether the target matches the underlying error or carries the same code.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return t.Code == e.Code
	}
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return errors.As(e.Err, target)
}
