package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrNotFound           ErrorType = "NOT_FOUND"
	ErrInvalidStatus      ErrorType = "INVALID_STATUS"
	ErrStoreUnavailable   ErrorType = "STORE_UNAVAILABLE"
	ErrPartialUpdate      ErrorType = "PARTIAL_UPDATE"
	ErrPreconditionFailed ErrorType = "PRECONDITION_FAILED"
	ErrInternal           ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type      ErrorType
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:      errType,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ErrNotFound
	}
	if _, ok := err.(*AccountNotFoundError); ok {
		return true
	}
	return false
}

// IsInvalidStatus checks if the error is an invalid status error
func IsInvalidStatus(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ErrInvalidStatus
	}
	return false
}

// IsStoreUnavailable checks if the error is a transient store error
func IsStoreUnavailable(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ErrStoreUnavailable
	}
	return false
}

// IsPartialUpdate checks if the error is a partial update error
func IsPartialUpdate(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ErrPartialUpdate
	}
	return false
}

// IsPreconditionFailed checks if the error is a precondition failure
func IsPreconditionFailed(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ErrPreconditionFailed
	}
	return false
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, err error) *AppError {
	return New(ErrNotFound, message, err)
}

// NewInvalidStatusError creates a new invalid status error
func NewInvalidStatusError(message string, err error) *AppError {
	return New(ErrInvalidStatus, message, err)
}

// NewStoreUnavailableError creates a new store unavailable error
func NewStoreUnavailableError(message string, err error) *AppError {
	return New(ErrStoreUnavailable, message, err)
}

// NewPartialUpdateError creates a new partial update error
func NewPartialUpdateError(message string, err error) *AppError {
	return New(ErrPartialUpdate, message, err)
}

// NewPreconditionFailedError creates a new precondition failure error
func NewPreconditionFailedError(message string, err error) *AppError {
	return New(ErrPreconditionFailed, message, err)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return New(ErrInternal, message, err)
}

// AccountNotFoundError represents an account that does not exist
type AccountNotFoundError struct {
	OrderID string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account not found: %s", e.OrderID)
}

// NewAccountNotFoundError creates a new AccountNotFoundError
func NewAccountNotFoundError(orderID string) error {
	return &AccountNotFoundError{
		OrderID: orderID,
	}
}
