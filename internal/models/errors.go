package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks malformed or out-of-range input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks a referenced record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock marks a failed stock check.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStorage marks an infrastructure failure in the storage layer. Retryable.
	ErrStorage = errors.New("storage error")
	// ErrPredictionUnavailable marks a failed demand prediction.
	ErrPredictionUnavailable = errors.New("prediction unavailable")
	// ErrConflict marks a uniqueness violation, e.g. a taken username.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized marks bad credentials or tokens.
	ErrUnauthorized = errors.New("unauthorized")
)

// InvalidArgument returns an error wrapping ErrInvalidArgument.
func InvalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFoundError reports a missing record of a given kind.
type NotFoundError struct {
	Subject string
	ID      uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Subject, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientStockError carries the product and the quantity that was actually available.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)", e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StorageError wraps a driver error. It matches both ErrStorage and the cause.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// NewStorageError wraps err as a StorageError unless it already carries a domain meaning.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrStorage) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
