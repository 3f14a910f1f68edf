// Package apperr defines the error kinds surfaced to callers of the catalog,
// ledger and stock operations.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStorage           = errors.New("storage failure")
	ErrUnauthorized      = errors.New("unauthorized")
)

// Validation returns an error wrapping ErrValidation.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an error wrapping ErrNotFound for the given SKU.
func NotFound(sku string) error {
	return fmt.Errorf("%w: sku %q", ErrNotFound, sku)
}

// InsufficientStock reports an issue that exceeds the on-hand quantity.
func InsufficientStock(sku string, onHand, requested int) error {
	return fmt.Errorf("%w: sku %q has %d, requested %d", ErrInsufficientStock, sku, onHand, requested)
}

// Unauthorized returns an error wrapping ErrUnauthorized.
func Unauthorized(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, reason)
}

// StorageError wraps a failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// Storage wraps err as a StorageError. A nil err returns nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// UserMessage maps an error to text suitable for showing to the end user.
// Storage failures are reduced to a generic message; the caller is expected
// to log the technical error separately.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStorage):
		return "The inventory store could not complete the request. Please try again."
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrUnauthorized):
		return err.Error()
	default:
		return "Something went wrong: " + err.Error()
	}
}
