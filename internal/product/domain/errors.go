package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateSKU = errors.New("duplicate_sku")
	ErrInvalidID    = errors.New("invalid_id")
	ErrEmptyUpdate  = errors.New("empty_update")
	ErrNotFound     = errors.New("not_found")
	ErrSKUBusy      = errors.New("sku_busy")
)

// Error pairs one of the sentinel errors above with the message shown to API clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func DuplicateSKUError(sku string) error {
	return &Error{Kind: ErrDuplicateSKU, Message: fmt.Sprintf("Product with SKU %s already exists", sku)}
}

func InvalidIDError() error {
	return &Error{Kind: ErrInvalidID, Message: "Invalid product ID"}
}

func EmptyUpdateError() error {
	return &Error{Kind: ErrEmptyUpdate, Message: "No update data provided"}
}

func NotFoundError(id int64) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("Product with ID %d not found", id)}
}

func SKUBusyError(sku string) error {
	return &Error{Kind: ErrSKUBusy, Message: fmt.Sprintf("Product with SKU %s is being written, retry later", sku)}
}

// ValidationError reports the first rule a payload broke.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}

// AsValidationError returns the ValidationError wrapped in err, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) && vErr != nil {
		return vErr, true
	}
	return nil, false
}
