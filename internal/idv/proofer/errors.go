package proofer

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized vendor failure taxonomy.
type ErrorCategory string

const (
	// ErrorTimeout indicates the vendor took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the vendor returned an invalid or malformed response.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorOutage indicates the vendor is unavailable.
	ErrorOutage ErrorCategory = "outage"

	// ErrorInternal indicates an unexpected internal error.
	ErrorInternal ErrorCategory = "internal"
)

// VendorError wraps vendor failures with normalized categorization. It is a
// distinct condition from a negative Resolution: the user received no
// adjudication.
type VendorError struct {
	Category   ErrorCategory
	Message    string
	Underlying error
	Retryable  bool
}

// Error implements the error interface.
func (e *VendorError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("proofing vendor [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("proofing vendor [%s]: %s", e.Category, e.Message)
}

// Unwrap supports error unwrapping.
func (e *VendorError) Unwrap() error {
	return e.Underlying
}

// NewVendorError creates a new normalized vendor error. Timeouts and outages
// are marked retryable.
func NewVendorError(category ErrorCategory, message string, underlying error) *VendorError {
	return &VendorError{
		Category:   category,
		Message:    message,
		Underlying: underlying,
		Retryable:  category == ErrorTimeout || category == ErrorOutage,
	}
}

// IsUnavailable reports whether err represents a vendor-unavailable
// condition rather than an adjudicated rejection.
func IsUnavailable(err error) bool {
	var ve *VendorError
	return errors.As(err, &ve)
}

// GetCategory extracts the error category from an error.
func GetCategory(err error) ErrorCategory {
	var ve *VendorError
	if errors.As(err, &ve) {
		return ve.Category
	}
	return ErrorInternal
}
