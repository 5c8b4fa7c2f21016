package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure so callers can react without parsing messages.
type Kind string

const (
	KindBatchUnavailable    Kind = "BATCH_UNAVAILABLE"
	KindInsufficientStock   Kind = "INSUFFICIENT_STOCK"
	KindInvalidState        Kind = "INVALID_STATE"
	KindInvalidQuantity     Kind = "INVALID_QUANTITY"
	KindMissingReason       Kind = "MISSING_REASON"
	KindMissingDispatchInfo Kind = "MISSING_DISPATCH_INFO"
	KindNotFound            Kind = "NOT_FOUND"
	KindValidationFailed    Kind = "VALIDATION_FAILED"
	KindConflict            Kind = "CONFLICT"
)

// Error is a business-rule violation. Expected failures travel as *Error values;
// exceptions stay reserved for genuinely unexpected states.
type Error struct {
	Kind    Kind
	Message string

	// Details and Warnings carry the structured lists produced by
	// technical-property validation. Empty for every other kind.
	Details  []string
	Warnings []string
}

func (e *Error) Error() string { return e.Message }

// New builds an Error with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a ValidationFailed error carrying the individual check results.
func Validation(message string, details, warnings []string) *Error {
	return &Error{Kind: KindValidationFailed, Message: message, Details: details, Warnings: warnings}
}

// KindOf extracts the Kind from err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err is a domain error of the given kind.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }
