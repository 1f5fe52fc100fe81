package kernel

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes kernel errors.
type ErrorCode string

const (
	// CodeUnknownTermKind indicates a term is neither a variable nor a
	// ground term - an internal invariant is broken.
	CodeUnknownTermKind ErrorCode = "UNKNOWN_TERM_KIND"

	// CodeCloneUnsupported indicates an attempt to duplicate an
	// identity-stable rule kernel.
	CodeCloneUnsupported ErrorCode = "CLONE_UNSUPPORTED"
)

// Error is a categorized kernel error.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func codeIs(err error, code ErrorCode) bool {
	var ke *Error
	if errors.As(err, &ke) {
		return ke.Code == code
	}
	return false
}

// IsUnknownTermKind reports whether err is an UnknownTermKind error.
// Uses errors.As to handle wrapped errors.
func IsUnknownTermKind(err error) bool { return codeIs(err, CodeUnknownTermKind) }

// IsCloneUnsupported reports whether err is a CloneUnsupported error.
func IsCloneUnsupported(err error) bool { return codeIs(err, CodeCloneUnsupported) }
