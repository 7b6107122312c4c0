// Package apperror defines the error taxonomy shared by the identity
// service and its HTTP boundary.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for status-code mapping and client messages.
type Kind string

const (
	KindInvalidInput        Kind = "InvalidInput"
	KindUnauthorized        Kind = "Unauthorized"
	KindConstraintViolation Kind = "ConstraintViolation"
	KindNotFound            Kind = "NotFound"
	KindInternal            Kind = "InternalFailure"
)

// Error carries a classification plus a human-readable detail. The rendered
// message is what the HTTP boundary returns to callers; internal causes are
// logged server-side, never serialized.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s : %s", e.Kind, e.Detail)
}

// New builds a classified error.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Newf builds a classified error with a formatted detail.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// KindOf extracts the classification from err, unwrapping as needed.
// Unclassified errors report KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message renders err the way the HTTP boundary reports failures:
// "<Kind> : <detail>". Internal and unclassified errors both collapse to a
// generic message so driver or stack detail never leaks to the caller; the
// full error stays in the server-side log.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return ae.Error()
	}
	return fmt.Sprintf("%s : %s", KindInternal, "unexpected error")
}
