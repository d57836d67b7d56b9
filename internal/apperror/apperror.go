// Package apperror defines the error kinds the service surfaces to callers.
// Every failure keeps its specific kind so HTTP handlers can map it to the
// correct response instead of collapsing everything into a 500.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindDuplicateKey
	KindStaleVersion
	KindPasswordPolicy
	KindCorruptCredential
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicateKey:
		return "duplicate_key"
	case KindStaleVersion:
		return "stale_version"
	case KindPasswordPolicy:
		return "password_policy"
	case KindCorruptCredential:
		return "corrupt_credential"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error carries a kind, a caller-facing message and an optional wrapped cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

func DuplicateKey(format string, args ...interface{}) *Error {
	return newError(KindDuplicateKey, format, args...)
}

func StaleVersion(format string, args ...interface{}) *Error {
	return newError(KindStaleVersion, format, args...)
}

func PasswordPolicy(format string, args ...interface{}) *Error {
	return newError(KindPasswordPolicy, format, args...)
}

func CorruptCredential(msg string, cause error) *Error {
	return &Error{Kind: KindCorruptCredential, Message: msg, Err: cause}
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

// KindOf extracts the kind from an error chain, KindUnknown if none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind anywhere in its chain
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
