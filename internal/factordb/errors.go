package factordb

import (
	"errors"
	"fmt"

	"github.com/roach88/factordb/internal/store"
)

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeValidation indicates malformed input: a value out of range, a
	// non-divisor, or a primality change the factor does not allow.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeNotFound indicates a referenced number or factor is absent.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeNotBetter indicates the offered split is no improvement over
	// the stored one. Expected and common.
	ErrCodeNotBetter ErrorCode = "NOT_BETTER"

	// ErrCodeVerificationFailed indicates the requested primality test
	// disagrees with the asserted status.
	ErrCodeVerificationFailed ErrorCode = "VERIFICATION_FAILED"

	// ErrCodeResourceExhausted indicates the connection pool is saturated.
	ErrCodeResourceExhausted ErrorCode = "RESOURCE_EXHAUSTED"

	// ErrCodeInvariant indicates stored data contradicts itself.
	ErrCodeInvariant ErrorCode = "INTERNAL_INVARIANT"
)

// Error is the error type returned by every Engine operation.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// FactorID and NumberID identify the affected row, zero if not applicable.
	FactorID int64
	NumberID int64

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.FactorID != 0 {
		msg += fmt.Sprintf(" (factor=%d)", e.FactorID)
	}
	if e.NumberID != 0 {
		msg += fmt.Sprintf(" (number=%d)", e.NumberID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "" if
// there is none.
func CodeOf(err error) ErrorCode {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsNotBetter reports whether err rejects a split that is no improvement.
func IsNotBetter(err error) bool { return CodeOf(err) == ErrCodeNotBetter }

// IsVerificationFailed reports whether a primality test disagreed.
func IsVerificationFailed(err error) bool { return CodeOf(err) == ErrCodeVerificationFailed }

// IsResourceExhausted reports whether err came from a saturated pool.
// Matches both the engine error and the bare store sentinel.
func IsResourceExhausted(err error) bool {
	return CodeOf(err) == ErrCodeResourceExhausted || errors.Is(err, store.ErrResourceExhausted)
}

// IsInvariantViolation reports whether err signals corrupted data.
// Such errors are never absorbed by propagation.
func IsInvariantViolation(err error) bool { return CodeOf(err) == ErrCodeInvariant }

// isRejection reports whether err is an ordinary "no" from an attempt:
// best-effort loops log these and move on.
func isRejection(err error) bool {
	switch CodeOf(err) {
	case ErrCodeNotBetter, ErrCodeNotFound, ErrCodeValidation:
		return true
	}
	return false
}

func validationf(format string, args ...any) *Error {
	return &Error{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func invariantf(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvariant, Message: fmt.Sprintf(format, args...)}
}
