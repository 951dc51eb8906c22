package ledger

import (
	"errors"
	"fmt"
)

// Engine error codes as reported by the ledger's script API, plus
// CodeUnavailable for transport-level failures the engine never saw.
const (
	CodeUnavailable      = "UNAVAILABLE"
	CodeInsufficientFund = "INSUFFICIENT_FUND"
	CodeConflict         = "CONFLICT"
	CodeValidation       = "VALIDATION"
	CodeInternal         = "INTERNAL"
)

// Error is a failure reported by, or on the way to, the ledger engine.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ledger: %s: %s", e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("ledger: %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("ledger: %s", e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// HasCode reports whether err is a ledger error carrying the given code.
func HasCode(err error, code string) bool {
	var le *Error
	return errors.As(err, &le) && le.Code == code
}

// IsUnavailable reports a transient transport failure: the whole operation is
// safe to retry because the engine either never received it or its scripts
// guard against replay.
func IsUnavailable(err error) bool {
	return HasCode(err, CodeUnavailable)
}

// IsRejected reports that the engine received the request and refused it.
// Blind retries will refuse again; callers must decide whether the rejection
// is a benign duplicate or a bug.
func IsRejected(err error) bool {
	return HasCode(err, CodeInsufficientFund) ||
		HasCode(err, CodeConflict) ||
		HasCode(err, CodeValidation)
}

func unavailable(err error) *Error {
	return &Error{Code: CodeUnavailable, Err: err}
}
