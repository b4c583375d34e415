// Package gate holds the error taxonomy and verdict type shared by every
// evaluator.
package gate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes decision-gate failure semantics across evaluators.
type ErrorCode string

const (
	CodeInvalidTransition ErrorCode = "invalid_transition"
	CodeConfiguration     ErrorCode = "configuration"
	CodeDuplicateVote     ErrorCode = "duplicate_vote"
	CodeUnknownVoter      ErrorCode = "unknown_voter"
	CodeRoundClosed       ErrorCode = "round_closed"
	CodeNotFound          ErrorCode = "not_found"
	CodeValidation        ErrorCode = "validation"
	CodeConflict          ErrorCode = "conflict"
	CodeGateBlocked       ErrorCode = "gate_blocked"
	CodeRetryable         ErrorCode = "retryable"
	CodeInternal          ErrorCode = "internal"
)

// Error is the canonical evaluator error. Evaluators return it as a value; a
// rejected mutation never has partially applied effects.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Errorf is NewError with a formatted message and no cause.
func Errorf(code ErrorCode, op, format string, args ...any) error {
	return NewError(code, op, fmt.Sprintf(format, args...), nil)
}

// Wrap annotates an existing error with gate error semantics.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var gateErr *Error
	if !errors.As(err, &gateErr) {
		return false
	}
	return gateErr.Code == code
}

// CodeOf extracts the error code when available.
func CodeOf(err error) ErrorCode {
	var gateErr *Error
	if !errors.As(err, &gateErr) {
		return ""
	}
	return gateErr.Code
}
