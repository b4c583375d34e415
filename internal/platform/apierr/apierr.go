package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// StatusFor maps an engine error code to an HTTP status.
func StatusFor(code gate.ErrorCode) int {
	switch code {
	case gate.CodeValidation:
		return http.StatusBadRequest
	case gate.CodeUnknownVoter:
		return http.StatusForbidden
	case gate.CodeNotFound:
		return http.StatusNotFound
	case gate.CodeInvalidTransition, gate.CodeDuplicateVote, gate.CodeRoundClosed, gate.CodeConflict, gate.CodeGateBlocked:
		return http.StatusConflict
	case gate.CodeConfiguration:
		return http.StatusUnprocessableEntity
	case gate.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// From converts any error into an API error. Existing API errors pass
// through; engine errors keep their code; everything else is internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if code := gate.CodeOf(err); code != "" {
		return New(StatusFor(code), string(code), err)
	}
	return New(http.StatusInternalServerError, string(gate.CodeInternal), err)
}
