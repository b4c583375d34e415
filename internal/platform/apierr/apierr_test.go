package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

func TestFrom(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{gate.Errorf(gate.CodeInvalidTransition, "op", "x"), http.StatusConflict, "invalid_transition"},
		{gate.Errorf(gate.CodeConfiguration, "op", "x"), http.StatusUnprocessableEntity, "configuration"},
		{gate.Errorf(gate.CodeDuplicateVote, "op", "x"), http.StatusConflict, "duplicate_vote"},
		{gate.Errorf(gate.CodeRoundClosed, "op", "x"), http.StatusConflict, "round_closed"},
		{gate.Errorf(gate.CodeUnknownVoter, "op", "x"), http.StatusForbidden, "unknown_voter"},
		{gate.Errorf(gate.CodeNotFound, "op", "x"), http.StatusNotFound, "not_found"},
		{gate.Errorf(gate.CodeValidation, "op", "x"), http.StatusBadRequest, "validation"},
		{fmt.Errorf("wrapped: %w", gate.Errorf(gate.CodeGateBlocked, "op", "x")), http.StatusConflict, "gate_blocked"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
		{New(http.StatusTeapot, "teapot", nil), http.StatusTeapot, "teapot"},
	}
	for _, tc := range cases {
		got := From(tc.err)
		assert.Equal(t, tc.status, got.Status, tc.code)
		assert.Equal(t, tc.code, got.Code)
	}
	assert.Nil(t, From(nil))
}
