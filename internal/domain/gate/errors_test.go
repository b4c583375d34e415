package gate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCode_ThroughWrapping(t *testing.T) {
	base := NewError(CodeDuplicateVote, "voting.submit", "member already voted", nil)
	wrapped := fmt.Errorf("service: %w", base)

	assert.True(t, IsCode(wrapped, CodeDuplicateVote))
	assert.False(t, IsCode(wrapped, CodeRoundClosed))
	assert.Equal(t, CodeDuplicateVote, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestErrorString(t *testing.T) {
	err := NewError(CodeNotFound, "risk.update", "risk r-1 not found", nil)
	assert.Equal(t, "risk.update: risk r-1 not found (not_found)", err.Error())
	assert.Equal(t, "configuration", (&Error{Code: CodeConfiguration}).Error())
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(CodeInternal, "op", nil))
	cause := errors.New("boom")
	err := Wrap(CodeInternal, "op", cause)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestVerdictDropsBlankReasons(t *testing.T) {
	v := Fail("prequal", "", "  ", "score below threshold")
	assert.Equal(t, []string{"score below threshold"}, v.Reasons)
	assert.False(t, v.Passed())
	assert.True(t, Pass("any").Passed())
}

func TestRequireActor(t *testing.T) {
	assert.True(t, IsCode(RequireActor("op", Actor{}), CodeValidation))
	assert.NoError(t, RequireActor("op", Actor{ID: "u-1"}))
}
