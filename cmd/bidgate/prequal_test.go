package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/bidgate-backend/internal/domain/prequal"
)

func TestScoreAnswers(t *testing.T) {
	criteria := prequal.DefaultCriteria()

	res, err := scoreAnswers(criteria, map[string]string{
		"strat-1": "perfect", "strat-2": "tier1", "fin-1": "large", "fin-2": "favorable",
		"tech-1": "proven", "tech-2": "realistic", "res-1": "available",
	})
	require.NoError(t, err)
	assert.False(t, res.Disqualified)
	assert.Equal(t, prequal.RecommendProceed, res.Recommendation)

	res, err = scoreAnswers(criteria, map[string]string{"fin-1": "minimal"})
	require.NoError(t, err)
	assert.True(t, res.Disqualified)
	assert.Equal(t, prequal.RecommendReject, res.Recommendation)

	_, err = scoreAnswers(criteria, map[string]string{"nope": "x"})
	assert.ErrorContains(t, err, "unknown criterion")
}

func TestPrequalScoreCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strat-1: none\n"), 0o600))

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"prequal", "score", path})
	require.NoError(t, cmd.Execute())

	var got struct {
		Result  prequal.Result `json:"result"`
		Verdict struct {
			Outcome string `json:"outcome"`
		} `json:"verdict"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.True(t, got.Result.Disqualified)
	assert.Equal(t, "fail", got.Verdict.Outcome)
}

func TestPrequalScoreCommand_Stdin(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(`{"strat-1": "perfect"}`))
	cmd.SetArgs([]string{"prequal", "score", "-"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"score_percentage"`)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "bidgate version")
}
