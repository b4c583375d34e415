package prequal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

var (
	analyst = gate.Actor{ID: "analyst-1", Role: "capture"}
	t0      = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func twoCriteria() []Criterion {
	return []Criterion{
		{
			ID: "fit", Category: CategoryStrategic, Question: "Strategic fit?", Weight: 60, Required: true,
			Options: []Option{
				{Value: "high", Score: 100},
				{Value: "mid", Score: 50},
				{Value: "none", Score: 90, Disqualifies: true},
			},
		},
		{
			ID: "team", Category: CategoryResource, Question: "Team available?", Weight: 40,
			Options: []Option{
				{Value: "yes", Score: 100},
				{Value: "partly", Score: 25},
				{Value: "no", Score: 0},
			},
		},
	}
}

func answers(kv ...string) map[string]Response {
	out := map[string]Response{}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = Response{CriterionID: kv[i], Value: kv[i+1]}
	}
	return out
}

func TestScore_Recommendations(t *testing.T) {
	cases := []struct {
		name    string
		resp    map[string]Response
		wantPct float64
		wantRec Recommendation
		passed  bool
	}{
		{"all_top", answers("fit", "high", "team", "yes"), 100, RecommendProceed, true},
		{"exactly_70", answers("fit", "mid", "team", "yes"), 70, RecommendProceed, true},
		{"below_review_band", answers("fit", "mid", "team", "partly"), 40, RecommendReject, false},
		{"team_unanswered", answers("fit", "mid"), 30, RecommendReject, false},
		{"review", answers("fit", "high", "team", "no"), 60, RecommendReview, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Score(twoCriteria(), tc.resp)
			require.NoError(t, err)
			assert.InDelta(t, tc.wantPct, res.ScorePercentage, 1e-9)
			assert.Equal(t, tc.wantRec, res.Recommendation)
			assert.Equal(t, tc.passed, res.Passed)
			assert.Equal(t, 100.0, res.MaxScore)
		})
	}
}

func TestScore_DisqualifierAlwaysRejects(t *testing.T) {
	res, err := Score(twoCriteria(), answers("fit", "none", "team", "yes"))
	require.NoError(t, err)
	assert.True(t, res.Disqualified)
	assert.False(t, res.Passed)
	assert.Equal(t, RecommendReject, res.Recommendation)
	assert.Equal(t, []string{"Strategic fit?"}, res.DisqualificationReasons)
	// The disqualifying option still contributes its numeric score.
	assert.InDelta(t, 94.0, res.ScorePercentage, 1e-9)
	assert.Equal(t, gate.OutcomeFail, res.Verdict().Outcome)
}

func TestScore_MonotonicInOptionScore(t *testing.T) {
	order := []string{"no", "partly", "yes"}
	prev := -1.0
	for _, v := range order {
		res, err := Score(twoCriteria(), answers("fit", "mid", "team", v))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.ScorePercentage, prev)
		prev = res.ScorePercentage
	}
}

func TestScore_ZeroMaxIsConfigurationError(t *testing.T) {
	_, err := Score(nil, nil)
	assert.True(t, gate.IsCode(err, gate.CodeConfiguration))

	_, err = Score([]Criterion{{ID: "x", Weight: 0}}, nil)
	assert.True(t, gate.IsCode(err, gate.CodeConfiguration))
}

func TestScore_UnknownOption(t *testing.T) {
	_, err := Score(twoCriteria(), answers("fit", "maybe"))
	assert.True(t, gate.IsCode(err, gate.CodeValidation))
}

func TestValidateCriteria(t *testing.T) {
	assert.NoError(t, ValidateCriteria(twoCriteria()))

	bad := twoCriteria()
	bad[1].ID = "fit"
	assert.True(t, gate.IsCode(ValidateCriteria(bad), gate.CodeConfiguration))

	bad = twoCriteria()
	bad[0].Options[0].Score = 120
	assert.True(t, gate.IsCode(ValidateCriteria(bad), gate.CodeConfiguration))

	bad = twoCriteria()
	bad[0].Weight = -1
	assert.True(t, gate.IsCode(ValidateCriteria(bad), gate.CodeConfiguration))
}

func TestDefaultCriteria(t *testing.T) {
	cs := DefaultCriteria()
	require.Len(t, cs, 7)
	var sum float64
	for _, c := range cs {
		sum += c.Weight
	}
	assert.Equal(t, 100.0, sum)
}

func TestParseCatalog_RejectsUnknownCategory(t *testing.T) {
	_, err := ParseCatalog([]byte(`
criteria:
  - id: a
    category: astrology
    question: q
    weight: 1
    options: [{value: x, score: 1}]
`))
	assert.Error(t, err)
}
