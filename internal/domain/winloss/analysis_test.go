package winloss

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

var (
	reviewer = gate.Actor{ID: "bm-1", Role: "bid_manager"}
	done     = time.Date(2026, 10, 2, 16, 30, 0, 0, time.UTC)
	mid      = Ratings{TechnicalQuality: 4, PricingCompetitiveness: 2, PresentationQuality: 3, TeamPerformance: 5, TimelinessOfDelivery: 3}
)

func TestAnalyze_LostKeepsCompetitorDropsValue(t *testing.T) {
	value := decimal.RequireFromString("125000.50")
	a, err := Analyze("rfp-1", Input{
		Outcome:            OutcomeLost,
		PrimaryReason:      ReasonPricing,
		SecondaryReasons:   []Reason{ReasonTimeline, ReasonPricing, ReasonTimeline},
		CompetitorWon:      "  Acme Consulting ",
		FinalContractValue: &value,
		Ratings:            mid,
		Strengths:          []string{"strong references", " ", ""},
		LessonsLearned:     []string{" price earlier "},
	}, reviewer, done)
	require.NoError(t, err)

	assert.Equal(t, "Acme Consulting", a.CompetitorWon)
	assert.Nil(t, a.FinalContractValue)
	assert.Equal(t, []Reason{ReasonTimeline}, a.SecondaryReasons)
	assert.Equal(t, []string{"strong references"}, a.Strengths)
	assert.Equal(t, []string{"price earlier"}, a.LessonsLearned)
	assert.Empty(t, a.Weaknesses)
	assert.Equal(t, 3.4, a.AverageRating)
	assert.Equal(t, "bm-1", a.CompletedBy)
}

func TestAnalyze_WonKeepsValueDropsCompetitor(t *testing.T) {
	value := decimal.RequireFromString("98000")
	a, err := Analyze("rfp-1", Input{
		Outcome:            OutcomeWon,
		PrimaryReason:      ReasonRelationship,
		CompetitorWon:      "nobody",
		FinalContractValue: &value,
		Ratings:            mid,
	}, reviewer, done)
	require.NoError(t, err)
	assert.Empty(t, a.CompetitorWon)
	require.NotNil(t, a.FinalContractValue)
	assert.True(t, value.Equal(*a.FinalContractValue))
}

func TestAnalyze_Validation(t *testing.T) {
	neg := decimal.NewFromInt(-1)
	cases := map[string]Input{
		"bad_outcome":    {Outcome: "maybe", PrimaryReason: ReasonOther, Ratings: mid},
		"missing_reason": {Outcome: OutcomeLost, Ratings: mid},
		"rating_zero":    {Outcome: OutcomeLost, PrimaryReason: ReasonOther, Ratings: Ratings{1, 1, 1, 1, 0}},
		"rating_six":     {Outcome: OutcomeLost, PrimaryReason: ReasonOther, Ratings: Ratings{6, 1, 1, 1, 1}},
		"bad_secondary":  {Outcome: OutcomeLost, PrimaryReason: ReasonOther, Ratings: mid, SecondaryReasons: []Reason{"luck"}},
		"negative_value": {Outcome: OutcomeWon, PrimaryReason: ReasonOther, Ratings: mid, FinalContractValue: &neg},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Analyze("rfp-1", in, reviewer, done)
			assert.True(t, gate.IsCode(err, gate.CodeValidation), "got %v", err)
		})
	}
}

func TestRatingsAverage(t *testing.T) {
	assert.Equal(t, 1.0, Ratings{1, 1, 1, 1, 1}.Average())
	assert.Equal(t, 5.0, Ratings{5, 5, 5, 5, 5}.Average())
	assert.Equal(t, 3.2, Ratings{3, 3, 3, 3, 4}.Average())
}
