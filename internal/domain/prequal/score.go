package prequal

import (
	"strings"
	"time"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

const (
	ProceedThreshold = 70.0
	PassThreshold    = 50.0
)

// ValidateCriteria checks a criteria set before any scoring happens.
func ValidateCriteria(criteria []Criterion) error {
	const op = "prequal.validate_criteria"
	if len(criteria) == 0 {
		return gate.NewError(gate.CodeConfiguration, op, "no criteria configured", nil)
	}
	seen := make(map[string]struct{}, len(criteria))
	var maxScore float64
	for _, c := range criteria {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return gate.NewError(gate.CodeConfiguration, op, "criterion id is required", nil)
		}
		if _, dup := seen[id]; dup {
			return gate.Errorf(gate.CodeConfiguration, op, "duplicate criterion id %q", id)
		}
		seen[id] = struct{}{}
		if !c.Category.Valid() {
			return gate.Errorf(gate.CodeConfiguration, op, "criterion %q has unknown category %q", id, c.Category)
		}
		if c.Weight <= 0 {
			return gate.Errorf(gate.CodeConfiguration, op, "criterion %q must have a positive weight", id)
		}
		if len(c.Options) == 0 {
			return gate.Errorf(gate.CodeConfiguration, op, "criterion %q has no options", id)
		}
		values := make(map[string]struct{}, len(c.Options))
		for _, o := range c.Options {
			if _, dup := values[o.Value]; dup || o.Value == "" {
				return gate.Errorf(gate.CodeConfiguration, op, "criterion %q has a blank or duplicate option %q", id, o.Value)
			}
			values[o.Value] = struct{}{}
			if o.Score < 0 || o.Score > 100 {
				return gate.Errorf(gate.CodeConfiguration, op, "criterion %q option %q score %.1f outside 0-100", id, o.Value, o.Score)
			}
		}
		maxScore += c.Weight
	}
	if maxScore <= 0 {
		return gate.NewError(gate.CodeConfiguration, op, "criteria weights sum to zero", nil)
	}
	return nil
}

// Score computes the pre-qualification result from the full criteria list and
// the responses gathered so far. Unanswered criteria add nothing to the total
// but still count toward the maximum. Option scores are always read from the
// criterion definition, never from the stored response.
func Score(criteria []Criterion, responses map[string]Response) (Result, error) {
	const op = "prequal.score"
	var res Result
	for _, c := range criteria {
		res.MaxScore += c.Weight
	}
	if res.MaxScore <= 0 {
		return Result{}, gate.NewError(gate.CodeConfiguration, op, "maximum score is zero", nil)
	}

	for _, c := range criteria {
		r, answered := responses[c.ID]
		if !answered {
			continue
		}
		opt, ok := c.Option(r.Value)
		if !ok {
			return Result{}, gate.Errorf(gate.CodeValidation, op, "criterion %q has no option %q", c.ID, r.Value)
		}
		res.TotalScore += opt.Score / 100 * c.Weight
		if opt.Disqualifies {
			res.Disqualified = true
			res.DisqualificationReasons = append(res.DisqualificationReasons, c.Question)
		}
		r.Score = opt.Score
		res.Responses = append(res.Responses, r)
	}

	res.ScorePercentage = res.TotalScore / res.MaxScore * 100
	res.Recommendation = recommend(res.Disqualified, res.ScorePercentage)
	res.Passed = !res.Disqualified && res.ScorePercentage >= PassThreshold
	return res, nil
}

func recommend(disqualified bool, pct float64) Recommendation {
	switch {
	case disqualified:
		return RecommendReject
	case pct >= ProceedThreshold:
		return RecommendProceed
	case pct >= PassThreshold:
		return RecommendReview
	default:
		return RecommendReject
	}
}

// Verdict converts a finished result into the Intake gate outcome.
func (r Result) Verdict() gate.Verdict {
	const name = "prequal"
	if r.Disqualified {
		return gate.Fail(name, append([]string{"disqualified"}, r.DisqualificationReasons...)...)
	}
	if !r.Passed {
		return gate.Fail(name, "score below pass threshold")
	}
	return gate.Pass(name, "recommendation: "+string(r.Recommendation))
}

func stampResult(res Result, actor gate.Actor, at time.Time) Result {
	res.CompletedBy = actor.ID
	res.CompletedAt = at.UTC()
	return res
}
