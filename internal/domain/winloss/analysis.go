// Package winloss records the retrospective taken once an RFP reaches a
// terminal stage.
package winloss

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

type Outcome string

const (
	OutcomeWon        Outcome = "won"
	OutcomeLost       Outcome = "lost"
	OutcomeNoDecision Outcome = "no-decision"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWon, OutcomeLost, OutcomeNoDecision:
		return true
	}
	return false
}

func (o *Outcome) UnmarshalText(b []byte) error {
	v := Outcome(b)
	if !v.Valid() {
		return fmt.Errorf("unknown outcome %q", string(b))
	}
	*o = v
	return nil
}

type Reason string

const (
	ReasonPricing      Reason = "pricing"
	ReasonTechnical    Reason = "technical"
	ReasonRelationship Reason = "relationship"
	ReasonExperience   Reason = "experience"
	ReasonTimeline     Reason = "timeline"
	ReasonCompliance   Reason = "compliance"
	ReasonTeam         Reason = "team"
	ReasonInnovation   Reason = "innovation"
	ReasonOther        Reason = "other"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonPricing, ReasonTechnical, ReasonRelationship, ReasonExperience, ReasonTimeline,
		ReasonCompliance, ReasonTeam, ReasonInnovation, ReasonOther:
		return true
	}
	return false
}

func (r *Reason) UnmarshalText(b []byte) error {
	v := Reason(b)
	if !v.Valid() {
		return fmt.Errorf("unknown win/loss reason %q", string(b))
	}
	*r = v
	return nil
}

// Ratings are 1 to 5 scores of how the pursuit went.
type Ratings struct {
	TechnicalQuality       int `json:"technical_quality"`
	PricingCompetitiveness int `json:"pricing_competitiveness"`
	PresentationQuality    int `json:"presentation_quality"`
	TeamPerformance        int `json:"team_performance"`
	TimelinessOfDelivery   int `json:"timeliness_of_delivery"`
}

func (r Ratings) values() map[string]int {
	return map[string]int{
		"technical_quality":       r.TechnicalQuality,
		"pricing_competitiveness": r.PricingCompetitiveness,
		"presentation_quality":    r.PresentationQuality,
		"team_performance":        r.TeamPerformance,
		"timeliness_of_delivery":  r.TimelinessOfDelivery,
	}
}

// Average is the mean rating rounded to one decimal.
func (r Ratings) Average() float64 {
	sum := r.TechnicalQuality + r.PricingCompetitiveness + r.PresentationQuality + r.TeamPerformance + r.TimelinessOfDelivery
	return math.Round(float64(sum)/5*10) / 10
}

// Input is what the retrospective form submits.
type Input struct {
	Outcome            Outcome          `json:"outcome"`
	PrimaryReason      Reason           `json:"primary_reason"`
	SecondaryReasons   []Reason         `json:"secondary_reasons,omitempty"`
	CompetitorWon      string           `json:"competitor_won,omitempty"`
	FinalContractValue *decimal.Decimal `json:"final_contract_value,omitempty"`
	Ratings            Ratings          `json:"ratings"`
	Strengths          []string         `json:"strengths,omitempty"`
	Weaknesses         []string         `json:"weaknesses,omitempty"`
	LessonsLearned     []string         `json:"lessons_learned,omitempty"`
	TeamFeedback       string           `json:"team_feedback,omitempty"`
	ActionItems        []string         `json:"action_items,omitempty"`
}

type Analysis struct {
	RFPID              string           `json:"rfp_id"`
	Outcome            Outcome          `json:"outcome"`
	PrimaryReason      Reason           `json:"primary_reason"`
	SecondaryReasons   []Reason         `json:"secondary_reasons"`
	CompetitorWon      string           `json:"competitor_won,omitempty"`
	FinalContractValue *decimal.Decimal `json:"final_contract_value,omitempty"`
	Ratings            Ratings          `json:"ratings"`
	AverageRating      float64          `json:"average_rating"`
	Strengths          []string         `json:"strengths"`
	Weaknesses         []string         `json:"weaknesses"`
	LessonsLearned     []string         `json:"lessons_learned"`
	TeamFeedback       string           `json:"team_feedback,omitempty"`
	ActionItems        []string         `json:"action_items"`
	CompletedBy        string           `json:"completed_by"`
	CompletedAt        time.Time        `json:"completed_at"`
}

// Analyze validates a retrospective and normalizes it. The competitor is only
// kept for a loss and the contract value only for a win.
func Analyze(rfpID string, in Input, actor gate.Actor, at time.Time) (Analysis, error) {
	const op = "winloss.analyze"
	if err := gate.RequireActor(op, actor); err != nil {
		return Analysis{}, err
	}
	if !in.Outcome.Valid() {
		return Analysis{}, gate.Errorf(gate.CodeValidation, op, "unknown outcome %q", in.Outcome)
	}
	if !in.PrimaryReason.Valid() {
		return Analysis{}, gate.NewError(gate.CodeValidation, op, "a primary reason is required", nil)
	}
	for field, v := range in.Ratings.values() {
		if v < 1 || v > 5 {
			return Analysis{}, gate.Errorf(gate.CodeValidation, op, "%s must be between 1 and 5, got %d", field, v)
		}
	}

	a := Analysis{
		RFPID:          rfpID,
		Outcome:        in.Outcome,
		PrimaryReason:  in.PrimaryReason,
		Ratings:        in.Ratings,
		AverageRating:  in.Ratings.Average(),
		Strengths:      compact(in.Strengths),
		Weaknesses:     compact(in.Weaknesses),
		LessonsLearned: compact(in.LessonsLearned),
		TeamFeedback:   strings.TrimSpace(in.TeamFeedback),
		ActionItems:    compact(in.ActionItems),
		CompletedBy:    actor.ID,
		CompletedAt:    at.UTC(),
	}

	seen := map[Reason]bool{in.PrimaryReason: true}
	a.SecondaryReasons = []Reason{}
	for _, r := range in.SecondaryReasons {
		if !r.Valid() {
			return Analysis{}, gate.Errorf(gate.CodeValidation, op, "unknown secondary reason %q", r)
		}
		if !seen[r] {
			seen[r] = true
			a.SecondaryReasons = append(a.SecondaryReasons, r)
		}
	}

	switch in.Outcome {
	case OutcomeLost:
		a.CompetitorWon = strings.TrimSpace(in.CompetitorWon)
	case OutcomeWon:
		if in.FinalContractValue != nil {
			if in.FinalContractValue.IsNegative() {
				return Analysis{}, gate.NewError(gate.CodeValidation, op, "final contract value cannot be negative", nil)
			}
			v := *in.FinalContractValue
			a.FinalContractValue = &v
		}
	}
	return a, nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
