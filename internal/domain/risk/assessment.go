package risk

import (
	"math"
	"strings"
	"time"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

// Score is probability ordinal times impact ordinal, 1 through 9.
func Score(probability, impact Level) int {
	return probability.Ordinal() * impact.Ordinal()
}

// LevelFor thresholds an overall score into a posture.
func LevelFor(score float64) Posture {
	switch {
	case score <= 2:
		return PostureLow
	case score <= 4:
		return PostureMedium
	case score <= 6:
		return PostureHigh
	default:
		return PostureCritical
	}
}

// Compute recomputes every item score and then the aggregate from them.
func Compute(a Assessment) Assessment {
	risks := make([]Risk, len(a.Risks))
	var sum int
	for i, r := range a.Risks {
		r.RiskScore = Score(r.Probability, r.Impact)
		sum += r.RiskScore
		risks[i] = r
	}
	a.Risks = risks
	if len(risks) == 0 {
		a.OverallRiskScore = 0
		a.RiskLevel = PostureLow
		return a
	}
	mean := float64(sum) / float64(len(risks))
	a.OverallRiskScore = math.Round(mean*10) / 10
	a.RiskLevel = LevelFor(a.OverallRiskScore)
	return a
}

func New(rfpID string, actor gate.Actor, at time.Time) Assessment {
	return Compute(Assessment{RFPID: rfpID, Risks: []Risk{}, AssessedBy: actor.ID, AssessedAt: at.UTC()})
}

func AddRisk(a Assessment, actor gate.Actor, r Risk, at time.Time) (Assessment, error) {
	const op = "risk.add"
	if err := gate.RequireActor(op, actor); err != nil {
		return a, err
	}
	r.ID = strings.TrimSpace(r.ID)
	if r.ID == "" {
		return a, gate.NewError(gate.CodeValidation, op, "risk id is required", nil)
	}
	if _, ok := a.index(r.ID); ok {
		return a, gate.Errorf(gate.CodeConflict, op, "risk %q already exists", r.ID)
	}
	if r.Status == "" {
		r.Status = StatusIdentified
	}
	r.Description = strings.TrimSpace(r.Description)
	if err := validate(op, r); err != nil {
		return a, err
	}
	next := a
	next.Risks = append(append(make([]Risk, 0, len(a.Risks)+1), a.Risks...), r)
	return touch(next, actor, at), nil
}

func UpdateRisk(a Assessment, actor gate.Actor, id string, p Patch, at time.Time) (Assessment, error) {
	const op = "risk.update"
	if err := gate.RequireActor(op, actor); err != nil {
		return a, err
	}
	i, ok := a.index(id)
	if !ok {
		return a, gate.Errorf(gate.CodeNotFound, op, "risk %q not found", id)
	}
	r := a.Risks[i]
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Description != nil {
		r.Description = strings.TrimSpace(*p.Description)
	}
	if p.Probability != nil {
		r.Probability = *p.Probability
	}
	if p.Impact != nil {
		r.Impact = *p.Impact
	}
	if p.Mitigation != nil {
		r.Mitigation = strings.TrimSpace(*p.Mitigation)
	}
	if p.Owner != nil {
		r.Owner = strings.TrimSpace(*p.Owner)
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if err := validate(op, r); err != nil {
		return a, err
	}
	next := a
	next.Risks = make([]Risk, len(a.Risks))
	copy(next.Risks, a.Risks)
	next.Risks[i] = r
	return touch(next, actor, at), nil
}

func RemoveRisk(a Assessment, actor gate.Actor, id string, at time.Time) (Assessment, error) {
	const op = "risk.remove"
	if err := gate.RequireActor(op, actor); err != nil {
		return a, err
	}
	i, ok := a.index(id)
	if !ok {
		return a, gate.Errorf(gate.CodeNotFound, op, "risk %q not found", id)
	}
	next := a
	next.Risks = make([]Risk, 0, len(a.Risks)-1)
	next.Risks = append(next.Risks, a.Risks[:i]...)
	next.Risks = append(next.Risks, a.Risks[i+1:]...)
	return touch(next, actor, at), nil
}

// SetMitigationPlan records the assessment-wide mitigation narrative.
func SetMitigationPlan(a Assessment, actor gate.Actor, plan string, at time.Time) (Assessment, error) {
	if err := gate.RequireActor("risk.mitigation_plan", actor); err != nil {
		return a, err
	}
	a.MitigationPlan = strings.TrimSpace(plan)
	return touch(a, actor, at), nil
}

// Verdict converts the assessment into the Approvals gate outcome.
func (a Assessment) Verdict() gate.Verdict {
	const name = "risk"
	if a.RiskLevel == PostureCritical {
		var reasons []string
		for _, r := range a.Risks {
			if r.RiskScore == 9 && r.Status == StatusIdentified {
				reasons = append(reasons, "unmitigated: "+r.Description)
			}
		}
		return gate.Fail(name, append([]string{"overall risk is critical"}, reasons...)...)
	}
	return gate.Pass(name, "overall risk is "+string(a.RiskLevel))
}

func (a Assessment) index(id string) (int, bool) {
	id = strings.TrimSpace(id)
	for i, r := range a.Risks {
		if r.ID == id {
			return i, true
		}
	}
	return -1, false
}

func validate(op string, r Risk) error {
	switch {
	case r.Description == "":
		return gate.NewError(gate.CodeValidation, op, "risk description is required", nil)
	case !r.Category.Valid():
		return gate.Errorf(gate.CodeValidation, op, "unknown risk category %q", r.Category)
	case !r.Probability.Valid():
		return gate.Errorf(gate.CodeValidation, op, "unknown probability %q", r.Probability)
	case !r.Impact.Valid():
		return gate.Errorf(gate.CodeValidation, op, "unknown impact %q", r.Impact)
	case !r.Status.Valid():
		return gate.Errorf(gate.CodeValidation, op, "unknown risk status %q", r.Status)
	}
	return nil
}

func touch(a Assessment, actor gate.Actor, at time.Time) Assessment {
	a.AssessedBy = actor.ID
	a.AssessedAt = at.UTC()
	return Compute(a)
}
