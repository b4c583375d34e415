package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

type Stage string

const (
	StageIntake        Stage = "intake"
	StageGoNoGo        Stage = "go_no_go"
	StagePlanning      Stage = "planning"
	StageSolutioning   Stage = "solutioning"
	StagePricing       Stage = "pricing"
	StageProposalBuild Stage = "proposal_build"
	StageApprovals     Stage = "approvals"
	StageSubmission    Stage = "submission"
	StagePostBid       Stage = "post_bid"
	StageWon           Stage = "won"
	StageLost          Stage = "lost"
	StageAbandoned     Stage = "abandoned"
)

// Pipeline is the forward order of the non-terminal stages.
var Pipeline = []Stage{
	StageIntake, StageGoNoGo, StagePlanning, StageSolutioning, StagePricing,
	StageProposalBuild, StageApprovals, StageSubmission, StagePostBid,
}

// Stages lists every stage, pipeline first then terminals.
var Stages = append(append([]Stage{}, Pipeline...), StageWon, StageLost, StageAbandoned)

func ParseStage(s string) (Stage, error) {
	v := Stage(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", gate.Errorf(gate.CodeValidation, "lifecycle.parse_stage", "unknown stage %q", s)
	}
	return v, nil
}

func (s Stage) Valid() bool {
	for _, st := range Stages {
		if st == s {
			return true
		}
	}
	return false
}

func (s *Stage) UnmarshalText(b []byte) error {
	v, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// IsTerminal reports whether s is absorbing.
func (s Stage) IsTerminal() bool {
	return s == StageWon || s == StageLost || s == StageAbandoned
}

func pipelineIndex(s Stage) int {
	for i, st := range Pipeline {
		if st == s {
			return i
		}
	}
	return -1
}

// LegalTargets lists the stages reachable from s in one step, excluding s itself.
func LegalTargets(s Stage) []Stage {
	i := pipelineIndex(s)
	switch {
	case i < 0:
		return nil
	case s == StagePostBid:
		return []Stage{StageWon, StageLost, StageAbandoned}
	default:
		return []Stage{Pipeline[i+1], StageAbandoned}
	}
}

// CanTransition reports whether moving from cur to tgt is legal. Staying put
// is always legal.
func CanTransition(cur, tgt Stage) bool {
	if !cur.Valid() || !tgt.Valid() {
		return false
	}
	if cur == tgt {
		return true
	}
	for _, s := range LegalTargets(cur) {
		if s == tgt {
			return true
		}
	}
	return false
}

// RFP is the slice of the pursuit record the engine reads and writes.
type RFP struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Client    string          `json:"client"`
	Value     decimal.Decimal `json:"value"`
	Currency  string          `json:"currency"`
	Stage     Stage           `json:"stage"`
	Deadline  *time.Time      `json:"deadline,omitempty"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewRFP validates and builds a pursuit at Intake.
func NewRFP(id, title, client string, value decimal.Decimal, currency string, actor gate.Actor, at time.Time) (RFP, error) {
	const op = "lifecycle.new_rfp"
	if err := gate.RequireActor(op, actor); err != nil {
		return RFP{}, err
	}
	title, client = strings.TrimSpace(title), strings.TrimSpace(client)
	switch {
	case title == "":
		return RFP{}, gate.NewError(gate.CodeValidation, op, "title is required", nil)
	case client == "":
		return RFP{}, gate.NewError(gate.CodeValidation, op, "client is required", nil)
	case value.IsNegative():
		return RFP{}, gate.NewError(gate.CodeValidation, op, "value cannot be negative", nil)
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	return RFP{
		ID:        id,
		Title:     title,
		Client:    client,
		Value:     value,
		Currency:  currency,
		Stage:     StageIntake,
		CreatedBy: actor.ID,
		CreatedAt: at.UTC(),
		UpdatedAt: at.UTC(),
	}, nil
}

// Transition moves rfp to target. It does not consult any evaluator; see Advance.
func Transition(rfp RFP, target Stage, at time.Time) (RFP, error) {
	const op = "lifecycle.transition"
	if !target.Valid() {
		return rfp, gate.Errorf(gate.CodeValidation, op, "unknown stage %q", target)
	}
	if rfp.Stage == target {
		return rfp, nil
	}
	if !CanTransition(rfp.Stage, target) {
		return rfp, &gate.Error{
			Code:    gate.CodeInvalidTransition,
			Op:      op,
			Message: fmt.Sprintf("%s -> %s is not a legal transition", rfp.Stage, target),
		}
	}
	rfp.Stage = target
	rfp.UpdatedAt = at.UTC()
	return rfp, nil
}
