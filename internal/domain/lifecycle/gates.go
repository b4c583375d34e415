package lifecycle

import (
	"time"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
	"github.com/yungbote/bidgate-backend/internal/domain/negotiation"
	"github.com/yungbote/bidgate-backend/internal/domain/prequal"
	"github.com/yungbote/bidgate-backend/internal/domain/risk"
	"github.com/yungbote/bidgate-backend/internal/domain/voting"
)

// Inputs carries whichever evaluator aggregates exist for an RFP. A nil field
// means that evaluator has not run yet.
type Inputs struct {
	Prequal     *prequal.Result
	Round       *voting.Round
	Risk        *risk.Assessment
	Negotiation *negotiation.Snapshot
}

type edge struct{ from, to Stage }

// gated maps the edges that need an evaluator verdict. Every other legal
// edge passes unconditionally.
var gated = map[edge]func(Inputs) gate.Verdict{
	{StageIntake, StageGoNoGo}: func(in Inputs) gate.Verdict {
		if in.Prequal == nil {
			return gate.Pending("prequal", "pre-qualification has not been completed")
		}
		return in.Prequal.Verdict()
	},
	{StageGoNoGo, StagePlanning}: func(in Inputs) gate.Verdict {
		if in.Round == nil {
			return gate.Pending("bid_no_bid", "no voting round has been opened")
		}
		return in.Round.Verdict()
	},
	{StageApprovals, StageSubmission}: func(in Inputs) gate.Verdict {
		if in.Risk == nil {
			return gate.Pending("risk", "no risk assessment recorded")
		}
		return in.Risk.Verdict()
	},
	{StagePostBid, StageWon}: func(in Inputs) gate.Verdict {
		if in.Negotiation == nil {
			return gate.Pending("negotiation", "contract negotiation has not started")
		}
		return in.Negotiation.Verdict()
	},
}

// Check evaluates the gate guarding from -> to. Illegal edges fail.
func Check(from, to Stage, in Inputs) gate.Verdict {
	if !CanTransition(from, to) {
		return gate.Fail("transition", string(from)+" -> "+string(to)+" is not a legal transition")
	}
	if from == to {
		return gate.Pass("transition", "already at "+string(to))
	}
	if fn, ok := gated[edge{from, to}]; ok {
		return fn(in)
	}
	return gate.Pass("transition")
}

// GatedEdge reports whether from -> to needs an evaluator verdict.
func GatedEdge(from, to Stage) bool {
	_, ok := gated[edge{from, to}]
	return ok
}

// Advance runs the gate for rfp.Stage -> target and transitions only when it
// passes. A blocked gate returns rfp unchanged with a gate_blocked error.
func Advance(rfp RFP, target Stage, in Inputs, at time.Time) (RFP, gate.Verdict, error) {
	const op = "lifecycle.advance"
	if !target.Valid() {
		return rfp, gate.Verdict{}, gate.Errorf(gate.CodeValidation, op, "unknown stage %q", target)
	}
	if !CanTransition(rfp.Stage, target) {
		next, err := Transition(rfp, target, at)
		return next, gate.Fail("transition", "illegal edge"), err
	}
	v := Check(rfp.Stage, target, in)
	if !v.Passed() {
		return rfp, v, gate.Errorf(gate.CodeGateBlocked, op, "%s gate is %s for %s -> %s", v.Gate, v.Outcome, rfp.Stage, target)
	}
	next, err := Transition(rfp, target, at)
	return next, v, err
}
