package voting

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

// ComputeTally aggregates voting power by decision. Votes from ids missing
// from the committee carry no power.
func ComputeTally(committee []Member, votes []Vote) Tally {
	power := make(map[string]float64, len(committee))
	var t Tally
	for _, m := range committee {
		power[m.UserID] = m.VotingPower
		if m.Required {
			t.QuorumRequired += m.VotingPower
		}
	}
	voted := make(map[string]bool, len(votes))
	for _, v := range votes {
		voted[v.MemberID] = true
		switch v.Decision {
		case DecisionBid:
			t.BidPower += power[v.MemberID]
		case DecisionNoBid:
			t.NoBidPower += power[v.MemberID]
		case DecisionAbstain:
			t.AbstainPower += power[v.MemberID]
		}
	}
	t.ParticipatingPower = t.BidPower + t.NoBidPower + t.AbstainPower
	t.QuorumMet = t.ParticipatingPower >= t.QuorumRequired

	t.AllRequiredVoted = true
	for _, m := range committee {
		if m.Required && !voted[m.UserID] {
			t.AllRequiredVoted = false
			t.MissingRequired = append(t.MissingRequired, m.UserID)
		}
	}
	return t
}

// ValidateCommittee rejects rosters the voter cannot decide with.
func ValidateCommittee(committee []Member) error {
	const op = "voting.validate_committee"
	if len(committee) == 0 {
		return gate.NewError(gate.CodeConfiguration, op, "committee is empty", nil)
	}
	seen := make(map[string]struct{}, len(committee))
	for _, m := range committee {
		id := strings.TrimSpace(m.UserID)
		if id == "" {
			return gate.NewError(gate.CodeConfiguration, op, "committee member without user id", nil)
		}
		if _, dup := seen[id]; dup {
			return gate.Errorf(gate.CodeConfiguration, op, "member %q listed twice", id)
		}
		seen[id] = struct{}{}
		if m.VotingPower <= 0 {
			return gate.Errorf(gate.CodeConfiguration, op, "member %q must have positive voting power", id)
		}
	}
	return nil
}

// OpenRound starts a round and evaluates it once, so a committee with no
// required members closes immediately.
func OpenRound(id, rfpID string, committee []Member, deadline time.Time, actor gate.Actor, at time.Time) (Round, error) {
	if err := gate.RequireActor("voting.open", actor); err != nil {
		return Round{}, err
	}
	if err := ValidateCommittee(committee); err != nil {
		return Round{}, err
	}
	members := make([]Member, len(committee))
	copy(members, committee)
	r := Round{
		ID:        id,
		RFPID:     rfpID,
		Committee: members,
		Votes:     []Vote{},
		Deadline:  deadline.UTC(),
		Status:    StatusOpen,
		OpenedBy:  actor.ID,
		OpenedAt:  at.UTC(),
	}
	return Evaluate(r, at), nil
}

// SubmitVote records one member's ballot. A rejected ballot returns the round unchanged.
func SubmitVote(r Round, memberID string, b Ballot, at time.Time) (Round, error) {
	const op = "voting.submit"
	memberID = strings.TrimSpace(memberID)
	if r.Status != StatusOpen {
		return r, gate.Errorf(gate.CodeRoundClosed, op, "round %s is %s", r.ID, r.Status)
	}
	if _, ok := r.member(memberID); !ok {
		return r, gate.Errorf(gate.CodeUnknownVoter, op, "%q is not on the committee", memberID)
	}
	if r.hasVoted(memberID) {
		return r, gate.Errorf(gate.CodeDuplicateVote, op, "%q already voted in round %s", memberID, r.ID)
	}
	if !b.Decision.Valid() {
		return r, gate.Errorf(gate.CodeValidation, op, "invalid decision %q", b.Decision)
	}

	next := r
	next.Votes = make([]Vote, len(r.Votes), len(r.Votes)+1)
	copy(next.Votes, r.Votes)
	next.Votes = append(next.Votes, Vote{
		MemberID:   memberID,
		Decision:   b.Decision,
		Rationale:  strings.TrimSpace(b.Rationale),
		Conditions: cleanConditions(b.Conditions),
		VotedAt:    at.UTC(),
	})
	return Evaluate(next, at), nil
}

// Evaluate recomputes the tally and closes the round once every required
// member has voted and quorum is met. Wall-clock deadlines never close a round.
func Evaluate(r Round, at time.Time) Round {
	r.Tally = ComputeTally(r.Committee, r.Votes)
	if r.Status != StatusOpen || !r.Tally.AllRequiredVoted || !r.Tally.QuorumMet {
		return r
	}
	decidedAt := at.UTC()
	r.Status = StatusClosed
	r.DecisionMadeAt = &decidedAt
	// Ties resolve to no-bid.
	if r.Tally.BidPower > r.Tally.NoBidPower {
		r.Decision = DecisionBid
	} else {
		r.Decision = DecisionNoBid
	}
	r.FinalRecommendation = fmt.Sprintf("%s (bid %.1f / no-bid %.1f / abstain %.1f of quorum %.1f)",
		r.Decision, r.Tally.BidPower, r.Tally.NoBidPower, r.Tally.AbstainPower, r.Tally.QuorumRequired)
	return r
}

// CancelRound withdraws an open round; later ballots fail with round_closed.
func CancelRound(r Round, actor gate.Actor, reason string, at time.Time) (Round, error) {
	const op = "voting.cancel"
	if err := gate.RequireActor(op, actor); err != nil {
		return r, err
	}
	if r.Status != StatusOpen {
		return r, gate.Errorf(gate.CodeRoundClosed, op, "round %s is %s", r.ID, r.Status)
	}
	next := r
	next.Status = StatusCancelled
	next.FinalRecommendation = strings.TrimSpace("cancelled by " + actor.ID + ": " + strings.TrimSpace(reason))
	return next, nil
}

// StatusAt reports the status a caller polling at now should display.
func (r Round) StatusAt(now time.Time) Status {
	if r.Expired(now) {
		return StatusExpired
	}
	return r.Status
}

func (r Round) Expired(now time.Time) bool {
	return r.Status == StatusOpen && !r.Deadline.IsZero() && now.After(r.Deadline)
}

// Verdict converts the round into the GoNoGo gate outcome.
func (r Round) Verdict() gate.Verdict {
	const name = "bid_no_bid"
	switch r.Status {
	case StatusClosed:
		if r.Decision == DecisionBid {
			return gate.Pass(name, r.FinalRecommendation)
		}
		return gate.Fail(name, r.FinalRecommendation)
	case StatusCancelled:
		return gate.Fail(name, r.FinalRecommendation)
	}
	reasons := make([]string, 0, len(r.Tally.MissingRequired)+1)
	for _, id := range r.Tally.MissingRequired {
		reasons = append(reasons, "awaiting required member "+id)
	}
	if !r.Tally.QuorumMet {
		reasons = append(reasons, fmt.Sprintf("quorum %.1f of %.1f", r.Tally.ParticipatingPower, r.Tally.QuorumRequired))
	}
	return gate.Pending(name, reasons...)
}

func cleanConditions(in []string) []string {
	var out []string
	for _, c := range in {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
