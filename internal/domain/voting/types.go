// Package voting runs weighted bid/no-bid committee rounds.
package voting

import (
	"fmt"
	"time"
)

type Decision string

const (
	DecisionBid     Decision = "bid"
	DecisionNoBid   Decision = "no-bid"
	DecisionAbstain Decision = "abstain"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionBid, DecisionNoBid, DecisionAbstain:
		return true
	}
	return false
}

func (d *Decision) UnmarshalText(b []byte) error {
	v := Decision(b)
	if !v.Valid() {
		return fmt.Errorf("unknown vote decision %q", string(b))
	}
	*d = v
	return nil
}

type Status string

const (
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
	// StatusExpired is only ever reported by Round.StatusAt; it is never stored.
	StatusExpired Status = "expired"
)

type Member struct {
	UserID      string  `json:"user_id"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	Department  string  `json:"department,omitempty"`
	VotingPower float64 `json:"voting_power"`
	Required    bool    `json:"required"`
}

type Vote struct {
	MemberID   string    `json:"member_id"`
	Decision   Decision  `json:"decision"`
	Rationale  string    `json:"rationale,omitempty"`
	Conditions []string  `json:"conditions,omitempty"`
	VotedAt    time.Time `json:"voted_at"`
}

// Ballot is what a member submits.
type Ballot struct {
	Decision   Decision `json:"decision"`
	Rationale  string   `json:"rationale,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
}

type Tally struct {
	BidPower           float64  `json:"bid_power"`
	NoBidPower         float64  `json:"no_bid_power"`
	AbstainPower       float64  `json:"abstain_power"`
	ParticipatingPower float64  `json:"participating_power"`
	QuorumRequired     float64  `json:"quorum_required"`
	QuorumMet          bool     `json:"quorum_met"`
	AllRequiredVoted   bool     `json:"all_required_voted"`
	MissingRequired    []string `json:"missing_required,omitempty"`
}

// Round is one bid/no-bid vote for an RFP. It is a snapshot: every mutation
// returns a new Round with the tally recomputed from the committee and votes.
type Round struct {
	ID                  string     `json:"id"`
	RFPID               string     `json:"rfp_id"`
	Committee           []Member   `json:"committee"`
	Votes               []Vote     `json:"votes"`
	Tally               Tally      `json:"tally"`
	Deadline            time.Time  `json:"deadline"`
	Status              Status     `json:"status"`
	Decision            Decision   `json:"decision,omitempty"`
	DecisionMadeAt      *time.Time `json:"decision_made_at,omitempty"`
	FinalRecommendation string     `json:"final_recommendation,omitempty"`
	OpenedBy            string     `json:"opened_by"`
	OpenedAt            time.Time  `json:"opened_at"`
}

func (r Round) member(id string) (Member, bool) {
	for _, m := range r.Committee {
		if m.UserID == id {
			return m, true
		}
	}
	return Member{}, false
}

func (r Round) hasVoted(id string) bool {
	for _, v := range r.Votes {
		if v.MemberID == id {
			return true
		}
	}
	return false
}
