package prequal

import (
	"strings"
	"time"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

// Session is one screening pass over a criteria list. It presents criteria in
// order and finalizes on the first disqualifying answer or once nothing is left
// to present. Methods never modify the receiver; they return the next session.
type Session struct {
	Criteria  []Criterion         `json:"criteria"`
	Responses map[string]Response `json:"responses"`
	Skipped   map[string]bool     `json:"skipped,omitempty"`
	Result    *Result             `json:"result,omitempty"`
	StartedBy string              `json:"started_by"`
	StartedAt time.Time           `json:"started_at"`
}

func NewSession(criteria []Criterion, actor gate.Actor, at time.Time) (Session, error) {
	if err := gate.RequireActor("prequal.start", actor); err != nil {
		return Session{}, err
	}
	if err := ValidateCriteria(criteria); err != nil {
		return Session{}, err
	}
	cs := make([]Criterion, len(criteria))
	copy(cs, criteria)
	return Session{
		Criteria:  cs,
		Responses: map[string]Response{},
		Skipped:   map[string]bool{},
		StartedBy: actor.ID,
		StartedAt: at.UTC(),
	}, nil
}

func (s Session) Finished() bool { return s.Result != nil }

// Current returns the next criterion awaiting an answer.
func (s Session) Current() (Criterion, bool) {
	if s.Finished() {
		return Criterion{}, false
	}
	for _, c := range s.Criteria {
		if _, answered := s.Responses[c.ID]; answered || s.Skipped[c.ID] {
			continue
		}
		return c, true
	}
	return Criterion{}, false
}

// Progress reports how many criteria have been answered or skipped.
func (s Session) Progress() (done, total int) {
	for _, c := range s.Criteria {
		if _, answered := s.Responses[c.ID]; answered || s.Skipped[c.ID] {
			done++
		}
	}
	return done, len(s.Criteria)
}

// Answer records the selected option for a criterion. Answering the same
// criterion twice replaces the earlier response.
func (s Session) Answer(actor gate.Actor, criterionID, value, notes string, at time.Time) (Session, error) {
	const op = "prequal.answer"
	c, err := s.mutable(op, actor, criterionID)
	if err != nil {
		return s, err
	}
	opt, ok := c.Option(strings.TrimSpace(value))
	if !ok {
		return s, gate.Errorf(gate.CodeValidation, op, "criterion %q has no option %q", c.ID, value)
	}

	next := s.clone()
	delete(next.Skipped, c.ID)
	next.Responses[c.ID] = Response{
		CriterionID: c.ID,
		Value:       opt.Value,
		Score:       opt.Score,
		Notes:       strings.TrimSpace(notes),
		RespondedBy: actor.ID,
		RespondedAt: at.UTC(),
	}
	if opt.Disqualifies {
		return next.finalize(actor, at)
	}
	if _, more := next.Current(); !more {
		return next.finalize(actor, at)
	}
	return next, nil
}

// Skip passes over an optional criterion. Required criteria cannot be skipped.
func (s Session) Skip(actor gate.Actor, criterionID string, at time.Time) (Session, error) {
	const op = "prequal.skip"
	c, err := s.mutable(op, actor, criterionID)
	if err != nil {
		return s, err
	}
	if c.Required {
		return s, gate.Errorf(gate.CodeValidation, op, "criterion %q is required", c.ID)
	}
	next := s.clone()
	delete(next.Responses, c.ID)
	next.Skipped[c.ID] = true
	if _, more := next.Current(); !more {
		return next.finalize(actor, at)
	}
	return next, nil
}

// Preview scores the answers gathered so far without finalizing.
func (s Session) Preview() (Result, error) {
	if s.Result != nil {
		return *s.Result, nil
	}
	return Score(s.Criteria, s.Responses)
}

func (s Session) mutable(op string, actor gate.Actor, criterionID string) (Criterion, error) {
	if err := gate.RequireActor(op, actor); err != nil {
		return Criterion{}, err
	}
	if s.Finished() {
		return Criterion{}, gate.NewError(gate.CodeConflict, op, "screening already finalized", nil)
	}
	id := strings.TrimSpace(criterionID)
	for _, c := range s.Criteria {
		if c.ID == id {
			return c, nil
		}
	}
	return Criterion{}, gate.Errorf(gate.CodeNotFound, op, "criterion %q not found", id)
}

func (s Session) finalize(actor gate.Actor, at time.Time) (Session, error) {
	res, err := Score(s.Criteria, s.Responses)
	if err != nil {
		return s, err
	}
	res = stampResult(res, actor, at)
	s.Result = &res
	return s, nil
}

func (s Session) clone() Session {
	next := s
	next.Responses = make(map[string]Response, len(s.Responses)+1)
	for k, v := range s.Responses {
		next.Responses[k] = v
	}
	next.Skipped = make(map[string]bool, len(s.Skipped))
	for k, v := range s.Skipped {
		next.Skipped[k] = v
	}
	return next
}
