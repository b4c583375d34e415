package negotiation

import (
	"strings"
	"time"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

// Compute derives counts, progress and overall status from the items and
// stage. The actual close date is stamped the first time status is completed.
func Compute(s Snapshot, at time.Time) Snapshot {
	var c Counts
	for _, it := range s.Items {
		switch it.Status {
		case ItemOpen:
			c.Open++
		case ItemAgreed:
			c.Agreed++
		case ItemConceded:
			c.Conceded++
		case ItemDeadlocked:
			c.Deadlocked++
		}
	}
	c.Total = len(s.Items)
	s.Counts = c
	s.ProgressPercentage = 0
	if c.Total > 0 {
		s.ProgressPercentage = float64(c.Agreed+c.Conceded) / float64(c.Total) * 100
	}

	s.Status = overallStatus(s)
	if s.Status == StatusCompleted && s.ActualCloseDate == nil {
		closed := at.UTC()
		s.ActualCloseDate = &closed
	}
	return s
}

// A deadlock anywhere wins over an otherwise complete must-have set.
func overallStatus(s Snapshot) Status {
	for _, it := range s.Items {
		if it.Status == ItemDeadlocked {
			return StatusDeadlocked
		}
	}
	if s.Stage != StageSignature {
		return StatusInProgress
	}
	for _, it := range s.Items {
		if it.Priority == PriorityMustHave && !it.Status.Resolved() {
			return StatusInProgress
		}
	}
	return StatusCompleted
}

func New(rfpID string, target *time.Time, actor gate.Actor, at time.Time) (Snapshot, error) {
	if err := gate.RequireActor("negotiation.start", actor); err != nil {
		return Snapshot{}, err
	}
	s := Snapshot{
		RFPID:     rfpID,
		Stage:     StageInitialTerms,
		Items:     []Item{},
		StartedAt: at.UTC(),
		UpdatedBy: actor.ID,
		UpdatedAt: at.UTC(),
	}
	if target != nil {
		t := target.UTC()
		s.TargetCloseDate = &t
	}
	return Compute(s, at), nil
}

func AddItem(s Snapshot, actor gate.Actor, it Item, at time.Time) (Snapshot, error) {
	const op = "negotiation.add_item"
	if err := gate.RequireActor(op, actor); err != nil {
		return s, err
	}
	it.ID = strings.TrimSpace(it.ID)
	if it.ID == "" {
		return s, gate.NewError(gate.CodeValidation, op, "item id is required", nil)
	}
	if _, ok := s.index(it.ID); ok {
		return s, gate.Errorf(gate.CodeConflict, op, "item %q already exists", it.ID)
	}
	if it.Status == "" {
		it.Status = ItemOpen
	}
	it = trimItem(it)
	if err := validate(op, it); err != nil {
		return s, err
	}
	it.History = []HistoryEntry{}

	next := s
	next.Items = append(append(make([]Item, 0, len(s.Items)+1), s.Items...), it)
	return touch(next, actor, at), nil
}

// UpdateItem applies a patch. Each call that changes at least one field
// appends exactly one history entry; a patch that changes nothing appends none.
func UpdateItem(s Snapshot, actor gate.Actor, id string, p Patch, at time.Time) (Snapshot, error) {
	const op = "negotiation.update_item"
	if err := gate.RequireActor(op, actor); err != nil {
		return s, err
	}
	i, ok := s.index(id)
	if !ok {
		return s, gate.Errorf(gate.CodeNotFound, op, "item %q not found", id)
	}
	prev := s.Items[i]
	it := prev
	var changes []FieldChange
	setText := func(field string, dst *string, v *string) {
		if v == nil {
			return
		}
		nv := strings.TrimSpace(*v)
		if nv != *dst {
			changes = append(changes, FieldChange{Field: field, From: *dst, To: nv})
			*dst = nv
		}
	}
	setText("description", &it.Description, p.Description)
	setText("our_position", &it.OurPosition, p.OurPosition)
	setText("client_position", &it.ClientPosition, p.ClientPosition)
	setText("agreed_position", &it.AgreedPosition, p.AgreedPosition)
	setText("notes", &it.Notes, p.Notes)
	if p.Category != nil && *p.Category != it.Category {
		changes = append(changes, FieldChange{Field: "category", From: string(it.Category), To: string(*p.Category)})
		it.Category = *p.Category
	}
	if p.Priority != nil && *p.Priority != it.Priority {
		changes = append(changes, FieldChange{Field: "priority", From: string(it.Priority), To: string(*p.Priority)})
		it.Priority = *p.Priority
	}
	if p.Status != nil && *p.Status != it.Status {
		changes = append(changes, FieldChange{Field: "status", From: string(it.Status), To: string(*p.Status)})
		it.Status = *p.Status
	}
	if err := validate(op, it); err != nil {
		return s, err
	}
	if len(changes) == 0 {
		return s, nil
	}

	it.History = append(append(make([]HistoryEntry, 0, len(prev.History)+1), prev.History...), HistoryEntry{
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		At:        at.UTC(),
		Changes:   changes,
	})
	next := s
	next.Items = make([]Item, len(s.Items))
	copy(next.Items, s.Items)
	next.Items[i] = it
	return touch(next, actor, at), nil
}

func RemoveItem(s Snapshot, actor gate.Actor, id string, at time.Time) (Snapshot, error) {
	const op = "negotiation.remove_item"
	if err := gate.RequireActor(op, actor); err != nil {
		return s, err
	}
	i, ok := s.index(id)
	if !ok {
		return s, gate.Errorf(gate.CodeNotFound, op, "item %q not found", id)
	}
	next := s
	next.Items = make([]Item, 0, len(s.Items)-1)
	next.Items = append(next.Items, s.Items[:i]...)
	next.Items = append(next.Items, s.Items[i+1:]...)
	return touch(next, actor, at), nil
}

// AdvanceStage moves to the next stage without checking item resolution.
func AdvanceStage(s Snapshot, actor gate.Actor, at time.Time) (Snapshot, error) {
	const op = "negotiation.advance_stage"
	if err := gate.RequireActor(op, actor); err != nil {
		return s, err
	}
	idx := s.Stage.index()
	if idx < 0 {
		return s, gate.Errorf(gate.CodeValidation, op, "unknown stage %q", s.Stage)
	}
	if idx == len(Stages)-1 {
		return s, gate.Errorf(gate.CodeConflict, op, "negotiation is already at %s", s.Stage)
	}
	next := s
	next.Stage = Stages[idx+1]
	return touch(next, actor, at), nil
}

func SetTargetCloseDate(s Snapshot, actor gate.Actor, target time.Time, at time.Time) (Snapshot, error) {
	if err := gate.RequireActor("negotiation.target_close", actor); err != nil {
		return s, err
	}
	t := target.UTC()
	s.TargetCloseDate = &t
	return touch(s, actor, at), nil
}

// Verdict converts the snapshot into the PostBid to Won gate outcome.
func (s Snapshot) Verdict() gate.Verdict {
	const name = "negotiation"
	switch s.Status {
	case StatusCompleted:
		return gate.Pass(name, "all must-have items resolved at signature")
	case StatusDeadlocked:
		var reasons []string
		for _, it := range s.Items {
			if it.Status == ItemDeadlocked {
				reasons = append(reasons, "deadlocked: "+it.Description)
			}
		}
		return gate.Fail(name, reasons...)
	}
	reasons := []string{"negotiation at " + string(s.Stage)}
	for _, it := range s.Items {
		if it.Priority == PriorityMustHave && !it.Status.Resolved() {
			reasons = append(reasons, "unresolved must-have: "+it.Description)
		}
	}
	return gate.Pending(name, reasons...)
}

// Deadlocked lists the items currently blocking the negotiation.
func (s Snapshot) Deadlocked() []Item {
	var out []Item
	for _, it := range s.Items {
		if it.Status == ItemDeadlocked {
			out = append(out, it)
		}
	}
	return out
}

func (s Snapshot) index(id string) (int, bool) {
	id = strings.TrimSpace(id)
	for i, it := range s.Items {
		if it.ID == id {
			return i, true
		}
	}
	return -1, false
}

func trimItem(it Item) Item {
	it.Description = strings.TrimSpace(it.Description)
	it.OurPosition = strings.TrimSpace(it.OurPosition)
	it.ClientPosition = strings.TrimSpace(it.ClientPosition)
	it.AgreedPosition = strings.TrimSpace(it.AgreedPosition)
	it.Notes = strings.TrimSpace(it.Notes)
	return it
}

func validate(op string, it Item) error {
	switch {
	case it.Description == "":
		return gate.NewError(gate.CodeValidation, op, "item description is required", nil)
	case !it.Category.Valid():
		return gate.Errorf(gate.CodeValidation, op, "unknown category %q", it.Category)
	case !it.Priority.Valid():
		return gate.Errorf(gate.CodeValidation, op, "unknown priority %q", it.Priority)
	case !it.Status.Valid():
		return gate.Errorf(gate.CodeValidation, op, "unknown item status %q", it.Status)
	}
	return nil
}

func touch(s Snapshot, actor gate.Actor, at time.Time) Snapshot {
	s.UpdatedBy = actor.ID
	s.UpdatedAt = at.UTC()
	return Compute(s, at)
}
