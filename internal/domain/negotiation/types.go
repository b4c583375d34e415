// Package negotiation tracks clause-level positions until the deal closes or
// deadlocks. Item history is append-only.
package negotiation

import (
	"fmt"
	"time"
)

type Category string

const (
	CategoryPricing Category = "pricing"
	CategoryLegal   Category = "legal"
	CategorySLA     Category = "sla"
	CategoryTerms   Category = "terms"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPricing, CategoryLegal, CategorySLA, CategoryTerms:
		return true
	}
	return false
}

func (c *Category) UnmarshalText(b []byte) error {
	v := Category(b)
	if !v.Valid() {
		return fmt.Errorf("unknown negotiation category %q", string(b))
	}
	*c = v
	return nil
}

type Priority string

const (
	PriorityMustHave   Priority = "must-have"
	PriorityShouldHave Priority = "should-have"
	PriorityNiceToHave Priority = "nice-to-have"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityMustHave, PriorityShouldHave, PriorityNiceToHave:
		return true
	}
	return false
}

func (p *Priority) UnmarshalText(b []byte) error {
	v := Priority(b)
	if !v.Valid() {
		return fmt.Errorf("unknown negotiation priority %q", string(b))
	}
	*p = v
	return nil
}

type ItemStatus string

const (
	ItemOpen       ItemStatus = "open"
	ItemAgreed     ItemStatus = "agreed"
	ItemConceded   ItemStatus = "conceded"
	ItemDeadlocked ItemStatus = "deadlocked"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemOpen, ItemAgreed, ItemConceded, ItemDeadlocked:
		return true
	}
	return false
}

// Resolved reports whether the item no longer blocks signature.
func (s ItemStatus) Resolved() bool { return s == ItemAgreed || s == ItemConceded }

func (s *ItemStatus) UnmarshalText(b []byte) error {
	v := ItemStatus(b)
	if !v.Valid() {
		return fmt.Errorf("unknown negotiation item status %q", string(b))
	}
	*s = v
	return nil
}

// Stage is the negotiation sub-lifecycle. Order matters: AdvanceStage walks Stages.
type Stage string

const (
	StageInitialTerms Stage = "initial_terms"
	StagePricing      Stage = "pricing"
	StageLegalTerms   Stage = "legal_terms"
	StageSLATerms     Stage = "sla_terms"
	StageFinalReview  Stage = "final_review"
	StageSignature    Stage = "signature"
)

var Stages = []Stage{StageInitialTerms, StagePricing, StageLegalTerms, StageSLATerms, StageFinalReview, StageSignature}

func (s Stage) index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Stage) Valid() bool { return s.index() >= 0 }

func (s *Stage) UnmarshalText(b []byte) error {
	v := Stage(b)
	if !v.Valid() {
		return fmt.Errorf("unknown negotiation stage %q", string(b))
	}
	*s = v
	return nil
}

type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusDeadlocked Status = "deadlocked"
	StatusCompleted  Status = "completed"
)

type FieldChange struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// HistoryEntry records one accepted update of an item.
type HistoryEntry struct {
	ActorID   string        `json:"actor_id"`
	ActorRole string        `json:"actor_role,omitempty"`
	At        time.Time     `json:"at"`
	Changes   []FieldChange `json:"changes"`
}

type Item struct {
	ID             string         `json:"id" yaml:"id,omitempty"`
	Category       Category       `json:"category" yaml:"category"`
	Description    string         `json:"description" yaml:"description"`
	OurPosition    string         `json:"our_position" yaml:"our_position"`
	ClientPosition string         `json:"client_position" yaml:"client_position"`
	AgreedPosition string         `json:"agreed_position,omitempty" yaml:"agreed_position,omitempty"`
	Notes          string         `json:"notes,omitempty" yaml:"notes,omitempty"`
	Priority       Priority       `json:"priority" yaml:"priority"`
	Status         ItemStatus     `json:"status" yaml:"status,omitempty"`
	History        []HistoryEntry `json:"history" yaml:"-"`
}

// Patch carries the fields an update changes; nil means unchanged.
type Patch struct {
	Category       *Category   `json:"category,omitempty"`
	Description    *string     `json:"description,omitempty"`
	OurPosition    *string     `json:"our_position,omitempty"`
	ClientPosition *string     `json:"client_position,omitempty"`
	AgreedPosition *string     `json:"agreed_position,omitempty"`
	Notes          *string     `json:"notes,omitempty"`
	Priority       *Priority   `json:"priority,omitempty"`
	Status         *ItemStatus `json:"status,omitempty"`
}

type Counts struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	Agreed     int `json:"agreed"`
	Conceded   int `json:"conceded"`
	Deadlocked int `json:"deadlocked"`
}

// Snapshot is the negotiation state of one RFP. Counts, ProgressPercentage and
// Status are derived from Items and Stage by Compute and never set directly.
type Snapshot struct {
	RFPID              string     `json:"rfp_id"`
	Stage              Stage      `json:"stage"`
	Items              []Item     `json:"items"`
	Counts             Counts     `json:"counts"`
	ProgressPercentage float64    `json:"progress_percentage"`
	Status             Status     `json:"status"`
	StartedAt          time.Time  `json:"started_at"`
	TargetCloseDate    *time.Time `json:"target_close_date,omitempty"`
	ActualCloseDate    *time.Time `json:"actual_close_date,omitempty"`
	UpdatedBy          string     `json:"updated_by"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
