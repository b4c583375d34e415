package risk

import (
	"fmt"
	"time"
)

// Level is a three-step ordinal used for probability and impact.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Ordinal maps low/medium/high to 1/2/3 and anything else to 0.
func (l Level) Ordinal() int {
	switch l {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	}
	return 0
}

func (l Level) Valid() bool { return l.Ordinal() > 0 }

func (l *Level) UnmarshalText(b []byte) error {
	v := Level(b)
	if !v.Valid() {
		return fmt.Errorf("unknown risk level %q", string(b))
	}
	*l = v
	return nil
}

// Posture is the overall risk level of an assessment.
type Posture string

const (
	PostureLow      Posture = "low"
	PostureMedium   Posture = "medium"
	PostureHigh     Posture = "high"
	PostureCritical Posture = "critical"
)

type Category string

const (
	CategoryTechnical    Category = "technical"
	CategoryFinancial    Category = "financial"
	CategoryLegal        Category = "legal"
	CategoryOperational  Category = "operational"
	CategoryCompliance   Category = "compliance"
	CategoryReputational Category = "reputational"
	CategoryResource     Category = "resource"
	CategoryTimeline     Category = "timeline"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTechnical, CategoryFinancial, CategoryLegal, CategoryOperational,
		CategoryCompliance, CategoryReputational, CategoryResource, CategoryTimeline:
		return true
	}
	return false
}

func (c *Category) UnmarshalText(b []byte) error {
	v := Category(b)
	if !v.Valid() {
		return fmt.Errorf("unknown risk category %q", string(b))
	}
	*c = v
	return nil
}

type Status string

const (
	StatusIdentified  Status = "identified"
	StatusMitigated   Status = "mitigated"
	StatusAccepted    Status = "accepted"
	StatusTransferred Status = "transferred"
)

func (s Status) Valid() bool {
	switch s {
	case StatusIdentified, StatusMitigated, StatusAccepted, StatusTransferred:
		return true
	}
	return false
}

func (s *Status) UnmarshalText(b []byte) error {
	v := Status(b)
	if !v.Valid() {
		return fmt.Errorf("unknown risk status %q", string(b))
	}
	*s = v
	return nil
}

type Risk struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Probability Level    `json:"probability"`
	Impact      Level    `json:"impact"`
	RiskScore   int      `json:"risk_score"`
	Mitigation  string   `json:"mitigation,omitempty"`
	Owner       string   `json:"owner,omitempty"`
	Status      Status   `json:"status"`
}

// Patch carries the fields an update changes; nil means unchanged.
type Patch struct {
	Category    *Category `json:"category,omitempty"`
	Description *string   `json:"description,omitempty"`
	Probability *Level    `json:"probability,omitempty"`
	Impact      *Level    `json:"impact,omitempty"`
	Mitigation  *string   `json:"mitigation,omitempty"`
	Owner       *string   `json:"owner,omitempty"`
	Status      *Status   `json:"status,omitempty"`
}

type Assessment struct {
	RFPID            string    `json:"rfp_id"`
	Risks            []Risk    `json:"risks"`
	OverallRiskScore float64   `json:"overall_risk_score"`
	RiskLevel        Posture   `json:"risk_level"`
	MitigationPlan   string    `json:"mitigation_plan,omitempty"`
	AssessedBy       string    `json:"assessed_by,omitempty"`
	AssessedAt       time.Time `json:"assessed_at"`
}
