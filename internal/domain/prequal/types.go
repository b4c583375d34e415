package prequal

import (
	"fmt"
	"time"
)

type Category string

const (
	CategoryStrategic  Category = "strategic"
	CategoryFinancial  Category = "financial"
	CategoryTechnical  Category = "technical"
	CategoryCompliance Category = "compliance"
	CategoryResource   Category = "resource"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryStrategic, CategoryFinancial, CategoryTechnical, CategoryCompliance, CategoryResource:
		return true
	}
	return false
}

func (c *Category) UnmarshalText(b []byte) error {
	v := Category(b)
	if !v.Valid() {
		return fmt.Errorf("unknown criterion category %q", string(b))
	}
	*c = v
	return nil
}

type Recommendation string

const (
	RecommendProceed Recommendation = "proceed"
	RecommendReview  Recommendation = "review"
	RecommendReject  Recommendation = "reject"
)

// Option is one mutually exclusive answer to a criterion.
type Option struct {
	Value        string  `json:"value" yaml:"value"`
	Label        string  `json:"label" yaml:"label"`
	Score        float64 `json:"score" yaml:"score"`
	Disqualifies bool    `json:"disqualifies,omitempty" yaml:"disqualifies"`
}

type Criterion struct {
	ID       string   `json:"id" yaml:"id"`
	Category Category `json:"category" yaml:"category"`
	Question string   `json:"question" yaml:"question"`
	Weight   float64  `json:"weight" yaml:"weight"`
	Required bool     `json:"required" yaml:"required"`
	Options  []Option `json:"options" yaml:"options"`
}

func (c Criterion) Option(value string) (Option, bool) {
	for _, o := range c.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// Response records the selected option for one criterion.
type Response struct {
	CriterionID string    `json:"criterion_id"`
	Value       string    `json:"value"`
	Score       float64   `json:"score"`
	Notes       string    `json:"notes,omitempty"`
	RespondedBy string    `json:"responded_by"`
	RespondedAt time.Time `json:"responded_at"`
}

type Result struct {
	TotalScore              float64        `json:"total_score"`
	MaxScore                float64        `json:"max_score"`
	ScorePercentage         float64        `json:"score_percentage"`
	Passed                  bool           `json:"passed"`
	Disqualified            bool           `json:"disqualified"`
	DisqualificationReasons []string       `json:"disqualification_reasons,omitempty"`
	Recommendation          Recommendation `json:"recommendation"`
	Responses               []Response     `json:"responses"`
	CompletedBy             string         `json:"completed_by,omitempty"`
	CompletedAt             time.Time      `json:"completed_at"`
}
