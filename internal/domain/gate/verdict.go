package gate

import "strings"

type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomeFail    Outcome = "fail"
	OutcomePending Outcome = "pending"
)

// Verdict is what an evaluator hands the stage controller: an outcome plus
// the human-readable trail that produced it.
type Verdict struct {
	Gate    string   `json:"gate"`
	Outcome Outcome  `json:"outcome"`
	Reasons []string `json:"reasons,omitempty"`
}

func Pass(gateName string, reasons ...string) Verdict {
	return newVerdict(gateName, OutcomePass, reasons)
}

func Fail(gateName string, reasons ...string) Verdict {
	return newVerdict(gateName, OutcomeFail, reasons)
}

func Pending(gateName string, reasons ...string) Verdict {
	return newVerdict(gateName, OutcomePending, reasons)
}

func newVerdict(gateName string, outcome Outcome, reasons []string) Verdict {
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return Verdict{Gate: gateName, Outcome: outcome, Reasons: out}
}

func (v Verdict) Passed() bool { return v.Outcome == OutcomePass }
