package lifecycle

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

var (
	owner = gate.Actor{ID: "bm-1", Role: "bid_manager"}
	t0    = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
)

func legalEdges() map[[2]Stage]bool {
	edges := map[[2]Stage]bool{}
	for i := 0; i < len(Pipeline)-1; i++ {
		edges[[2]Stage{Pipeline[i], Pipeline[i+1]}] = true
		edges[[2]Stage{Pipeline[i], StageAbandoned}] = true
	}
	edges[[2]Stage{StagePostBid, StageWon}] = true
	edges[[2]Stage{StagePostBid, StageLost}] = true
	edges[[2]Stage{StagePostBid, StageAbandoned}] = true
	return edges
}

func TestTransition_AllPairs(t *testing.T) {
	legal := legalEdges()
	for _, from := range Stages {
		for _, to := range Stages {
			rfp := RFP{ID: "rfp-1", Stage: from, UpdatedAt: t0}
			next, err := Transition(rfp, to, t0.Add(time.Hour))

			switch {
			case from == to:
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, rfp, next, "self transition must be a no-op")
			case legal[[2]Stage{from, to}]:
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, next.Stage)
				assert.Equal(t, t0.Add(time.Hour), next.UpdatedAt)
				assert.True(t, CanTransition(from, to))
			default:
				require.Error(t, err, "%s -> %s", from, to)
				assert.True(t, gate.IsCode(err, gate.CodeInvalidTransition))
				assert.Contains(t, err.Error(), string(from))
				assert.Contains(t, err.Error(), string(to))
				assert.Equal(t, rfp, next)
				assert.False(t, CanTransition(from, to))
			}
		}
	}
}

func TestTerminalStagesHaveNoOutgoingEdges(t *testing.T) {
	for _, s := range []Stage{StageWon, StageLost, StageAbandoned} {
		assert.True(t, s.IsTerminal())
		assert.Empty(t, LegalTargets(s))
	}
	for _, s := range Pipeline {
		assert.False(t, s.IsTerminal())
		assert.Contains(t, LegalTargets(s), StageAbandoned)
	}
}

func TestParseStage(t *testing.T) {
	s, err := ParseStage(" Go_No_Go ")
	require.NoError(t, err)
	assert.Equal(t, StageGoNoGo, s)

	_, err = ParseStage("shortlisted")
	assert.True(t, gate.IsCode(err, gate.CodeValidation))

	_, err = Transition(RFP{Stage: StageIntake}, "shortlisted", t0)
	assert.True(t, gate.IsCode(err, gate.CodeValidation))
}

func TestNewRFP(t *testing.T) {
	rfp, err := NewRFP("rfp-1", " Data platform ", "City of Springfield", decimal.RequireFromString("1250000.00"), "eur", owner, t0)
	require.NoError(t, err)
	assert.Equal(t, StageIntake, rfp.Stage)
	assert.Equal(t, "Data platform", rfp.Title)
	assert.Equal(t, "EUR", rfp.Currency)
	assert.Equal(t, "bm-1", rfp.CreatedBy)

	_, err = NewRFP("rfp-2", "", "x", decimal.Zero, "", owner, t0)
	assert.True(t, gate.IsCode(err, gate.CodeValidation))
	_, err = NewRFP("rfp-2", "t", "x", decimal.NewFromInt(-5), "", owner, t0)
	assert.True(t, gate.IsCode(err, gate.CodeValidation))
}
