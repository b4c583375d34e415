package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountersAndHandler(t *testing.T) {
	m := NewMetrics()
	m.IncGateVerdict("risk", "fail")
	m.IncGateVerdict("risk", "fail")
	m.IncAggregateConflict("voting.submit")
	m.ObserveAggregateOperation("voting.submit", "success", 3*time.Millisecond)
	m.IncEvent("voting.closed", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `bidgate_gate_verdicts_total{gate="risk",outcome="fail"} 2`)
	assert.Contains(t, body, `bidgate_aggregate_conflicts_total{op="voting.submit"} 1`)
	assert.Contains(t, body, `topic="voting.closed"`)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.IncGateVerdict("x", "pass")
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.IncEvent("x", nil)
}

func TestParseRatio(t *testing.T) {
	assert.Equal(t, 0.5, parseRatio("0.5", 0.1))
	assert.Equal(t, 0.1, parseRatio("", 0.1))
	assert.Equal(t, 1.0, parseRatio("4", 0.1))
	assert.Equal(t, 0.0, parseRatio("-1", 0.1))
}
