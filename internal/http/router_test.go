package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/bidgate-backend/internal/data/aggregates"
	"github.com/yungbote/bidgate-backend/internal/data/archive"
	"github.com/yungbote/bidgate-backend/internal/data/repos"
	"github.com/yungbote/bidgate-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/bidgate-backend/internal/http/handlers"
	"github.com/yungbote/bidgate-backend/internal/observability"
	"github.com/yungbote/bidgate-backend/internal/platform/locker"
	"github.com/yungbote/bidgate-backend/internal/realtime/bus"
	"github.com/yungbote/bidgate-backend/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	metrics := observability.NewMetrics()
	d := services.Deps{
		Base:      aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewMetricsHooks(metrics)},
		RFPs:      repos.NewRFPRepo(db, log),
		Snapshots: repos.NewSnapshotRepo(db, log),
		Locker:    locker.NewMemory(),
		Bus:       bus.NewMemory(),
		Metrics:   metrics,
	}
	catalog, err := services.NewCatalogStore("", "", log)
	require.NoError(t, err)
	arch := archive.NewMemory()
	overview := services.NewOverviewService(d, arch)
	return NewRouter(RouterConfig{
		Log:                log,
		Metrics:            metrics,
		HealthHandler:      httpH.NewHealthHandler(db),
		RFPHandler:         httpH.NewRFPHandler(services.NewRFPService(d), overview),
		PrequalHandler:     httpH.NewPrequalHandler(services.NewPrequalService(d, catalog, arch)),
		VotingHandler:      httpH.NewVotingHandler(services.NewVotingService(d)),
		RiskHandler:        httpH.NewRiskHandler(services.NewRiskService(d)),
		NegotiationHandler: httpH.NewNegotiationHandler(services.NewNegotiationService(d, catalog)),
		WinLossHandler:     httpH.NewWinLossHandler(services.NewWinLossService(d)),
	})
}

type call struct {
	method, path, actor string
	body                any
}

func do(t *testing.T, r *gin.Engine, c call) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.actor != "" {
		req.Header.Set("X-Actor-ID", c.actor)
		req.Header.Set("X-Actor-Role", "bid_manager")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func createRFP(t *testing.T, r *gin.Engine) string {
	t.Helper()
	rec, body := do(t, r, call{nethttp.MethodPost, "/api/rfps", "bm-1", map[string]any{
		"title": "Fleet telematics", "client": "Metro Transit", "value": "480000.00", "currency": "usd",
	}})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	rfp := body["rfp"].(map[string]any)
	assert.Equal(t, "intake", rfp["stage"])
	assert.Equal(t, "USD", rfp["currency"])
	return rfp["id"].(string)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)
	rec, _ := do(t, r, call{nethttp.MethodGet, "/healthcheck", "", nil})
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	createRFP(t, r)
	rec, _ = do(t, r, call{nethttp.MethodGet, "/metrics", "", nil})
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/rfps")
}

func TestRouter_WritesRequireActor(t *testing.T) {
	r := newTestRouter(t)
	rec, body := do(t, r, call{nethttp.MethodPost, "/api/rfps", "", map[string]any{"title": "x", "client": "y"}})
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", errorCode(body))

	rec, _ = do(t, r, call{nethttp.MethodGet, "/api/rfps", "", nil})
	assert.Equal(t, nethttp.StatusOK, rec.Code)
}

func TestRouter_ErrorMapping(t *testing.T) {
	r := newTestRouter(t)
	id := createRFP(t, r)

	rec, body := do(t, r, call{nethttp.MethodGet, "/api/rfps/not-a-uuid", "", nil})
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errorCode(body))

	rec, body = do(t, r, call{nethttp.MethodGet, "/api/rfps/" + id + "/voting", "", nil})
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(body))

	rec, body = do(t, r, call{nethttp.MethodPost, "/api/rfps/" + id + "/stage", "bm-1", map[string]any{"target": "won"}})
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_transition", errorCode(body))

	rec, body = do(t, r, call{nethttp.MethodPost, "/api/rfps/" + id + "/stage", "bm-1", map[string]any{"target": "go_no_go"}})
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
	assert.Equal(t, "gate_blocked", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "pending", details["verdict"].(map[string]any)["outcome"])

	rec, body = do(t, r, call{nethttp.MethodPost, "/api/rfps/" + id + "/voting", "bm-1", map[string]any{
		"committee": []map[string]any{},
	}})
	assert.Equal(t, nethttp.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "configuration", errorCode(body))

	rec, _ = do(t, r, call{nethttp.MethodPost, "/api/rfps/" + id + "/risks", "bm-1", map[string]any{
		"category": "weather", "description": "storms", "probability": "high", "impact": "high",
	}})
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestRouter_VotingFlow(t *testing.T) {
	r := newTestRouter(t)
	id := createRFP(t, r)
	base := "/api/rfps/" + id + "/voting"

	rec, _ := do(t, r, call{nethttp.MethodPost, base, "bm-1", map[string]any{
		"deadline": time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
		"committee": []map[string]any{
			{"user_id": "m1", "name": "Ana", "role": "director", "voting_power": 3, "required": true},
			{"user_id": "m2", "name": "Ben", "role": "finance", "voting_power": 2, "required": true},
			{"user_id": "m3", "name": "Cy", "role": "delivery", "voting_power": 1},
		},
	}})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())

	rec, body := do(t, r, call{nethttp.MethodPost, base + "/votes", "outsider", map[string]any{"decision": "bid"}})
	assert.Equal(t, nethttp.StatusForbidden, rec.Code)
	assert.Equal(t, "unknown_voter", errorCode(body))

	rec, _ = do(t, r, call{nethttp.MethodPost, base + "/votes", "m1", map[string]any{"decision": "bid"}})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	rec, body = do(t, r, call{nethttp.MethodPost, base + "/votes", "m1", map[string]any{"decision": "no-bid"}})
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_vote", errorCode(body))

	rec, body = do(t, r, call{nethttp.MethodPost, base + "/votes", "m2", map[string]any{"decision": "bid", "conditions": []string{"fixed scope"}}})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "closed", body["status"])
	assert.Equal(t, "bid", body["decision"])

	rec, body = do(t, r, call{nethttp.MethodPost, base + "/votes", "m3", map[string]any{"decision": "bid"}})
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
	assert.Equal(t, "round_closed", errorCode(body))
}

func TestRouter_PrequalAndOverview(t *testing.T) {
	r := newTestRouter(t)
	id := createRFP(t, r)
	base := "/api/rfps/" + id + "/prequal"

	rec, body := do(t, r, call{nethttp.MethodPost, base, "bm-1", nil})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(7), body["total"])
	assert.Equal(t, "strat-1", body["current"].(map[string]any)["id"])

	rec, body = do(t, r, call{nethttp.MethodPost, base + "/answers", "bm-1", map[string]any{"criterion_id": "strat-1", "value": "perfect"}})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["done"])

	rec, body = do(t, r, call{nethttp.MethodPost, base + "/answers", "bm-1", map[string]any{"criterion_id": "strat-2", "skip": true}})
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", errorCode(body))

	rec, body = do(t, r, call{nethttp.MethodPost, base + "/answers", "bm-1", map[string]any{"criterion_id": "fin-1", "value": "minimal"}})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	result := body["session"].(map[string]any)["result"].(map[string]any)
	assert.Equal(t, true, result["disqualified"])
	assert.Equal(t, "reject", result["recommendation"])

	rec, body = do(t, r, call{nethttp.MethodGet, base + "/history", "", nil})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Len(t, body["history"], 1)

	rec, body = do(t, r, call{nethttp.MethodGet, "/api/gates/prequal?status=reject", "", nil})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Len(t, body["items"], 1)

	rec, body = do(t, r, call{nethttp.MethodGet, "/api/rfps/" + id + "/overview", "", nil})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	next := body["next_stages"].([]any)
	require.Len(t, next, 2)
	first := next[0].(map[string]any)
	assert.Equal(t, "go_no_go", first["stage"])
	assert.Equal(t, "fail", first["verdict"].(map[string]any)["outcome"])

	rec, _ = do(t, r, call{nethttp.MethodDelete, base, "bm-1", nil})
	assert.Equal(t, nethttp.StatusNoContent, rec.Code)
}

func TestRouter_NegotiationAndWinLoss(t *testing.T) {
	r := newTestRouter(t)
	id := createRFP(t, r)
	base := "/api/rfps/" + id + "/negotiation"

	rec, body := do(t, r, call{nethttp.MethodPost, base, "bm-1", map[string]any{"seed_defaults": false}})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())

	rec, body = do(t, r, call{nethttp.MethodPost, base + "/items", "bm-1", map[string]any{
		"category": "legal", "description": "Liability cap", "our_position": "1x fees",
		"client_position": "unlimited", "priority": "must-have",
	}})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	items := body["negotiation"].(map[string]any)["items"].([]any)
	itemID := items[0].(map[string]any)["id"].(string)

	rec, body = do(t, r, call{nethttp.MethodPatch, base + "/items/" + itemID, "lawyer-1", map[string]any{"status": "deadlocked"}})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	snap := body["negotiation"].(map[string]any)
	assert.Equal(t, "deadlocked", snap["status"])
	hist := snap["items"].([]any)[0].(map[string]any)["history"].([]any)
	require.Len(t, hist, 1)
	assert.Equal(t, "lawyer-1", hist[0].(map[string]any)["actor_id"])

	rec, _ = do(t, r, call{nethttp.MethodPatch, base + "/items/nope", "bm-1", map[string]any{"status": "agreed"}})
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)

	rec, body = do(t, r, call{nethttp.MethodPut, "/api/rfps/" + id + "/winloss", "bm-1", map[string]any{
		"outcome": "won", "primary_reason": "relationship", "final_contract_value": "455000.00",
		"ratings": map[string]int{
			"technical_quality": 5, "pricing_competitiveness": 4, "presentation_quality": 4,
			"team_performance": 5, "timeliness_of_delivery": 4,
		},
	}})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	analysis := body["analysis"].(map[string]any)
	assert.Equal(t, 4.4, analysis["average_rating"])
	assert.Equal(t, "455000", analysis["final_contract_value"])
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := &Server{Engine: gin.New()}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
