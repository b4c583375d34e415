package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/bidgate-backend/internal/domain/risk"
	"github.com/yungbote/bidgate-backend/internal/http/response"
	"github.com/yungbote/bidgate-backend/internal/services"
)

type RiskHandler struct {
	svc services.RiskService
}

func NewRiskHandler(svc services.RiskService) *RiskHandler {
	return &RiskHandler{svc: svc}
}

func (h *RiskHandler) respond(c *gin.Context, a risk.Assessment, err error) {
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondOK(c, gin.H{"assessment": a})
}

// GET /api/rfps/:id/risks
func (h *RiskHandler) Get(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	a, err := h.svc.Get(c.Request.Context(), id)
	h.respond(c, a, err)
}

// POST /api/rfps/:id/risks
func (h *RiskHandler) Add(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	var req risk.Risk
	if !bind(c, &req) {
		return
	}
	a, err := h.svc.AddRisk(c.Request.Context(), actor(c), id, req)
	h.respond(c, a, err)
}

// PATCH /api/rfps/:id/risks/:riskId
func (h *RiskHandler) Update(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	var req risk.Patch
	if !bind(c, &req) {
		return
	}
	a, err := h.svc.UpdateRisk(c.Request.Context(), actor(c), id, c.Param("riskId"), req)
	h.respond(c, a, err)
}

// DELETE /api/rfps/:id/risks/:riskId
func (h *RiskHandler) Remove(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	a, err := h.svc.RemoveRisk(c.Request.Context(), actor(c), id, c.Param("riskId"))
	h.respond(c, a, err)
}

// PUT /api/rfps/:id/risks/mitigation-plan
func (h *RiskHandler) SetMitigationPlan(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	var req struct {
		Plan string `json:"plan"`
	}
	if !bind(c, &req) {
		return
	}
	a, err := h.svc.SetMitigationPlan(c.Request.Context(), actor(c), id, req.Plan)
	h.respond(c, a, err)
}
