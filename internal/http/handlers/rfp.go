package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/bidgate-backend/internal/data/repos"
	"github.com/yungbote/bidgate-backend/internal/http/response"
	"github.com/yungbote/bidgate-backend/internal/services"
)

type RFPHandler struct {
	rfps     services.RFPService
	overview services.OverviewService
}

func NewRFPHandler(rfps services.RFPService, overview services.OverviewService) *RFPHandler {
	return &RFPHandler{rfps: rfps, overview: overview}
}

// POST /api/rfps
func (h *RFPHandler) Create(c *gin.Context) {
	var req services.CreateRFPInput
	if !bind(c, &req) {
		return
	}
	rfp, err := h.rfps.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondCreated(c, gin.H{"rfp": rfp})
}

// GET /api/rfps?stage=&client=&limit=&offset=
func (h *RFPHandler) List(c *gin.Context) {
	list, err := h.rfps.List(c.Request.Context(), repos.RFPFilter{
		Stage:  c.Query("stage"),
		Client: c.Query("client"),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	})
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondOK(c, gin.H{"rfps": list})
}

// GET /api/rfps/:id
func (h *RFPHandler) Get(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	rfp, err := h.rfps.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondOK(c, gin.H{"rfp": rfp})
}

// GET /api/rfps/:id/stage/check?target=
func (h *RFPHandler) CheckStage(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	v, err := h.rfps.CheckGate(c.Request.Context(), id, c.Query("target"))
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondOK(c, gin.H{"verdict": v})
}

// POST /api/rfps/:id/stage
// body: { "target": "go_no_go" }
func (h *RFPHandler) Advance(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	var req struct {
		Target string `json:"target" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	change, err := h.rfps.Advance(c.Request.Context(), actor(c), id, req.Target)
	if err != nil {
		response.RespondError(c, err, gin.H{"verdict": change.Verdict})
		return
	}
	response.RespondOK(c, change)
}

// GET /api/rfps/:id/overview
func (h *RFPHandler) Overview(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	ov, err := h.overview.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondOK(c, ov)
}

// GET /api/gates/:kind?status=&limit=
func (h *RFPHandler) ByGateStatus(c *gin.Context) {
	list, err := h.overview.ByStatus(c.Request.Context(), c.Param("kind"), c.Query("status"), queryInt(c, "limit", 100))
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondOK(c, gin.H{"items": list})
}
