package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bidgate-backend/internal/domain/negotiation"
	"github.com/yungbote/bidgate-backend/internal/http/response"
	"github.com/yungbote/bidgate-backend/internal/services"
)

type NegotiationHandler struct {
	svc services.NegotiationService
}

func NewNegotiationHandler(svc services.NegotiationService) *NegotiationHandler {
	return &NegotiationHandler{svc: svc}
}

func (h *NegotiationHandler) respond(c *gin.Context, s negotiation.Snapshot, err error) {
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondOK(c, gin.H{"negotiation": s})
}

// POST /api/rfps/:id/negotiation
func (h *NegotiationHandler) Start(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	var req services.StartNegotiationInput
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	s, err := h.svc.Start(c.Request.Context(), actor(c), id, req)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"negotiation": s})
}

// GET /api/rfps/:id/negotiation
func (h *NegotiationHandler) Get(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	s, err := h.svc.Get(c.Request.Context(), id)
	h.respond(c, s, err)
}

// POST /api/rfps/:id/negotiation/items
func (h *NegotiationHandler) AddItem(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	var req negotiation.Item
	if !bind(c, &req) {
		return
	}
	req.History = nil
	s, err := h.svc.AddItem(c.Request.Context(), actor(c), id, req)
	h.respond(c, s, err)
}

// PATCH /api/rfps/:id/negotiation/items/:itemId
func (h *NegotiationHandler) UpdateItem(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	var req negotiation.Patch
	if !bind(c, &req) {
		return
	}
	s, err := h.svc.UpdateItem(c.Request.Context(), actor(c), id, c.Param("itemId"), req)
	h.respond(c, s, err)
}

// DELETE /api/rfps/:id/negotiation/items/:itemId
func (h *NegotiationHandler) RemoveItem(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	s, err := h.svc.RemoveItem(c.Request.Context(), actor(c), id, c.Param("itemId"))
	h.respond(c, s, err)
}

// POST /api/rfps/:id/negotiation/advance
func (h *NegotiationHandler) Advance(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	s, err := h.svc.AdvanceStage(c.Request.Context(), actor(c), id)
	h.respond(c, s, err)
}

// PUT /api/rfps/:id/negotiation/target-close-date
func (h *NegotiationHandler) SetTargetCloseDate(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	var req struct {
		Target time.Time `json:"target_close_date" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	s, err := h.svc.SetTargetCloseDate(c.Request.Context(), actor(c), id, req.Target)
	h.respond(c, s, err)
}
