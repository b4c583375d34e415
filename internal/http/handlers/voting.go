package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bidgate-backend/internal/domain/voting"
	"github.com/yungbote/bidgate-backend/internal/http/response"
	"github.com/yungbote/bidgate-backend/internal/services"
)

type VotingHandler struct {
	svc services.VotingService
}

func NewVotingHandler(svc services.VotingService) *VotingHandler {
	return &VotingHandler{svc: svc}
}

// POST /api/rfps/:id/voting
func (h *VotingHandler) Open(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	var req services.OpenRoundInput
	if !bind(c, &req) {
		return
	}
	round, err := h.svc.Open(c.Request.Context(), actor(c), id, req)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, round)
}

// GET /api/rfps/:id/voting
func (h *VotingHandler) Get(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	round, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondOK(c, round)
}

// POST /api/rfps/:id/voting/votes
// The voter is the acting user.
func (h *VotingHandler) Vote(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	var req voting.Ballot
	if !bind(c, &req) {
		return
	}
	round, err := h.svc.Vote(c.Request.Context(), actor(c), id, req)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondOK(c, round)
}

// POST /api/rfps/:id/voting/cancel
func (h *VotingHandler) Cancel(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	round, err := h.svc.Cancel(c.Request.Context(), actor(c), id, req.Reason)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondOK(c, round)
}
