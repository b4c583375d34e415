package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/bidgate-backend/internal/domain/winloss"
	"github.com/yungbote/bidgate-backend/internal/http/response"
	"github.com/yungbote/bidgate-backend/internal/services"
)

type WinLossHandler struct {
	svc services.WinLossService
}

func NewWinLossHandler(svc services.WinLossService) *WinLossHandler {
	return &WinLossHandler{svc: svc}
}

// PUT /api/rfps/:id/winloss
func (h *WinLossHandler) Record(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	var req winloss.Input
	if !bind(c, &req) {
		return
	}
	a, err := h.svc.Record(c.Request.Context(), actor(c), id, req)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondOK(c, gin.H{"analysis": a})
}

// GET /api/rfps/:id/winloss
func (h *WinLossHandler) Get(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	a, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondOK(c, gin.H{"analysis": a})
}
