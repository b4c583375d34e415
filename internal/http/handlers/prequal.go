package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bidgate-backend/internal/domain/prequal"
	"github.com/yungbote/bidgate-backend/internal/http/response"
	"github.com/yungbote/bidgate-backend/internal/services"
)

type PrequalHandler struct {
	svc services.PrequalService
}

func NewPrequalHandler(svc services.PrequalService) *PrequalHandler {
	return &PrequalHandler{svc: svc}
}

type sessionView struct {
	Session prequal.Session    `json:"session"`
	Current *prequal.Criterion `json:"current,omitempty"`
	Done    int                `json:"done"`
	Total   int                `json:"total"`
	Preview *prequal.Result    `json:"preview,omitempty"`
}

func viewSession(s prequal.Session) sessionView {
	v := sessionView{Session: s}
	v.Done, v.Total = s.Progress()
	if c, ok := s.Current(); ok {
		v.Current = &c
	}
	if !s.Finished() {
		if res, err := s.Preview(); err == nil {
			v.Preview = &res
		}
	}
	return v
}

func (h *PrequalHandler) respond(c *gin.Context, s prequal.Session, err error) {
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondOK(c, viewSession(s))
}

// POST /api/rfps/:id/prequal
func (h *PrequalHandler) Start(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	s, err := h.svc.Start(c.Request.Context(), actor(c), id)
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, viewSession(s))
}

// GET /api/rfps/:id/prequal
func (h *PrequalHandler) Get(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	s, err := h.svc.Get(c.Request.Context(), id)
	h.respond(c, s, err)
}

// POST /api/rfps/:id/prequal/answers
// body: { "criterion_id": "...", "value": "...", "notes": "..." } or { "criterion_id": "...", "skip": true }
func (h *PrequalHandler) Answer(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	var req struct {
		CriterionID string `json:"criterion_id" binding:"required"`
		Value       string `json:"value"`
		Notes       string `json:"notes"`
		Skip        bool   `json:"skip"`
	}
	if !bind(c, &req) {
		return
	}
	var (
		s   prequal.Session
		err error
	)
	if req.Skip {
		s, err = h.svc.Skip(c.Request.Context(), actor(c), id, req.CriterionID)
	} else {
		s, err = h.svc.Answer(c.Request.Context(), actor(c), id, req.CriterionID, req.Value, req.Notes)
	}
	h.respond(c, s, err)
}

// DELETE /api/rfps/:id/prequal
func (h *PrequalHandler) Discard(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	if err := h.svc.Discard(c.Request.Context(), actor(c), id); err != nil {
		response.RespondError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/rfps/:id/prequal/history?limit=
func (h *PrequalHandler) History(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	recs, err := h.svc.History(c.Request.Context(), id, queryInt(c, "limit", 20))
	if err != nil {
		response.RespondError(c, err, nil)
		return
	}
	response.RespondOK(c, gin.H{"history": recs})
}
