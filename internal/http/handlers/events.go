package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/bidgate-backend/internal/realtime/sse"
)

type EventsHandler struct {
	hub *sse.Hub
}

func NewEventsHandler(hub *sse.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// GET /api/events
func (h *EventsHandler) StreamAll(c *gin.Context) {
	h.stream(c, sse.ChannelAll)
}

// GET /api/rfps/:id/events
func (h *EventsHandler) StreamRFP(c *gin.Context) {
	id, ok := rfpID(c)
	if !ok {
		return
	}
	h.stream(c, sse.RFPChannel(id.String()))
}

func (h *EventsHandler) stream(c *gin.Context, channel string) {
	client := h.hub.Connect(actor(c).ID, channel)
	defer h.hub.Disconnect(client)
	h.hub.Serve(c.Writer, c.Request, client)
}
