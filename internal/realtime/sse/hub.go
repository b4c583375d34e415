// Package sse fans domain events out to browsers over server-sent events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/bidgate-backend/internal/platform/logger"
	"github.com/yungbote/bidgate-backend/internal/realtime/bus"
)

// ChannelAll receives every event regardless of RFP.
const ChannelAll = "all"

// RFPChannel is the channel carrying one pursuit's events.
func RFPChannel(rfpID string) string { return "rfp:" + rfpID }

type Client struct {
	ID       uuid.UUID
	ActorID  string
	channels map[string]bool
	outbound chan bus.Event
	done     chan struct{}
	once     sync.Once
}

type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*Client]bool
	heartbeat     time.Duration
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		log:           log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*Client]bool),
		heartbeat:     15 * time.Second,
	}
}

// Connect registers a client on the given channels.
func (h *Hub) Connect(actorID string, channels ...string) *Client {
	c := &Client{
		ID:       uuid.New(),
		ActorID:  actorID,
		channels: make(map[string]bool),
		outbound: make(chan bus.Event, 16),
		done:     make(chan struct{}),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range channels {
		ch = strings.TrimSpace(ch)
		if ch == "" {
			continue
		}
		c.channels[ch] = true
		subs, ok := h.subscriptions[ch]
		if !ok {
			subs = make(map[*Client]bool)
			h.subscriptions[ch] = subs
		}
		subs[c] = true
	}
	h.log.Debug("SSE client connected", "client_id", c.ID, "actor_id", actorID, "channels", channels)
	return c
}

// Disconnect unsubscribes c and stops its stream. Safe to call twice.
func (h *Hub) Disconnect(c *Client) {
	c.once.Do(func() {
		h.mu.Lock()
		for ch := range c.channels {
			if subs, ok := h.subscriptions[ch]; ok {
				delete(subs, c)
				if len(subs) == 0 {
					delete(h.subscriptions, ch)
				}
			}
		}
		h.mu.Unlock()
		close(c.done)
	})
}

// Broadcast delivers ev to subscribers of its RFP and of ChannelAll. Slow
// clients drop events instead of blocking the publisher.
func (h *Hub) Broadcast(ev bus.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := map[*Client]bool{}
	for _, ch := range []string{RFPChannel(ev.RFPID), ChannelAll} {
		for c := range h.subscriptions[ch] {
			if seen[c] {
				continue
			}
			seen[c] = true
			select {
			case c.outbound <- ev:
			default:
				h.log.Warn("Dropping SSE event; outbound buffer full", "client_id", c.ID, "topic", ev.Topic)
			}
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*Client
	seen := map[*Client]bool{}
	for _, subs := range h.subscriptions {
		for c := range subs {
			if !seen[c] {
				seen[c] = true
				all = append(all, c)
			}
		}
	}
	h.mu.RUnlock()
	for _, c := range all {
		h.Disconnect(c)
	}
}

// Clients reports how many clients are subscribed to channel.
func (h *Hub) Clients(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[channel])
}

// Serve streams events to w until the request ends or the client is
// disconnected.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, c *Client) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			h.log.Debug("SSE client context done", "client_id", c.ID, "error", ctx.Err())
			return
		case <-c.done:
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev := <-c.outbound:
			raw, err := json.Marshal(ev)
			if err != nil {
				h.log.Warn("Failed to marshal SSE event", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Topic, raw)
			flusher.Flush()
		}
	}
}
