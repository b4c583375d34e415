// Package bus carries domain events to the notification collaborator. The
// engine never sends alerts itself; services publish here after a committed
// write and subscribers decide what to do.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TopicPrequalCompleted     = "prequal.completed"
	TopicPrequalDisqualified  = "prequal.disqualified"
	TopicVotingClosed         = "voting.closed"
	TopicNegotiationDeadlock  = "negotiation.deadlocked"
	TopicNegotiationCompleted = "negotiation.completed"
	TopicRiskCritical         = "risk.critical"
	TopicStageChanged         = "stage.changed"
)

type Event struct {
	ID      string          `json:"id"`
	Topic   string          `json:"topic"`
	RFPID   string          `json:"rfp_id"`
	ActorID string          `json:"actor_id,omitempty"`
	At      time.Time       `json:"at"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewEvent stamps an id and encodes data.
func NewEvent(topic, rfpID, actorID string, at time.Time, data any) (Event, error) {
	ev := Event{ID: uuid.NewString(), Topic: topic, RFPID: rfpID, ActorID: actorID, At: at.UTC()}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Event{}, fmt.Errorf("encode %s event: %w", topic, err)
		}
		ev.Data = raw
	}
	return ev, nil
}

type Bus interface {
	Publish(ctx context.Context, ev Event) error
	// StartForwarder delivers every published event to onEvent until ctx is done.
	StartForwarder(ctx context.Context, onEvent func(ev Event)) error
	Close() error
}

type memorySub struct {
	ctx context.Context
	fn  func(Event)
}

type memoryBus struct {
	mu   sync.RWMutex
	subs []memorySub
}

// NewMemory returns an in-process bus that delivers synchronously on the
// publishing goroutine.
func NewMemory() Bus { return &memoryBus{} }

func (b *memoryBus) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	subs := append([]memorySub(nil), b.subs...)
	b.mu.RUnlock()
	for _, s := range subs {
		if s.ctx.Err() != nil {
			continue
		}
		s.fn(ev)
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onEvent func(ev Event)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	b.mu.Lock()
	b.subs = append(b.subs, memorySub{ctx: ctx, fn: onEvent})
	b.mu.Unlock()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	b.subs = nil
	b.mu.Unlock()
	return nil
}
