package ctxutil

import (
	"context"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
)

type traceDataKey struct{}
type actorKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

// WithActor attaches the acting user supplied by the identity collaborator.
func WithActor(ctx context.Context, a gate.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func GetActor(ctx context.Context) (gate.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(gate.Actor)
	return a, ok && a.Valid()
}
