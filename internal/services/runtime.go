package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/bidgate-backend/internal/data/aggregates"
	"github.com/yungbote/bidgate-backend/internal/data/models"
	"github.com/yungbote/bidgate-backend/internal/data/repos"
	"github.com/yungbote/bidgate-backend/internal/domain/gate"
	"github.com/yungbote/bidgate-backend/internal/observability"
	"github.com/yungbote/bidgate-backend/internal/pkg/dbctx"
	"github.com/yungbote/bidgate-backend/internal/platform/locker"
	"github.com/yungbote/bidgate-backend/internal/platform/logger"
	"github.com/yungbote/bidgate-backend/internal/realtime/bus"
)

// Deps is the shared plumbing every service is built from.
type Deps struct {
	Base      aggregates.BaseDeps
	RFPs      repos.RFPRepo
	Snapshots repos.SnapshotRepo
	Locker    locker.Locker
	Bus       bus.Bus
	Metrics   *observability.Metrics
	Clock     func() time.Time
}

type runtime struct {
	Deps
	log    *logger.Logger
	tracer trace.Tracer
}

func newRuntime(d Deps, name string) runtime {
	if d.Base.Log == nil {
		d.Base.Log = logger.Nop()
	}
	if d.Locker == nil {
		d.Locker = locker.NewMemory()
	}
	if d.Bus == nil {
		d.Bus = bus.NewMemory()
	}
	if d.Clock == nil {
		d.Clock = func() time.Time { return time.Now().UTC() }
	}
	return runtime{
		Deps:   d,
		log:    d.Base.Log.With("service", name),
		tracer: observability.Tracer(),
	}
}

func (rt runtime) now() time.Time { return rt.Clock().UTC() }

func (rt runtime) span(ctx context.Context, name string, rfpID uuid.UUID) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("rfp.id", rfpID.String())))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(gate.CodeOf(err)))
	}
	span.End()
}

// locked runs fn while holding the writer lock for (rfpID, kind).
func (rt runtime) locked(ctx context.Context, rfpID uuid.UUID, kind string, fn func(ctx context.Context) error) error {
	unlock, err := rt.Locker.Lock(ctx, locker.Key(rfpID.String(), kind))
	if err != nil {
		return aggregates.MapError("lock."+kind, err)
	}
	defer unlock()
	return fn(ctx)
}

// requireRFP fails with not_found unless the pursuit exists.
func (rt runtime) requireRFP(dbc dbctx.Context, op string, rfpID uuid.UUID) (*models.RFP, error) {
	row, err := rt.RFPs.GetByID(dbc, rfpID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if row == nil {
		return nil, gate.Errorf(gate.CodeNotFound, op, "rfp %s not found", rfpID)
	}
	return row, nil
}

// publish emits a post-commit event. Delivery failures are logged and
// counted but never undo the committed write.
func (rt runtime) publish(ctx context.Context, topic string, rfpID uuid.UUID, actor gate.Actor, data any) {
	ev, err := bus.NewEvent(topic, rfpID.String(), actor.ID, rt.now(), data)
	if err == nil {
		err = rt.Bus.Publish(context.WithoutCancel(ctx), ev)
	}
	rt.Metrics.IncEvent(topic, err)
	if err != nil {
		rt.log.Warn("event publish failed", "topic", topic, "rfp_id", rfpID.String(), "error", err)
		return
	}
	rt.log.Debug("event published", "topic", topic, "rfp_id", rfpID.String(), "event_id", ev.ID)
}

func notFound(op string, rfpID uuid.UUID, what string) error {
	return gate.Errorf(gate.CodeNotFound, op, "no %s for rfp %s", what, rfpID)
}
