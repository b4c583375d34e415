package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/bidgate-backend/internal/data/aggregates"
	"github.com/yungbote/bidgate-backend/internal/data/models"
	"github.com/yungbote/bidgate-backend/internal/domain/gate"
	"github.com/yungbote/bidgate-backend/internal/domain/negotiation"
	"github.com/yungbote/bidgate-backend/internal/pkg/dbctx"
	"github.com/yungbote/bidgate-backend/internal/realtime/bus"
)

type StartNegotiationInput struct {
	TargetCloseDate *time.Time `json:"target_close_date,omitempty"`
	// SeedDefaults adds the configured item template.
	SeedDefaults bool `json:"seed_defaults"`
}

type NegotiationService interface {
	Start(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, in StartNegotiationInput) (negotiation.Snapshot, error)
	Get(ctx context.Context, rfpID uuid.UUID) (negotiation.Snapshot, error)
	AddItem(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, it negotiation.Item) (negotiation.Snapshot, error)
	UpdateItem(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, itemID string, p negotiation.Patch) (negotiation.Snapshot, error)
	RemoveItem(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, itemID string) (negotiation.Snapshot, error)
	AdvanceStage(ctx context.Context, actor gate.Actor, rfpID uuid.UUID) (negotiation.Snapshot, error)
	SetTargetCloseDate(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, target time.Time) (negotiation.Snapshot, error)
}

type negotiationService struct {
	runtime
	store   *aggregates.Store[negotiation.Snapshot]
	catalog *CatalogStore
}

func NewNegotiationService(d Deps, catalog *CatalogStore) NegotiationService {
	return &negotiationService{
		runtime: newRuntime(d, "NegotiationService"),
		store:   negotiationStore(d),
		catalog: catalog,
	}
}

func (s *negotiationService) template() []negotiation.Item {
	if s.catalog == nil {
		return negotiation.DefaultItems()
	}
	return s.catalog.NegotiationItems()
}

func (s *negotiationService) Start(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, in StartNegotiationInput) (negotiation.Snapshot, error) {
	const op = "negotiation.start"
	if _, err := s.requireRFP(dbctx.Context{Ctx: ctx}, op, rfpID); err != nil {
		return negotiation.Snapshot{}, err
	}
	return s.mutate(ctx, op, actor, rfpID, func(cur aggregates.Loaded[negotiation.Snapshot]) (negotiation.Snapshot, error) {
		if cur.Found {
			return cur.Value, gate.NewError(gate.CodeConflict, op, "negotiation already started", nil)
		}
		snap, err := negotiation.New(rfpID.String(), in.TargetCloseDate, actor, s.now())
		if err != nil || !in.SeedDefaults {
			return snap, err
		}
		return negotiation.Seed(snap, actor, s.template(), uuid.NewString, s.now())
	})
}

func (s *negotiationService) Get(ctx context.Context, rfpID uuid.UUID) (negotiation.Snapshot, error) {
	cur, err := s.store.Get(ctx, rfpID)
	if err != nil {
		return negotiation.Snapshot{}, err
	}
	if !cur.Found {
		return negotiation.Snapshot{}, notFound("negotiation.get", rfpID, "negotiation")
	}
	return cur.Value, nil
}

func (s *negotiationService) AddItem(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, it negotiation.Item) (negotiation.Snapshot, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	return s.existing(ctx, "negotiation.add_item", actor, rfpID, func(cur negotiation.Snapshot, at time.Time) (negotiation.Snapshot, error) {
		return negotiation.AddItem(cur, actor, it, at)
	})
}

func (s *negotiationService) UpdateItem(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, itemID string, p negotiation.Patch) (negotiation.Snapshot, error) {
	return s.existing(ctx, "negotiation.update_item", actor, rfpID, func(cur negotiation.Snapshot, at time.Time) (negotiation.Snapshot, error) {
		return negotiation.UpdateItem(cur, actor, itemID, p, at)
	})
}

func (s *negotiationService) RemoveItem(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, itemID string) (negotiation.Snapshot, error) {
	return s.existing(ctx, "negotiation.remove_item", actor, rfpID, func(cur negotiation.Snapshot, at time.Time) (negotiation.Snapshot, error) {
		return negotiation.RemoveItem(cur, actor, itemID, at)
	})
}

func (s *negotiationService) AdvanceStage(ctx context.Context, actor gate.Actor, rfpID uuid.UUID) (negotiation.Snapshot, error) {
	return s.existing(ctx, "negotiation.advance_stage", actor, rfpID, func(cur negotiation.Snapshot, at time.Time) (negotiation.Snapshot, error) {
		return negotiation.AdvanceStage(cur, actor, at)
	})
}

func (s *negotiationService) SetTargetCloseDate(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, target time.Time) (negotiation.Snapshot, error) {
	return s.existing(ctx, "negotiation.target_close_date", actor, rfpID, func(cur negotiation.Snapshot, at time.Time) (negotiation.Snapshot, error) {
		return negotiation.SetTargetCloseDate(cur, actor, target, at)
	})
}

func (s *negotiationService) existing(ctx context.Context, op string, actor gate.Actor, rfpID uuid.UUID, fn func(negotiation.Snapshot, time.Time) (negotiation.Snapshot, error)) (negotiation.Snapshot, error) {
	return s.mutate(ctx, op, actor, rfpID, func(cur aggregates.Loaded[negotiation.Snapshot]) (negotiation.Snapshot, error) {
		if !cur.Found {
			return cur.Value, notFound(op, rfpID, "negotiation")
		}
		return fn(cur.Value, s.now())
	})
}

// mutate announces status transitions into deadlocked or completed.
func (s *negotiationService) mutate(ctx context.Context, op string, actor gate.Actor, rfpID uuid.UUID, fn func(aggregates.Loaded[negotiation.Snapshot]) (negotiation.Snapshot, error)) (negotiation.Snapshot, error) {
	ctx, span := s.span(ctx, "services."+op, rfpID)
	var (
		out  negotiation.Snapshot
		prev negotiation.Status
	)
	err := s.locked(ctx, rfpID, string(models.KindNegotiation), func(ctx context.Context) error {
		var err error
		out, err = s.store.Mutate(ctx, op, rfpID, actor.ID, func(cur aggregates.Loaded[negotiation.Snapshot]) (negotiation.Snapshot, error) {
			prev = cur.Value.Status
			next, err := fn(cur)
			if err != nil {
				return cur.Value, err
			}
			return next, nil
		})
		return err
	})
	endSpan(span, err)
	if err != nil {
		return negotiation.Snapshot{}, err
	}
	if out.Status == prev {
		return out, nil
	}
	switch out.Status {
	case negotiation.StatusDeadlocked:
		ids := make([]string, 0)
		for _, it := range out.Deadlocked() {
			ids = append(ids, it.ID)
		}
		s.log.Warn("negotiation deadlocked", "rfp_id", rfpID.String(), "items", ids)
		s.publish(ctx, bus.TopicNegotiationDeadlock, rfpID, actor, map[string]any{"items": ids})
	case negotiation.StatusCompleted:
		s.log.Info("negotiation completed", "rfp_id", rfpID.String())
		s.Metrics.IncGateVerdict("negotiation", string(out.Verdict().Outcome))
		s.publish(ctx, bus.TopicNegotiationCompleted, rfpID, actor, map[string]any{
			"progress_percentage": out.ProgressPercentage,
			"actual_close_date":   out.ActualCloseDate,
		})
	}
	return out, nil
}
