package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/bidgate-backend/internal/data/aggregates"
	"github.com/yungbote/bidgate-backend/internal/data/models"
	"github.com/yungbote/bidgate-backend/internal/domain/gate"
	"github.com/yungbote/bidgate-backend/internal/domain/risk"
	"github.com/yungbote/bidgate-backend/internal/pkg/dbctx"
	"github.com/yungbote/bidgate-backend/internal/realtime/bus"
)

type RiskService interface {
	Get(ctx context.Context, rfpID uuid.UUID) (risk.Assessment, error)
	// AddRisk creates the assessment on first use. An empty risk id is generated.
	AddRisk(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, r risk.Risk) (risk.Assessment, error)
	UpdateRisk(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, riskID string, p risk.Patch) (risk.Assessment, error)
	RemoveRisk(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, riskID string) (risk.Assessment, error)
	SetMitigationPlan(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, plan string) (risk.Assessment, error)
}

type riskService struct {
	runtime
	store *aggregates.Store[risk.Assessment]
}

func NewRiskService(d Deps) RiskService {
	return &riskService{
		runtime: newRuntime(d, "RiskService"),
		store:   riskStore(d),
	}
}

func (s *riskService) Get(ctx context.Context, rfpID uuid.UUID) (risk.Assessment, error) {
	cur, err := s.store.Get(ctx, rfpID)
	if err != nil {
		return risk.Assessment{}, err
	}
	if !cur.Found {
		return risk.Assessment{}, notFound("risk.get", rfpID, "risk assessment")
	}
	return cur.Value, nil
}

func (s *riskService) AddRisk(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, r risk.Risk) (risk.Assessment, error) {
	const op = "risk.add"
	if _, err := s.requireRFP(dbctx.Context{Ctx: ctx}, op, rfpID); err != nil {
		return risk.Assessment{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return s.mutate(ctx, op, actor, rfpID, func(cur aggregates.Loaded[risk.Assessment]) (risk.Assessment, error) {
		a := cur.Value
		if !cur.Found {
			a = risk.New(rfpID.String(), actor, s.now())
		}
		return risk.AddRisk(a, actor, r, s.now())
	})
}

func (s *riskService) UpdateRisk(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, riskID string, p risk.Patch) (risk.Assessment, error) {
	const op = "risk.update"
	return s.mutate(ctx, op, actor, rfpID, func(cur aggregates.Loaded[risk.Assessment]) (risk.Assessment, error) {
		if !cur.Found {
			return cur.Value, notFound(op, rfpID, "risk assessment")
		}
		return risk.UpdateRisk(cur.Value, actor, riskID, p, s.now())
	})
}

func (s *riskService) RemoveRisk(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, riskID string) (risk.Assessment, error) {
	const op = "risk.remove"
	return s.mutate(ctx, op, actor, rfpID, func(cur aggregates.Loaded[risk.Assessment]) (risk.Assessment, error) {
		if !cur.Found {
			return cur.Value, notFound(op, rfpID, "risk assessment")
		}
		return risk.RemoveRisk(cur.Value, actor, riskID, s.now())
	})
}

func (s *riskService) SetMitigationPlan(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, plan string) (risk.Assessment, error) {
	const op = "risk.mitigation_plan"
	return s.mutate(ctx, op, actor, rfpID, func(cur aggregates.Loaded[risk.Assessment]) (risk.Assessment, error) {
		if !cur.Found {
			return cur.Value, notFound(op, rfpID, "risk assessment")
		}
		return risk.SetMitigationPlan(cur.Value, actor, plan, s.now())
	})
}

// mutate announces the assessment becoming critical. Staying critical is not re-announced.
func (s *riskService) mutate(ctx context.Context, op string, actor gate.Actor, rfpID uuid.UUID, fn func(aggregates.Loaded[risk.Assessment]) (risk.Assessment, error)) (risk.Assessment, error) {
	ctx, span := s.span(ctx, "services."+op, rfpID)
	var (
		out     risk.Assessment
		wentHot bool
	)
	err := s.locked(ctx, rfpID, string(models.KindRisk), func(ctx context.Context) error {
		var err error
		out, err = s.store.Mutate(ctx, op, rfpID, actor.ID, func(cur aggregates.Loaded[risk.Assessment]) (risk.Assessment, error) {
			next, err := fn(cur)
			if err != nil {
				return cur.Value, err
			}
			wasCritical := cur.Found && cur.Value.RiskLevel == risk.PostureCritical
			wentHot = next.RiskLevel == risk.PostureCritical && !wasCritical
			return next, nil
		})
		return err
	})
	endSpan(span, err)
	if err != nil {
		return risk.Assessment{}, err
	}
	if wentHot {
		s.log.Warn("risk posture critical", "rfp_id", rfpID.String(), "overall_risk_score", out.OverallRiskScore)
		s.publish(ctx, bus.TopicRiskCritical, rfpID, actor, map[string]any{
			"overall_risk_score": out.OverallRiskScore,
			"risks":              len(out.Risks),
		})
	}
	return out, nil
}
