package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/bidgate-backend/internal/data/aggregates"
	"github.com/yungbote/bidgate-backend/internal/data/models"
	"github.com/yungbote/bidgate-backend/internal/domain/gate"
	"github.com/yungbote/bidgate-backend/internal/domain/winloss"
	"github.com/yungbote/bidgate-backend/internal/pkg/dbctx"
)

type WinLossService interface {
	// Record stores the retrospective, replacing any earlier one.
	Record(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, in winloss.Input) (winloss.Analysis, error)
	Get(ctx context.Context, rfpID uuid.UUID) (winloss.Analysis, error)
}

type winLossService struct {
	runtime
	store *aggregates.Store[winloss.Analysis]
}

func NewWinLossService(d Deps) WinLossService {
	return &winLossService{
		runtime: newRuntime(d, "WinLossService"),
		store:   winlossStore(d),
	}
}

func (s *winLossService) Record(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, in winloss.Input) (winloss.Analysis, error) {
	const op = "winloss.record"
	if _, err := s.requireRFP(dbctx.Context{Ctx: ctx}, op, rfpID); err != nil {
		return winloss.Analysis{}, err
	}
	var out winloss.Analysis
	err := s.locked(ctx, rfpID, string(models.KindWinLoss), func(ctx context.Context) error {
		var err error
		out, err = s.store.Mutate(ctx, op, rfpID, actor.ID, func(cur aggregates.Loaded[winloss.Analysis]) (winloss.Analysis, error) {
			a, err := winloss.Analyze(rfpID.String(), in, actor, s.now())
			if err != nil {
				return cur.Value, err
			}
			return a, nil
		})
		return err
	})
	if err != nil {
		return winloss.Analysis{}, err
	}
	s.log.Info("win/loss recorded", "rfp_id", rfpID.String(), "outcome", out.Outcome, "average_rating", out.AverageRating)
	return out, nil
}

func (s *winLossService) Get(ctx context.Context, rfpID uuid.UUID) (winloss.Analysis, error) {
	cur, err := s.store.Get(ctx, rfpID)
	if err != nil {
		return winloss.Analysis{}, err
	}
	if !cur.Found {
		return winloss.Analysis{}, notFound("winloss.get", rfpID, "win/loss analysis")
	}
	return cur.Value, nil
}
