package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/bidgate-backend/internal/data/aggregates"
	"github.com/yungbote/bidgate-backend/internal/data/archive"
	"github.com/yungbote/bidgate-backend/internal/data/models"
	"github.com/yungbote/bidgate-backend/internal/domain/gate"
	"github.com/yungbote/bidgate-backend/internal/domain/prequal"
	"github.com/yungbote/bidgate-backend/internal/pkg/dbctx"
	"github.com/yungbote/bidgate-backend/internal/realtime/bus"
)

type PrequalService interface {
	// Start opens a screening with the active criteria catalog. A finished
	// screening may be replaced; one still in progress may not.
	Start(ctx context.Context, actor gate.Actor, rfpID uuid.UUID) (prequal.Session, error)
	Answer(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, criterionID, value, notes string) (prequal.Session, error)
	Skip(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, criterionID string) (prequal.Session, error)
	Get(ctx context.Context, rfpID uuid.UUID) (prequal.Session, error)
	// Discard drops the live screening without archiving it.
	Discard(ctx context.Context, actor gate.Actor, rfpID uuid.UUID) error
	History(ctx context.Context, rfpID uuid.UUID, limit int) ([]archive.Record, error)
}

type prequalService struct {
	runtime
	store   *aggregates.Store[prequal.Session]
	catalog *CatalogStore
	archive archive.Archive
}

func NewPrequalService(d Deps, catalog *CatalogStore, arch archive.Archive) PrequalService {
	if arch == nil {
		arch = archive.NewMemory()
	}
	return &prequalService{
		runtime: newRuntime(d, "PrequalService"),
		store:   prequalStore(d),
		catalog: catalog,
		archive: arch,
	}
}

func (s *prequalService) criteria() []prequal.Criterion {
	if s.catalog == nil {
		return prequal.DefaultCriteria()
	}
	return s.catalog.Criteria()
}

func (s *prequalService) Start(ctx context.Context, actor gate.Actor, rfpID uuid.UUID) (prequal.Session, error) {
	const op = "prequal.start"
	var out prequal.Session
	if _, err := s.requireRFP(dbctx.Context{Ctx: ctx}, op, rfpID); err != nil {
		return out, err
	}
	err := s.locked(ctx, rfpID, string(models.KindPrequal), func(ctx context.Context) error {
		var err error
		out, err = s.store.Mutate(ctx, op, rfpID, actor.ID, func(cur aggregates.Loaded[prequal.Session]) (prequal.Session, error) {
			if cur.Found && !cur.Value.Finished() {
				return cur.Value, gate.NewError(gate.CodeConflict, op, "a screening is already in progress", nil)
			}
			return prequal.NewSession(s.criteria(), actor, s.now())
		})
		return err
	})
	return out, err
}

func (s *prequalService) Answer(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, criterionID, value, notes string) (prequal.Session, error) {
	return s.step(ctx, "prequal.answer", actor, rfpID, func(cur prequal.Session) (prequal.Session, error) {
		return cur.Answer(actor, criterionID, value, notes, s.now())
	})
}

func (s *prequalService) Skip(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, criterionID string) (prequal.Session, error) {
	return s.step(ctx, "prequal.skip", actor, rfpID, func(cur prequal.Session) (prequal.Session, error) {
		return cur.Skip(actor, criterionID, s.now())
	})
}

// step applies one screening mutation and, when it finishes the screening,
// archives the session and announces the result.
func (s *prequalService) step(ctx context.Context, op string, actor gate.Actor, rfpID uuid.UUID, fn func(prequal.Session) (prequal.Session, error)) (prequal.Session, error) {
	ctx, span := s.span(ctx, "services."+op, rfpID)
	var (
		out      prequal.Session
		finished bool
	)
	err := s.locked(ctx, rfpID, string(models.KindPrequal), func(ctx context.Context) error {
		var err error
		out, err = s.store.Mutate(ctx, op, rfpID, actor.ID, func(cur aggregates.Loaded[prequal.Session]) (prequal.Session, error) {
			if !cur.Found {
				return cur.Value, notFound(op, rfpID, "screening")
			}
			next, err := fn(cur.Value)
			if err != nil {
				return cur.Value, err
			}
			finished = !cur.Value.Finished() && next.Finished()
			return next, nil
		})
		return err
	})
	endSpan(span, err)
	if err != nil {
		return out, err
	}
	if finished {
		s.onFinished(ctx, actor, rfpID, out)
	}
	return out, nil
}

func (s *prequalService) onFinished(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, sess prequal.Session) {
	res := *sess.Result
	if err := s.archive.Save(ctx, toArchiveRecord(rfpID, sess, s.now())); err != nil {
		s.log.Warn("prequal archive failed", "rfp_id", rfpID.String(), "error", err)
	}
	s.Metrics.IncGateVerdict("prequal", string(res.Verdict().Outcome))
	data := map[string]any{
		"score_percentage": res.ScorePercentage,
		"recommendation":   res.Recommendation,
		"passed":           res.Passed,
	}
	if res.Disqualified {
		data["reasons"] = res.DisqualificationReasons
		s.publish(ctx, bus.TopicPrequalDisqualified, rfpID, actor, data)
		return
	}
	s.publish(ctx, bus.TopicPrequalCompleted, rfpID, actor, data)
}

func (s *prequalService) Get(ctx context.Context, rfpID uuid.UUID) (prequal.Session, error) {
	cur, err := s.store.Get(ctx, rfpID)
	if err != nil {
		return prequal.Session{}, err
	}
	if !cur.Found {
		return prequal.Session{}, notFound("prequal.get", rfpID, "screening")
	}
	return cur.Value, nil
}

func (s *prequalService) Discard(ctx context.Context, actor gate.Actor, rfpID uuid.UUID) error {
	const op = "prequal.discard"
	if err := gate.RequireActor(op, actor); err != nil {
		return err
	}
	return s.locked(ctx, rfpID, string(models.KindPrequal), func(ctx context.Context) error {
		if err := s.store.Delete(ctx, op, rfpID); err != nil {
			return err
		}
		s.log.Info("prequal screening discarded", "rfp_id", rfpID.String(), "actor_id", actor.ID)
		return nil
	})
}

func (s *prequalService) History(ctx context.Context, rfpID uuid.UUID, limit int) ([]archive.Record, error) {
	recs, err := s.archive.ListByRFP(ctx, rfpID.String(), limit)
	if err != nil {
		return nil, aggregates.MapError("prequal.history", err)
	}
	return recs, nil
}

func toArchiveRecord(rfpID uuid.UUID, sess prequal.Session, at time.Time) archive.Record {
	rec := archive.Record{
		ID:         uuid.NewString(),
		RFPID:      rfpID.String(),
		Criteria:   sess.Criteria,
		StartedBy:  sess.StartedBy,
		StartedAt:  sess.StartedAt,
		ArchivedAt: at.UTC(),
	}
	if sess.Result != nil {
		rec.Result = *sess.Result
	}
	for _, c := range sess.Criteria {
		if r, ok := sess.Responses[c.ID]; ok {
			rec.Responses = append(rec.Responses, r)
		}
		if sess.Skipped[c.ID] {
			rec.Skipped = append(rec.Skipped, strings.TrimSpace(c.ID))
		}
	}
	return rec
}
