package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/bidgate-backend/internal/data/aggregates"
	"github.com/yungbote/bidgate-backend/internal/data/models"
	"github.com/yungbote/bidgate-backend/internal/domain/gate"
	"github.com/yungbote/bidgate-backend/internal/domain/voting"
	"github.com/yungbote/bidgate-backend/internal/pkg/dbctx"
	"github.com/yungbote/bidgate-backend/internal/realtime/bus"
)

type OpenRoundInput struct {
	Committee []voting.Member `json:"committee"`
	Deadline  time.Time       `json:"deadline"`
}

// RoundView is a round as a caller polling at AsOf should see it.
type RoundView struct {
	voting.Round
	DisplayStatus voting.Status `json:"display_status"`
	Expired       bool          `json:"expired"`
	AsOf          time.Time     `json:"as_of"`
}

type VotingService interface {
	// Open starts a round. An open round must be closed or cancelled first.
	Open(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, in OpenRoundInput) (RoundView, error)
	// Vote records the acting member's ballot.
	Vote(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, b voting.Ballot) (RoundView, error)
	Cancel(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, reason string) (RoundView, error)
	Get(ctx context.Context, rfpID uuid.UUID) (RoundView, error)
}

type votingService struct {
	runtime
	store *aggregates.Store[voting.Round]
}

func NewVotingService(d Deps) VotingService {
	return &votingService{
		runtime: newRuntime(d, "VotingService"),
		store:   votingStore(d),
	}
}

func (s *votingService) view(r voting.Round) RoundView {
	now := s.now()
	return RoundView{Round: r, DisplayStatus: r.StatusAt(now), Expired: r.Expired(now), AsOf: now}
}

func (s *votingService) Open(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, in OpenRoundInput) (RoundView, error) {
	const op = "voting.open"
	if _, err := s.requireRFP(dbctx.Context{Ctx: ctx}, op, rfpID); err != nil {
		return RoundView{}, err
	}
	return s.mutate(ctx, op, actor, rfpID, func(cur aggregates.Loaded[voting.Round]) (voting.Round, error) {
		if cur.Found && cur.Value.Status == voting.StatusOpen {
			return cur.Value, gate.Errorf(gate.CodeConflict, op, "round %s is still open", cur.Value.ID)
		}
		return voting.OpenRound(uuid.NewString(), rfpID.String(), in.Committee, in.Deadline, actor, s.now())
	})
}

func (s *votingService) Vote(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, b voting.Ballot) (RoundView, error) {
	const op = "voting.vote"
	if err := gate.RequireActor(op, actor); err != nil {
		return RoundView{}, err
	}
	return s.mutate(ctx, op, actor, rfpID, func(cur aggregates.Loaded[voting.Round]) (voting.Round, error) {
		if !cur.Found {
			return cur.Value, notFound(op, rfpID, "voting round")
		}
		return voting.SubmitVote(cur.Value, actor.ID, b, s.now())
	})
}

func (s *votingService) Cancel(ctx context.Context, actor gate.Actor, rfpID uuid.UUID, reason string) (RoundView, error) {
	const op = "voting.cancel"
	return s.mutate(ctx, op, actor, rfpID, func(cur aggregates.Loaded[voting.Round]) (voting.Round, error) {
		if !cur.Found {
			return cur.Value, notFound(op, rfpID, "voting round")
		}
		return voting.CancelRound(cur.Value, actor, reason, s.now())
	})
}

// mutate serializes fn against the round and announces a round that closed as a result.
func (s *votingService) mutate(ctx context.Context, op string, actor gate.Actor, rfpID uuid.UUID, fn func(aggregates.Loaded[voting.Round]) (voting.Round, error)) (RoundView, error) {
	ctx, span := s.span(ctx, "services."+op, rfpID)
	var (
		out    voting.Round
		closed bool
	)
	err := s.locked(ctx, rfpID, string(models.KindVoting), func(ctx context.Context) error {
		var err error
		out, err = s.store.Mutate(ctx, op, rfpID, actor.ID, func(cur aggregates.Loaded[voting.Round]) (voting.Round, error) {
			next, err := fn(cur)
			if err != nil {
				return cur.Value, err
			}
			wasClosed := cur.Found && cur.Value.ID == next.ID && cur.Value.Status == voting.StatusClosed
			closed = next.Status == voting.StatusClosed && !wasClosed
			return next, nil
		})
		return err
	})
	endSpan(span, err)
	if err != nil {
		return RoundView{}, err
	}
	if closed {
		s.log.Info("voting round closed", "rfp_id", rfpID.String(), "round_id", out.ID, "decision", out.Decision)
		s.Metrics.IncGateVerdict("bid_no_bid", string(out.Verdict().Outcome))
		s.publish(ctx, bus.TopicVotingClosed, rfpID, actor, map[string]any{
			"round_id":             out.ID,
			"decision":             out.Decision,
			"tally":                out.Tally,
			"final_recommendation": out.FinalRecommendation,
		})
	}
	return s.view(out), nil
}

func (s *votingService) Get(ctx context.Context, rfpID uuid.UUID) (RoundView, error) {
	cur, err := s.store.Get(ctx, rfpID)
	if err != nil {
		return RoundView{}, err
	}
	if !cur.Found {
		return RoundView{}, notFound("voting.get", rfpID, "voting round")
	}
	return s.view(cur.Value), nil
}
