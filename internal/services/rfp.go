package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/bidgate-backend/internal/data/aggregates"
	"github.com/yungbote/bidgate-backend/internal/data/models"
	"github.com/yungbote/bidgate-backend/internal/data/repos"
	"github.com/yungbote/bidgate-backend/internal/domain/gate"
	"github.com/yungbote/bidgate-backend/internal/domain/lifecycle"
	"github.com/yungbote/bidgate-backend/internal/domain/negotiation"
	"github.com/yungbote/bidgate-backend/internal/domain/prequal"
	"github.com/yungbote/bidgate-backend/internal/domain/risk"
	"github.com/yungbote/bidgate-backend/internal/domain/voting"
	"github.com/yungbote/bidgate-backend/internal/pkg/dbctx"
	"github.com/yungbote/bidgate-backend/internal/realtime/bus"
)

type CreateRFPInput struct {
	Title    string          `json:"title"`
	Client   string          `json:"client"`
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
	Deadline *time.Time      `json:"deadline,omitempty"`
}

// StageChange is the outcome of a gated stage move.
type StageChange struct {
	RFP     lifecycle.RFP   `json:"rfp"`
	From    lifecycle.Stage `json:"from"`
	Verdict gate.Verdict    `json:"verdict"`
}

type RFPService interface {
	Create(ctx context.Context, actor gate.Actor, in CreateRFPInput) (lifecycle.RFP, error)
	Get(ctx context.Context, id uuid.UUID) (lifecycle.RFP, error)
	List(ctx context.Context, f repos.RFPFilter) ([]lifecycle.RFP, error)
	// CheckGate evaluates the gate for the current stage -> target without moving.
	CheckGate(ctx context.Context, id uuid.UUID, target string) (gate.Verdict, error)
	// Advance moves the pursuit to target once its gate passes.
	Advance(ctx context.Context, actor gate.Actor, id uuid.UUID, target string) (StageChange, error)
}

type rfpService struct {
	runtime
	prequal     *aggregates.Store[prequal.Session]
	voting      *aggregates.Store[voting.Round]
	risk        *aggregates.Store[risk.Assessment]
	negotiation *aggregates.Store[negotiation.Snapshot]
}

func NewRFPService(d Deps) RFPService {
	return &rfpService{
		runtime:     newRuntime(d, "RFPService"),
		prequal:     prequalStore(d),
		voting:      votingStore(d),
		risk:        riskStore(d),
		negotiation: negotiationStore(d),
	}
}

func (s *rfpService) Create(ctx context.Context, actor gate.Actor, in CreateRFPInput) (lifecycle.RFP, error) {
	const op = "rfp.create"
	rfp, err := lifecycle.NewRFP(uuid.NewString(), in.Title, in.Client, in.Value, in.Currency, actor, s.now())
	if err != nil {
		return lifecycle.RFP{}, err
	}
	if in.Deadline != nil {
		d := in.Deadline.UTC()
		rfp.Deadline = &d
	}
	row := toRFPModel(rfp)
	err = aggregates.ExecuteWrite(ctx, s.Base, op, func(dbc dbctx.Context) error {
		return s.RFPs.Create(dbc, row)
	})
	if err != nil {
		return lifecycle.RFP{}, err
	}
	s.log.Info("rfp created", "rfp_id", rfp.ID, "actor_id", actor.ID)
	return rfp, nil
}

func (s *rfpService) Get(ctx context.Context, id uuid.UUID) (lifecycle.RFP, error) {
	row, err := s.requireRFP(dbctx.Context{Ctx: ctx}, "rfp.get", id)
	if err != nil {
		return lifecycle.RFP{}, err
	}
	return fromRFPModel(row), nil
}

func (s *rfpService) List(ctx context.Context, f repos.RFPFilter) ([]lifecycle.RFP, error) {
	if f.Stage != "" {
		st, err := lifecycle.ParseStage(f.Stage)
		if err != nil {
			return nil, err
		}
		f.Stage = string(st)
	}
	rows, err := s.RFPs.List(dbctx.Context{Ctx: ctx}, f)
	if err != nil {
		return nil, aggregates.MapError("rfp.list", err)
	}
	out := make([]lifecycle.RFP, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRFPModel(r))
	}
	return out, nil
}

// gateInputs loads every evaluator aggregate the gate policy may consult.
func (s *rfpService) gateInputs(dbc dbctx.Context, id uuid.UUID) (lifecycle.Inputs, error) {
	var in lifecycle.Inputs
	pq, err := s.prequal.Load(dbc, id)
	if err != nil {
		return in, err
	}
	if pq.Found && pq.Value.Result != nil {
		res := *pq.Value.Result
		in.Prequal = &res
	}
	vr, err := s.voting.Load(dbc, id)
	if err != nil {
		return in, err
	}
	if vr.Found {
		in.Round = &vr.Value
	}
	ra, err := s.risk.Load(dbc, id)
	if err != nil {
		return in, err
	}
	if ra.Found {
		in.Risk = &ra.Value
	}
	ns, err := s.negotiation.Load(dbc, id)
	if err != nil {
		return in, err
	}
	if ns.Found {
		in.Negotiation = &ns.Value
	}
	return in, nil
}

func (s *rfpService) CheckGate(ctx context.Context, id uuid.UUID, target string) (gate.Verdict, error) {
	const op = "rfp.check_gate"
	tgt, err := lifecycle.ParseStage(target)
	if err != nil {
		return gate.Verdict{}, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	row, err := s.requireRFP(dbc, op, id)
	if err != nil {
		return gate.Verdict{}, err
	}
	in, err := s.gateInputs(dbc, id)
	if err != nil {
		return gate.Verdict{}, aggregates.MapError(op, err)
	}
	return lifecycle.Check(lifecycle.Stage(row.Stage), tgt, in), nil
}

func (s *rfpService) Advance(ctx context.Context, actor gate.Actor, id uuid.UUID, target string) (StageChange, error) {
	const op = "rfp.advance"
	ctx, span := s.span(ctx, "services.rfp.advance", id)
	var (
		out StageChange
		err error
	)
	defer func() { endSpan(span, err) }()

	if err = gate.RequireActor(op, actor); err != nil {
		return out, err
	}
	tgt, err := lifecycle.ParseStage(target)
	if err != nil {
		return out, err
	}

	err = s.locked(ctx, id, "stage", func(ctx context.Context) error {
		return aggregates.ExecuteWrite(ctx, s.Base, op, func(dbc dbctx.Context) error {
			row, err := s.requireRFP(dbc, op, id)
			if err != nil {
				return err
			}
			cur := fromRFPModel(row)
			in, err := s.gateInputs(dbc, id)
			if err != nil {
				return err
			}
			next, v, advErr := lifecycle.Advance(cur, tgt, in, s.now())
			out = StageChange{RFP: next, From: cur.Stage, Verdict: v}
			if v.Gate != "" && lifecycle.GatedEdge(cur.Stage, tgt) {
				s.Metrics.IncGateVerdict(v.Gate, string(v.Outcome))
			}
			if advErr != nil {
				return advErr
			}
			if next.Stage == cur.Stage {
				return nil
			}
			ok, err := s.RFPs.UpdateStageIf(dbc, id, string(cur.Stage), string(next.Stage), next.UpdatedAt)
			if err != nil {
				return err
			}
			if !ok {
				return aggregates.ConflictError("rfp stage changed concurrently")
			}
			return nil
		})
	})
	if err != nil {
		return out, err
	}
	if out.From != out.RFP.Stage {
		s.log.Info("rfp stage changed", "rfp_id", id.String(), "from", out.From, "to", out.RFP.Stage, "actor_id", actor.ID)
		s.publish(ctx, bus.TopicStageChanged, id, actor, map[string]any{
			"from": out.From,
			"to":   out.RFP.Stage,
		})
	}
	return out, nil
}

func toRFPModel(r lifecycle.RFP) *models.RFP {
	id, _ := uuid.Parse(r.ID)
	return &models.RFP{
		ID:        id,
		Title:     r.Title,
		Client:    r.Client,
		Value:     r.Value,
		Currency:  r.Currency,
		Stage:     string(r.Stage),
		Deadline:  r.Deadline,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func fromRFPModel(m *models.RFP) lifecycle.RFP {
	return lifecycle.RFP{
		ID:        m.ID.String(),
		Title:     m.Title,
		Client:    m.Client,
		Value:     m.Value,
		Currency:  m.Currency,
		Stage:     lifecycle.Stage(m.Stage),
		Deadline:  m.Deadline,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}
