package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/bidgate-backend/internal/data/aggregates"
	"github.com/yungbote/bidgate-backend/internal/data/archive"
	"github.com/yungbote/bidgate-backend/internal/data/models"
	"github.com/yungbote/bidgate-backend/internal/domain/gate"
	"github.com/yungbote/bidgate-backend/internal/domain/lifecycle"
	"github.com/yungbote/bidgate-backend/internal/domain/negotiation"
	"github.com/yungbote/bidgate-backend/internal/domain/prequal"
	"github.com/yungbote/bidgate-backend/internal/domain/risk"
	"github.com/yungbote/bidgate-backend/internal/domain/voting"
	"github.com/yungbote/bidgate-backend/internal/domain/winloss"
	"github.com/yungbote/bidgate-backend/internal/pkg/dbctx"
)

// NextStage is one legal move from the current stage and what its gate says now.
type NextStage struct {
	Stage   lifecycle.Stage `json:"stage"`
	Verdict gate.Verdict    `json:"verdict"`
}

// Overview gathers everything known about one pursuit.
type Overview struct {
	RFP            lifecycle.RFP         `json:"rfp"`
	Prequal        *prequal.Session      `json:"prequal,omitempty"`
	Round          *voting.Round         `json:"round,omitempty"`
	Risk           *risk.Assessment      `json:"risk,omitempty"`
	Negotiation    *negotiation.Snapshot `json:"negotiation,omitempty"`
	WinLoss        *winloss.Analysis     `json:"winloss,omitempty"`
	NextStages     []NextStage           `json:"next_stages"`
	PrequalHistory []archive.Record      `json:"prequal_history,omitempty"`
}

// Attention is a pursuit whose evaluator snapshot sits in a given status.
type Attention struct {
	RFPID     string `json:"rfp_id"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	UpdatedBy string `json:"updated_by"`
	Version   int    `json:"version"`
}

type OverviewService interface {
	Get(ctx context.Context, rfpID uuid.UUID) (Overview, error)
	// ByStatus lists pursuits whose kind snapshot has status, newest first.
	ByStatus(ctx context.Context, kind, status string, limit int) ([]Attention, error)
}

type overviewService struct {
	runtime
	archive     archive.Archive
	prequal     *aggregates.Store[prequal.Session]
	voting      *aggregates.Store[voting.Round]
	risk        *aggregates.Store[risk.Assessment]
	negotiation *aggregates.Store[negotiation.Snapshot]
	winloss     *aggregates.Store[winloss.Analysis]
}

func NewOverviewService(d Deps, arch archive.Archive) OverviewService {
	if arch == nil {
		arch = archive.NewMemory()
	}
	return &overviewService{
		runtime:     newRuntime(d, "OverviewService"),
		archive:     arch,
		prequal:     prequalStore(d),
		voting:      votingStore(d),
		risk:        riskStore(d),
		negotiation: negotiationStore(d),
		winloss:     winlossStore(d),
	}
}

func (s *overviewService) Get(ctx context.Context, rfpID uuid.UUID) (Overview, error) {
	const op = "overview.get"
	ctx, span := s.span(ctx, "services."+op, rfpID)
	var (
		out     Overview
		rows    []*models.GateSnapshot
		history []archive.Record
		err     error
	)
	defer func() { endSpan(span, err) }()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		row, err := s.requireRFP(dbctx.Context{Ctx: gctx}, op, rfpID)
		if err != nil {
			return err
		}
		out.RFP = fromRFPModel(row)
		return nil
	})
	g.Go(func() error {
		var err error
		rows, err = s.Snapshots.ListByRFP(dbctx.Context{Ctx: gctx}, rfpID)
		return aggregates.MapError(op, err)
	})
	g.Go(func() error {
		recs, err := s.archive.ListByRFP(gctx, rfpID.String(), 5)
		if err != nil {
			// archive outages only drop history
			s.log.Warn("prequal history unavailable", "rfp_id", rfpID.String(), "error", err)
			return nil
		}
		history = recs
		return nil
	})
	if err = g.Wait(); err != nil {
		return Overview{}, err
	}

	if err = s.decode(rows, &out); err != nil {
		return Overview{}, gate.Wrap(gate.CodeInternal, op, err)
	}
	out.PrequalHistory = history

	in := lifecycle.Inputs{Round: out.Round, Risk: out.Risk, Negotiation: out.Negotiation}
	if out.Prequal != nil {
		in.Prequal = out.Prequal.Result
	}
	out.NextStages = make([]NextStage, 0, 3)
	for _, st := range lifecycle.LegalTargets(out.RFP.Stage) {
		out.NextStages = append(out.NextStages, NextStage{Stage: st, Verdict: lifecycle.Check(out.RFP.Stage, st, in)})
	}
	return out, nil
}

func (s *overviewService) decode(rows []*models.GateSnapshot, out *Overview) error {
	for _, row := range rows {
		switch models.SnapshotKind(row.Kind) {
		case models.KindPrequal:
			v, err := s.prequal.Decode(row)
			if err != nil {
				return fmt.Errorf("decode prequal: %w", err)
			}
			out.Prequal = &v
		case models.KindVoting:
			v, err := s.voting.Decode(row)
			if err != nil {
				return fmt.Errorf("decode voting: %w", err)
			}
			out.Round = &v
		case models.KindRisk:
			v, err := s.risk.Decode(row)
			if err != nil {
				return fmt.Errorf("decode risk: %w", err)
			}
			out.Risk = &v
		case models.KindNegotiation:
			v, err := s.negotiation.Decode(row)
			if err != nil {
				return fmt.Errorf("decode negotiation: %w", err)
			}
			out.Negotiation = &v
		case models.KindWinLoss:
			v, err := s.winloss.Decode(row)
			if err != nil {
				return fmt.Errorf("decode winloss: %w", err)
			}
			out.WinLoss = &v
		default:
			s.log.Warn("unknown snapshot kind", "kind", row.Kind, "rfp_id", row.RFPID.String())
		}
	}
	return nil
}

func (s *overviewService) ByStatus(ctx context.Context, kind, status string, limit int) ([]Attention, error) {
	const op = "overview.by_status"
	k := models.SnapshotKind(kind)
	switch k {
	case models.KindPrequal, models.KindVoting, models.KindRisk, models.KindNegotiation, models.KindWinLoss:
	default:
		return nil, gate.Errorf(gate.CodeValidation, op, "unknown snapshot kind %q", kind)
	}
	rows, err := s.Snapshots.ListByStatus(dbctx.Context{Ctx: ctx}, k, status, limit)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	out := make([]Attention, 0, len(rows))
	for _, r := range rows {
		out = append(out, Attention{
			RFPID:     r.RFPID.String(),
			Kind:      r.Kind,
			Status:    r.Status,
			UpdatedBy: r.UpdatedBy,
			Version:   r.Version,
		})
	}
	return out, nil
}
