package services

import (
	"github.com/yungbote/bidgate-backend/internal/data/aggregates"
	"github.com/yungbote/bidgate-backend/internal/data/models"
	"github.com/yungbote/bidgate-backend/internal/domain/negotiation"
	"github.com/yungbote/bidgate-backend/internal/domain/prequal"
	"github.com/yungbote/bidgate-backend/internal/domain/risk"
	"github.com/yungbote/bidgate-backend/internal/domain/voting"
	"github.com/yungbote/bidgate-backend/internal/domain/winloss"
)

// PrequalStatusInProgress is the indexed status of an unfinished screening.
// Finished screenings are indexed by their recommendation.
const PrequalStatusInProgress = "in_progress"

func prequalStore(d Deps) *aggregates.Store[prequal.Session] {
	return aggregates.NewStore(d.Base, d.Snapshots, models.KindPrequal, func(s prequal.Session) string {
		if s.Result == nil {
			return PrequalStatusInProgress
		}
		return string(s.Result.Recommendation)
	})
}

func votingStore(d Deps) *aggregates.Store[voting.Round] {
	return aggregates.NewStore(d.Base, d.Snapshots, models.KindVoting, func(r voting.Round) string {
		return string(r.Status)
	})
}

func riskStore(d Deps) *aggregates.Store[risk.Assessment] {
	return aggregates.NewStore(d.Base, d.Snapshots, models.KindRisk, func(a risk.Assessment) string {
		return string(a.RiskLevel)
	})
}

func negotiationStore(d Deps) *aggregates.Store[negotiation.Snapshot] {
	return aggregates.NewStore(d.Base, d.Snapshots, models.KindNegotiation, func(s negotiation.Snapshot) string {
		return string(s.Status)
	})
}

func winlossStore(d Deps) *aggregates.Store[winloss.Analysis] {
	return aggregates.NewStore(d.Base, d.Snapshots, models.KindWinLoss, func(a winloss.Analysis) string {
		return string(a.Outcome)
	})
}
