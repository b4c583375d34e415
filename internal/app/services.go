package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/bidgate-backend/internal/data/aggregates"
	"github.com/yungbote/bidgate-backend/internal/data/repos"
	"github.com/yungbote/bidgate-backend/internal/observability"
	"github.com/yungbote/bidgate-backend/internal/platform/logger"
	"github.com/yungbote/bidgate-backend/internal/services"
)

type Services struct {
	Catalog     *services.CatalogStore
	RFPs        services.RFPService
	Prequal     services.PrequalService
	Voting      services.VotingService
	Risk        services.RiskService
	Negotiation services.NegotiationService
	WinLoss     services.WinLossService
	Overview    services.OverviewService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")
	catalog, err := services.NewCatalogStore(cfg.CriteriaPath, cfg.TemplatePath, log)
	if err != nil {
		return Services{}, fmt.Errorf("load catalogs: %w", err)
	}
	d := services.Deps{
		Base: aggregates.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: aggregates.NewMetricsHooks(metrics),
		},
		RFPs:      repos.NewRFPRepo(db, log),
		Snapshots: repos.NewSnapshotRepo(db, log),
		Locker:    clients.Locker,
		Bus:       clients.Bus,
		Metrics:   metrics,
	}
	return Services{
		Catalog:     catalog,
		RFPs:        services.NewRFPService(d),
		Prequal:     services.NewPrequalService(d, catalog, clients.Archive),
		Voting:      services.NewVotingService(d),
		Risk:        services.NewRiskService(d),
		Negotiation: services.NewNegotiationService(d, catalog),
		WinLoss:     services.NewWinLossService(d),
		Overview:    services.NewOverviewService(d, clients.Archive),
	}, nil
}
