package app

import (
	"gorm.io/gorm"

	httpx "github.com/yungbote/bidgate-backend/internal/http"
	httpH "github.com/yungbote/bidgate-backend/internal/http/handlers"
	"github.com/yungbote/bidgate-backend/internal/observability"
	"github.com/yungbote/bidgate-backend/internal/platform/logger"
	"github.com/yungbote/bidgate-backend/internal/realtime/sse"
)

func wireServer(db *gorm.DB, log *logger.Logger, cfg Config, svcs Services, metrics *observability.Metrics, hub *sse.Hub) *httpx.Server {
	log.Info("Wiring router...")
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpx.NewServer(httpx.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		CORSOrigins:        cfg.CORSOrigins,
		ServiceName:        serviceName,
		HealthHandler:      httpH.NewHealthHandler(db),
		RFPHandler:         httpH.NewRFPHandler(svcs.RFPs, svcs.Overview),
		PrequalHandler:     httpH.NewPrequalHandler(svcs.Prequal),
		VotingHandler:      httpH.NewVotingHandler(svcs.Voting),
		RiskHandler:        httpH.NewRiskHandler(svcs.Risk),
		NegotiationHandler: httpH.NewNegotiationHandler(svcs.Negotiation),
		WinLossHandler:     httpH.NewWinLossHandler(svcs.WinLoss),
		EventsHandler:      httpH.NewEventsHandler(hub),
	})
}
