package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/bidgate-backend/internal/http/handlers"
	httpMW "github.com/yungbote/bidgate-backend/internal/http/middleware"
	"github.com/yungbote/bidgate-backend/internal/observability"
	"github.com/yungbote/bidgate-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	ServiceName string

	HealthHandler      *httpH.HealthHandler
	RFPHandler         *httpH.RFPHandler
	PrequalHandler     *httpH.PrequalHandler
	VotingHandler      *httpH.VotingHandler
	RiskHandler        *httpH.RiskHandler
	NegotiationHandler *httpH.NegotiationHandler
	WinLossHandler     *httpH.WinLossHandler
	EventsHandler      *httpH.EventsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.AttachActor())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	read := api.Group("/")
	write := api.Group("/")
	write.Use(httpMW.RequireActor())

	// RFPs and the stage controller
	if h := cfg.RFPHandler; h != nil {
		read.GET("/rfps", h.List)
		read.GET("/rfps/:id", h.Get)
		read.GET("/rfps/:id/overview", h.Overview)
		read.GET("/rfps/:id/stage/check", h.CheckStage)
		read.GET("/gates/:kind", h.ByGateStatus)
		write.POST("/rfps", h.Create)
		write.POST("/rfps/:id/stage", h.Advance)
	}

	// Pre-qualification
	if h := cfg.PrequalHandler; h != nil {
		read.GET("/rfps/:id/prequal", h.Get)
		read.GET("/rfps/:id/prequal/history", h.History)
		write.POST("/rfps/:id/prequal", h.Start)
		write.POST("/rfps/:id/prequal/answers", h.Answer)
		write.DELETE("/rfps/:id/prequal", h.Discard)
	}

	// Bid/no-bid voting
	if h := cfg.VotingHandler; h != nil {
		read.GET("/rfps/:id/voting", h.Get)
		write.POST("/rfps/:id/voting", h.Open)
		write.POST("/rfps/:id/voting/votes", h.Vote)
		write.POST("/rfps/:id/voting/cancel", h.Cancel)
	}

	// Risk
	if h := cfg.RiskHandler; h != nil {
		read.GET("/rfps/:id/risks", h.Get)
		write.POST("/rfps/:id/risks", h.Add)
		write.PUT("/rfps/:id/risks/mitigation-plan", h.SetMitigationPlan)
		write.PATCH("/rfps/:id/risks/:riskId", h.Update)
		write.DELETE("/rfps/:id/risks/:riskId", h.Remove)
	}

	// Negotiation
	if h := cfg.NegotiationHandler; h != nil {
		read.GET("/rfps/:id/negotiation", h.Get)
		write.POST("/rfps/:id/negotiation", h.Start)
		write.POST("/rfps/:id/negotiation/items", h.AddItem)
		write.PATCH("/rfps/:id/negotiation/items/:itemId", h.UpdateItem)
		write.DELETE("/rfps/:id/negotiation/items/:itemId", h.RemoveItem)
		write.POST("/rfps/:id/negotiation/advance", h.Advance)
		write.PUT("/rfps/:id/negotiation/target-close-date", h.SetTargetCloseDate)
	}

	// Win/loss
	if h := cfg.WinLossHandler; h != nil {
		read.GET("/rfps/:id/winloss", h.Get)
		write.PUT("/rfps/:id/winloss", h.Record)
	}

	// Live events
	if h := cfg.EventsHandler; h != nil {
		read.GET("/events", h.StreamAll)
		read.GET("/rfps/:id/events", h.StreamRFP)
	}

	return r
}
