package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tourvia/commission-service/internal/auth"
	"github.com/tourvia/commission-service/internal/middleware"
	"github.com/tourvia/commission-service/pkg/observability"
	"github.com/tourvia/commission-service/pkg/resilience"
	"go.uber.org/zap"
)

// RouterConfig carries the knobs the router needs from the config layer
type RouterConfig struct {
	IsDevelopment  bool
	RateLimitRPS   float64
	RateLimitBurst int

	// Timeouts bounds each request with the handler deadline when set
	Timeouts *resilience.TimeoutConfig
}

// NewRouter builds the public API router. Every route sits behind the bearer
// token check; mutating routes additionally require a capability.
func NewRouter(h *Handlers, authManager *auth.Manager, logger *zap.Logger, cfg RouterConfig) *gin.Engine {
	if !cfg.IsDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.SecurityHeaders(cfg.IsDevelopment))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	if cfg.Timeouts != nil {
		r.Use(middleware.RequestTimeout(cfg.Timeouts))
	}
	r.Use(observability.MetricsMiddleware())

	v1 := r.Group("/v1")
	v1.Use(middleware.RequireAccessToken(authManager))

	// Sale ingest
	v1.POST("/sales",
		middleware.RequireCapability(auth.CapSaleIngest), h.PostSale)

	// Ledger reads
	v1.GET("/sales/:sale_id/lines",
		middleware.RequireCapability(auth.CapLedgerRead), h.LinesForSale)
	v1.GET("/profiles/:profile_id/lines",
		middleware.RequireCapability(auth.CapLedgerRead), h.LinesForProfile)

	// Adjustment workflow
	v1.POST("/lines/:line_id/adjustments",
		middleware.RequireCapability(auth.CapAdjustmentRequest), h.RequestAdjustment)
	v1.GET("/lines/:line_id/adjustments",
		middleware.RequireCapability(auth.CapLedgerRead), h.AdjustmentHistory)
	v1.POST("/adjustments/:adjustment_id/decision",
		middleware.RequireCapability(auth.CapAdjustmentDecide), h.DecideAdjustment)

	// Settlement
	v1.POST("/settlements/run",
		middleware.RequireCapability(auth.CapSettlementRun), h.RunSettlement)
	v1.POST("/statements/:statement_id/paid",
		middleware.RequireCapability(auth.CapSettlementPay), h.MarkStatementPaid)
	v1.GET("/profiles/:profile_id/statements",
		middleware.RequireCapability(auth.CapLedgerRead), h.StatementsForProfile)
	v1.GET("/profiles/:profile_id/statements/:period",
		middleware.RequireCapability(auth.CapLedgerRead), h.StatementForProfile)

	// Relationship graph
	v1.POST("/relations",
		middleware.RequireCapability(auth.CapRelationWrite), h.OpenRelation)
	v1.POST("/relations/close",
		middleware.RequireCapability(auth.CapRelationWrite), h.CloseRelation)
	v1.GET("/agents/:agent_id/relations",
		middleware.RequireCapability(auth.CapLedgerRead), h.RelationHistory)

	return r
}
