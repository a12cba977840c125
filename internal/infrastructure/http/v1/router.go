// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"colisflow/internal/domain/auth"
	"colisflow/internal/infrastructure/http/v1/handlers"
	"colisflow/internal/infrastructure/http/v1/middleware"
	"colisflow/pkg/logger"
)

// RouterConfig holds the collaborators the API is built from.
type RouterConfig struct {
	Logger *logger.Logger

	// Database backs the readiness and info probes.
	Database handlers.Database

	JWTValidator  middleware.JWTValidator
	AuthService   handlers.AuthService
	CashService   handlers.CashService
	ParcelService handlers.ParcelService

	// AuditSink receives one entry per request; AuditLister serves GET /audit.
	AuditSink    middleware.AuditSubmitter
	AuditStats   handlers.AuditStats
	AuditLister  handlers.AuditLister
	AuditOptions middleware.AuditConfig

	// Idempotency is optional; when nil X-Idempotency-Key is ignored.
	Idempotency middleware.IdempotencyStore

	// CORSOrigins lists allowed origins; "*" or empty allows all.
	CORSOrigins []string
	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters!). ErrorHandler sits inside Audit so the
	// audited response is the final one, and outside Recovery so panics are
	// rendered.
	router.Use(middleware.Trace())
	router.Use(corsMiddleware(cfg.CORSOrigins))
	router.Use(middleware.Metrics())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.AuditSink != nil {
		router.Use(middleware.Audit(cfg.AuditSink, cfg.AuditOptions))
	}
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	healthHandler := handlers.NewHealthHandler(cfg.Database, cfg.AuditStats)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	base := handlers.NewBaseHandler()

	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, base, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		if cfg.Idempotency != nil {
			protected.Use(middleware.Idempotency(cfg.Idempotency))
		}

		registerCashRoutes(protected, base, cfg)
		registerReportRoutes(protected, base, cfg)
		registerParcelRoutes(protected, base, cfg)
		registerAuditRoutes(protected, base, cfg)
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	c.AddAllowHeaders("Authorization", middleware.HeaderIdempotencyKey, middleware.HeaderRequestID)
	c.AddExposeHeaders("Content-Disposition", middleware.HeaderRequestID, middleware.HeaderTraceID)
	c.MaxAge = 12 * time.Hour
	return cors.New(c)
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}
	h := handlers.NewAuthHandler(base, cfg.AuthService)

	a := rg.Group("/auth")
	a.POST("/login", middleware.OptionalAuth(cfg.JWTValidator), h.Login)
	a.GET("/me", middleware.Auth(cfg.JWTValidator), h.Me)
}

// registerCashRoutes registers registers and movements.
func registerCashRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.CashService == nil {
		return
	}
	h := handlers.NewCashHandler(base, cfg.CashService)

	registers := rg.Group("/registers")
	registers.GET("", middleware.RequirePermission(auth.PermRegisterRead), h.ListRegisters)
	registers.POST("", middleware.RequirePermission(auth.PermRegisterCreate), h.CreateRegister)
	registers.GET("/:id", middleware.RequirePermission(auth.PermRegisterRead), h.GetRegister)
	registers.GET("/:id/balance", middleware.RequirePermission(auth.PermRegisterRead), h.Balance)
	registers.POST("/:id/replenishments", middleware.RequirePermission(auth.PermMovementCreate), h.Replenish)
	registers.POST("/:id/cash-ins", middleware.RequirePermission(auth.PermMovementCreate), h.CashIn)
	registers.POST("/:id/disbursements", middleware.RequirePermission(auth.PermMovementCreate), h.Disburse)

	movements := rg.Group("/movements")
	movements.GET("", middleware.RequirePermission(auth.PermMovementRead), h.ListMovements)
	movements.GET("/:id", middleware.RequirePermission(auth.PermMovementRead), h.GetMovement)
}

// registerReportRoutes registers the reconciliation report.
func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.CashService == nil {
		return
	}
	h := handlers.NewReportHandler(base, cfg.CashService)

	reports := rg.Group("/reports", middleware.RequirePermission(auth.PermReportRead))
	reports.GET("/cash", h.Cash)
	reports.GET("/cash/export", h.Export)
}

// registerParcelRoutes registers parcel records.
func registerParcelRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.ParcelService == nil {
		return
	}
	h := handlers.NewParcelHandler(base, cfg.ParcelService)

	parcels := rg.Group("/parcels")
	parcels.GET("", middleware.RequirePermission(auth.PermParcelRead), h.List)
	parcels.POST("", middleware.RequirePermission(auth.PermParcelCreate), h.Create)
	parcels.GET("/:id", middleware.RequirePermission(auth.PermParcelRead), h.Get)
}

// registerAuditRoutes registers the audit trail listing.
func registerAuditRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.AuditLister == nil {
		return
	}
	h := handlers.NewAuditHandler(base, cfg.AuditLister)
	rg.GET("/audit", middleware.RequirePermission(auth.PermAuditRead), h.List)
}
