package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/sightcare/netra/internal/analytics"
	analyticsdomain "github.com/sightcare/netra/internal/analytics/domain"
	"github.com/sightcare/netra/internal/audit"
	auditdomain "github.com/sightcare/netra/internal/audit/domain"
	"github.com/sightcare/netra/internal/auth"
	authdomain "github.com/sightcare/netra/internal/auth/domain"
	"github.com/sightcare/netra/internal/auth/session"
	"github.com/sightcare/netra/internal/authorization"
	"github.com/sightcare/netra/internal/card"
	"github.com/sightcare/netra/internal/config"
	"github.com/sightcare/netra/internal/observability"
	obsmiddleware "github.com/sightcare/netra/internal/observability/logger"
	obsmetrics "github.com/sightcare/netra/internal/observability/metrics"
	obstracing "github.com/sightcare/netra/internal/observability/tracing"
	"github.com/sightcare/netra/internal/pledge"
	pledgedomain "github.com/sightcare/netra/internal/pledge/domain"
	"github.com/sightcare/netra/internal/ratelimit"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	audit.Module,
	auth.Module,
	authorization.Module,
	pledge.Module,
	analytics.Module,
	card.Module,
	ratelimit.Module,
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func RunHTTP(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	sessions      *session.Manager
	authSvc       authdomain.Service
	authzSvc      authorization.Service
	auditSvc      auditdomain.Service
	pledgeSvc     pledgedomain.Service
	analyticsSvc  analyticsdomain.Service
	cards         card.Provider
	intakeLimiter *ratelimit.IntakeLimiter
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	Sessions      *session.Manager
	AuthSvc       authdomain.Service
	AuthzSvc      authorization.Service `optional:"true"`
	AuditSvc      auditdomain.Service
	PledgeSvc     pledgedomain.Service
	AnalyticsSvc  analyticsdomain.Service
	Cards         card.Provider
	IntakeLimiter *ratelimit.IntakeLimiter `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		sessions:      p.Sessions,
		authSvc:       p.AuthSvc,
		authzSvc:      p.AuthzSvc,
		auditSvc:      p.AuditSvc,
		pledgeSvc:     p.PledgeSvc,
		analyticsSvc:  p.AnalyticsSvc,
		cards:         p.Cards,
		intakeLimiter: p.IntakeLimiter,
		obsMetrics:    p.ObsMetrics,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterRoutes() {
	s.RegisterAuthRoutes()
	s.RegisterPublicRoutes()
	s.RegisterStatsRoutes()
	s.RegisterAdminRoutes()
}

func (s *Server) RegisterAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.WebAuthRequired(), s.Me)
}

func (s *Server) RegisterPublicRoutes() {
	s.engine.POST("/pledges", s.IntakeRateLimit(), s.CreatePledge)
	s.engine.GET("/verify/:reference", s.VerifyPledgeLookup)
}

func (s *Server) RegisterStatsRoutes() {
	stats := s.engine.Group("/neb/api/stats")

	stats.GET("/summary", s.StatsSummary)
	stats.GET("/trends", s.StatsTrends)
	stats.GET("/weekly", s.StatsWeekly)
	stats.GET("/monthly", s.StatsMonthly)
	stats.GET("/yearly", s.StatsYearly)
	stats.GET("/historical", s.StatsHistorical)
	stats.GET("/comparative", s.StatsComparative)
	stats.GET("/growth", s.StatsGrowth)
	stats.GET("/sources", s.StatsSources)
	stats.GET("/languages", s.StatsLanguages)
	stats.GET("/consent", s.StatsConsent)
	stats.GET("/demographics", s.StatsDemographics)
	stats.GET("/hourly", s.StatsHourly)
	stats.GET("/peak", s.StatsPeak)
	stats.GET("/states", s.StatsStates)
	stats.GET("/geographic", s.StatsGeographic)
	stats.GET("/districts/:state", s.StatsDistricts)
}

func (s *Server) RegisterAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.WebAuthRequired())

	admin.GET("/pledges", s.RequireCapability(authorization.ObjectPledge, authorization.ActionPledgeView), s.ListPledges)
	admin.GET("/pledges/export", s.RequireCapability(authorization.ObjectPledge, authorization.ActionPledgeExport), s.ExportPledges)
	admin.GET("/pledges/:id", s.RequireCapability(authorization.ObjectPledge, authorization.ActionPledgeView), s.GetPledge)
	admin.PATCH("/pledges/:id", s.RequireCapability(authorization.ObjectPledge, authorization.ActionPledgeUpdate), s.UpdatePledge)
	admin.POST("/pledges/:id/verify", s.RequireCapability(authorization.ObjectPledge, authorization.ActionPledgeVerify), s.VerifyPledge)
	admin.DELETE("/pledges/:id", s.RequireCapability(authorization.ObjectPledge, authorization.ActionPledgeDeactivate), s.DeactivatePledge)
	admin.GET("/pledges/:id/card", s.RequireCapability(authorization.ObjectPledge, authorization.ActionPledgeCard), s.DownloadDonorCard)

	admin.GET("/audit-logs", s.RequireCapability(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}
