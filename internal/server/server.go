package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/procurehq/intake/internal/config"
	"github.com/procurehq/intake/internal/dashboard"
	"github.com/procurehq/intake/internal/identity"
	obsmetrics "github.com/procurehq/intake/internal/observability/metrics"
	requestdomain "github.com/procurehq/intake/internal/request/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
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
	engine       *gin.Engine
	cfg          config.Config
	requestSvc   requestdomain.Service
	dashboardSvc dashboard.Service
	identitySvc  *identity.Service
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	RequestSvc   requestdomain.Service
	DashboardSvc dashboard.Service
	IdentitySvc  *identity.Service
	ObsMetrics   *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		requestSvc:   p.RequestSvc,
		dashboardSvc: p.DashboardSvc,
		identitySvc:  p.IdentitySvc,
		obsMetrics:   p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth/google")
	auth.GET("/login", s.AuthLogin)
	auth.GET("/callback", s.AuthCallback)
	auth.POST("/logout", s.AuthLogout)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.identitySvc.Middleware())

	api.POST("/requests", s.RequireIdentity(), s.SubmitRequest)
	api.GET("/requests", s.RequireIdentity(), s.ListRequests)
	api.GET("/requests/export", s.RequireIdentity(), s.ExportRequests)
	api.GET("/dashboard", s.RequireIdentity(), s.Dashboard)
}
