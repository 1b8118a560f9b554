package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/legaldraft/legaldraft/internal/auth/domain"
	"github.com/legaldraft/legaldraft/internal/auth/oauth"
	"github.com/legaldraft/legaldraft/internal/config"
	obsmetrics "github.com/legaldraft/legaldraft/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Server struct {
	engine   *gin.Engine
	cfg      config.Config
	log      *zap.Logger
	authsvc  domain.Service
	oauthsvc *oauth.Service
}

func NewEngine(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics, reg *prometheus.Registry) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return r
}

func NewServer(engine *gin.Engine, cfg config.Config, log *zap.Logger, authsvc domain.Service, oauthsvc *oauth.Service) *Server {
	s := &Server{
		engine:   engine,
		cfg:      cfg,
		log:      log.Named("server"),
		authsvc:  authsvc,
		oauthsvc: oauthsvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api/auth")
	api.POST("/register", s.Register)
	api.POST("/token", s.Login)
	api.POST("/refresh", s.Refresh)
	api.POST("/password-reset-request", s.RequestPasswordReset)
	api.POST("/password-reset", s.ConfirmPasswordReset)
	api.POST("/oauth/:provider/login", s.OAuthLogin)
	api.POST("/oauth/:provider/callback", s.OAuthCallback)

	authed := api.Group("", s.RequireAuth())
	authed.GET("/me", s.Me)
	authed.PATCH("/me", s.ChangePassword)
	authed.DELETE("/me", s.DeleteAccount)
}

func run(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)
