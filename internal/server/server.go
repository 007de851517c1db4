package server

import (
	"net/http"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/nulzo/neurix/internal/analytics"
	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/gateway"
	"github.com/nulzo/neurix/internal/ratelimit"
	"github.com/nulzo/neurix/internal/relay"
	"github.com/nulzo/neurix/internal/server/middleware"
	"github.com/nulzo/neurix/internal/server/validator"
	"go.uber.org/zap"
)

// Deps are the services behind the HTTP surface. Dispatcher, Analytics and
// Ingestor are optional.
type Deps struct {
	Relay        *relay.Service
	RelayLimiter *ratelimit.Limiter

	Dispatcher     *gateway.Dispatcher
	CompareLimiter *ratelimit.Limiter

	Analytics analytics.Service
	Ingestor  analytics.Ingestor
}

type Server struct {
	router *gin.Engine
	config *config.Config
	logger *zap.Logger
	deps   Deps
}

func New(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.InitValidator()

	engine := gin.New()
	engine.Use(ginzap.RecoveryWithZap(logger, true))
	engine.Use(middleware.Logger(logger))
	if cfg.Tracing.Enabled {
		engine.Use(middleware.Tracing(cfg.Tracing.ServiceName))
	}

	s := &Server{
		router: engine,
		config: cfg,
		logger: logger,
		deps:   deps,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
