package server

import (
	"net/http"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nulzo/ai-usage-analyzer/internal/analytics"
	"github.com/nulzo/ai-usage-analyzer/internal/config"
	"github.com/nulzo/ai-usage-analyzer/internal/events"
	"github.com/nulzo/ai-usage-analyzer/internal/server/middleware"
)

type Server struct {
	router    *gin.Engine
	config    *config.Config
	logger    *zap.Logger
	events    events.Service
	analytics analytics.Service
}

func New(cfg *config.Config, logger *zap.Logger, eventsSvc events.Service, analyticsSvc analytics.Service) *Server {

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(ginzap.RecoveryWithZap(logger, true))
	engine.Use(middleware.Logger(logger))

	s := &Server{
		router:    engine,
		config:    cfg,
		logger:    logger,
		events:    eventsSvc,
		analytics: analyticsSvc,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
