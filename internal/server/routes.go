package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/nulzo/ai-usage-analyzer/internal/server/middleware"
	v1 "github.com/nulzo/ai-usage-analyzer/internal/server/v1"
	"github.com/nulzo/ai-usage-analyzer/pkg/api"
)

const apiVersion = "1.0.0"

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS(s.config.CORS.AllowedOrigins))
	s.router.Use(middleware.ErrorHandler(s.logger))
	s.router.Use(otelgin.Middleware("ai-usage-analyzer"))

	// Health Check (Public)
	healthHandler := v1.NewHealthHandler()
	s.router.GET("/health", healthHandler.Health)

	apiGroup := s.router.Group("/api")
	apiGroup.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, api.RootResponse{
			Message: "AI Usage Analyzer API",
			Version: apiVersion,
		})
	})

	usage := apiGroup.Group("/v1/ai-usage")
	if s.config.Auth.Enabled {
		usage.Use(middleware.Auth(s.config.Auth.APIKeys))
	}
	rl := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)
	usage.Use(rl.Middleware())
	{
		eventsHandler := v1.NewEventsHandler(s.events)
		usage.POST("/events", eventsHandler.CreateEvent)
		usage.POST("/events/batch", eventsHandler.CreateEventBatch)
		usage.GET("/events", eventsHandler.ListEvents)

		analyticsHandler := v1.NewAnalyticsHandler(s.analytics)
		usage.GET("/analytics", analyticsHandler.GetAnalytics)

		demoHandler := v1.NewDemoHandler(s.events)
		usage.POST("/generate-demo-data", demoHandler.GenerateDemoData)
	}
}
