package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/neurix/internal/gateway"
	"github.com/nulzo/neurix/internal/server/middleware"
	v1 "github.com/nulzo/neurix/internal/server/v1"
	"github.com/nulzo/neurix/pkg/api"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": api.MsgNotFound})
	})

	// no rate limiting
	health := v1.NewHealthHandler(s.config.Relay.ServiceName)
	s.router.GET("/health", health.Health)

	relayLimit := middleware.RateLimit(s.deps.RelayLimiter, s.config.Relay.ClientHeader, s.logger)

	relayHandler := v1.NewRelayHandler(s.deps.Relay, s.registry())

	apiGroup := s.router.Group("/api")
	{
		apiGroup.POST("/chat", relayLimit, relayHandler.Chat)
		apiGroup.GET("/models", relayHandler.Models)

		if s.deps.Analytics != nil {
			analyticsHandler := v1.NewAnalyticsHandler(s.deps.Analytics)
			apiGroup.GET("/usage", analyticsHandler.GetUsage)
			apiGroup.GET("/usage/recent", analyticsHandler.GetRecent)
		}

		if s.deps.Dispatcher != nil {
			compareLimit := middleware.RateLimit(s.deps.CompareLimiter, s.config.Relay.ClientHeader, s.logger)
			compare := v1.NewCompareHandler(s.deps.Dispatcher, s.deps.Ingestor)

			apiGroup.POST("/compare", compareLimit, compare.Compare)
			apiGroup.POST("/compare/:model", compareLimit, compare.CompareOne)
			apiGroup.GET("/status", compareLimit, compare.Status)
		}
	}
}

func (s *Server) registry() *gateway.Registry {
	if s.deps.Dispatcher == nil {
		return nil
	}
	return s.deps.Dispatcher.Registry()
}
