// Package router registers the query service routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/hermes/internal/hermes/handler"
	"github.com/kart-io/hermes/internal/hermes/metrics"
	"github.com/kart-io/hermes/pkg/middleware"
)

// Register wires all routes onto the engine. Mutating endpoints are JWT
// protected when a secret is configured.
func Register(engine *gin.Engine, h *handler.Handler, jwtSecret string) {
	engine.GET("/healthz", h.Health)
	engine.GET("/metrics", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8",
			[]byte(metrics.Get().Export("hermes", "query")))
	})

	engine.GET("/ws/chat", h.Chat)

	v1 := engine.Group("/v1")
	{
		v1.POST("/query", h.Query)
		v1.GET("/stats", h.Stats)
		v1.GET("/history/:id", h.History)

		index := v1.Group("")
		if jwtSecret != "" {
			index.Use(middleware.JWTAuth(jwtSecret))
		} else {
			logger.Warn("no JWT secret configured, index endpoints are unprotected")
		}
		index.POST("/index", h.IndexDirectory)
		index.POST("/index/file", h.IndexFile)
	}

	logger.Info("routes registered")
}
