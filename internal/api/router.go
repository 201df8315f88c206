// Package api exposes ingestion runs over HTTP.
package api

import (
	"github.com/gin-gonic/gin"

	"procfeed/internal/logger"
)

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handler, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	RegisterRoutes(r, h)

	return r
}

// RegisterRoutes mounts the handler on r.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api/v1")
	{
		api.POST("/ingest", h.Ingest)
		api.POST("/sync", h.Sync)
	}
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}

	return func(c *gin.Context) {
		c.Next()

		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
		)
	}
}
