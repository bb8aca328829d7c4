package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"coinpulse/internal/middleware"
)

// NewRouter creates the Gin engine with global middlewares, a per-request
// timeout and the v1 read routes. Health probes are registered separately in
// app.InitializeApp.
func NewRouter(handler *Handler) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(),
	)

	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/series", handler.GetSeries)
		v1.GET("/universe", handler.GetUniverse)
	}

	return router
}
