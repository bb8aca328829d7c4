package api

import "github.com/gin-gonic/gin"

// HealthHandler provides liveness and readiness endpoints.
//
//   - /healthz: liveness, always 200 while the process runs.
//   - /readyz: readiness, 503 when the data directory is not usable.
type HealthHandler struct {
	ready func() error
}

// NewHealthHandler constructs a HealthHandler with the given readiness
// check, typically a stat of the configured data directory.
func NewHealthHandler(ready func() error) *HealthHandler {
	return &HealthHandler{ready: ready}
}

// Register mounts the probes on the router.
func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/readyz", func(c *gin.Context) {
		if h.ready != nil && h.ready() != nil {
			c.JSON(503, gin.H{"status": "degraded"})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
}
