package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

const readinessTimeout = 2 * time.Second

type HealthHandler struct {
	db     pinger
	logger logger.Interface
}

// NewHealthHandler returns a handler whose readiness probe pings db. A nil
// db makes readiness equivalent to liveness.
func NewHealthHandler(db pinger, log logger.Interface) *HealthHandler {
	return &HealthHandler{db: db, logger: log}
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warnw("readiness check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
