package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gymdesk/gymdesk/internal/interfaces/http/middleware"
)

// Engine builds the gin engine on first use.
func (c *Container) Engine() *gin.Engine {
	if c.engine == nil {
		c.engine = c.setupRoutes()
	}
	return c.engine
}

func (c *Container) setupRoutes() *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(c.log.Named("http")))
	engine.Use(middleware.Recovery(c.log))

	engine.GET("/healthz", c.healthHandler.Liveness)
	engine.GET("/readyz", c.healthHandler.Readiness)

	api := engine.Group("/api")
	{
		api.GET("/members/:id/membership", c.membershipHandler.GetMembershipWindow)
	}

	admin := api.Group("/admin")
	if c.redis != nil && c.cfg.Server.AdminRateLimit > 0 {
		limiter := middleware.NewRateLimiter(c.redis, "admin", c.cfg.Server.AdminRateLimit, time.Minute, c.log)
		admin.Use(limiter.Limit())
	}
	admin.Use(middleware.AdminToken(c.cfg.Server.AdminToken, c.log))
	{
		admin.POST("/expiration-cycles", c.expirationHandler.RunCycle)
	}

	return engine
}
