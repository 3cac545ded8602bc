package http

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/gymdesk/gymdesk/internal/application/membership/usecases"
	"github.com/gymdesk/gymdesk/internal/infrastructure/cache"
	"github.com/gymdesk/gymdesk/internal/infrastructure/config"
	"github.com/gymdesk/gymdesk/internal/infrastructure/scheduler"
	"github.com/gymdesk/gymdesk/internal/interfaces/http/handlers"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

// Container holds the infrastructure, repositories, use cases and handlers
// of one process and wires them together. The server, worker and one-shot
// CLI commands all build the same container and use the parts they need.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	ucs   *allUseCases

	membershipHandler *handlers.MembershipHandler
	expirationHandler *handlers.ExpirationHandler
	healthHandler     *handlers.HealthHandler

	scheduler *scheduler.SchedulerManager
}

// NewContainer connects to Redis when cfg.Redis has a host and builds every
// component on top of db.
func NewContainer(ctx context.Context, cfg *config.Config, db *gorm.DB, log logger.Interface) (*Container, error) {
	c := &Container{
		db:  db,
		cfg: cfg,
		log: log,
	}

	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		c.redis = client
		log.Infow("redis connection established", "address", cfg.Redis.GetAddr())
	}

	c.repos = newRepositories(db)

	ucs, err := newUseCases(cfg, c.repos, c.redis, log)
	if err != nil {
		c.closeRedis()
		return nil, err
	}
	c.ucs = ucs

	c.membershipHandler = handlers.NewMembershipHandler(ucs.getMembershipWindow, log.Named("membership-handler"))
	c.expirationHandler = handlers.NewExpirationHandler(ucs.runExpirationCycle, log.Named("expiration-handler"))
	if sqlDB, err := db.DB(); err == nil {
		c.healthHandler = handlers.NewHealthHandler(sqlDB, log)
	} else {
		c.healthHandler = handlers.NewHealthHandler(nil, log)
	}

	return c, nil
}

// RunExpirationCycle exposes the cycle use case to one-shot commands.
func (c *Container) RunExpirationCycle() *usecases.RunExpirationCycleUseCase {
	return c.ucs.runExpirationCycle
}

// StartScheduler registers the expiration job and, when the gateway is
// configured, the payment sync job, then starts the scheduler.
func (c *Container) StartScheduler() error {
	if c.scheduler != nil {
		return nil
	}

	mgr, err := scheduler.NewSchedulerManager(c.log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if err := mgr.RegisterExpirationJob(c.ucs.runExpirationCycle, c.cfg.Membership.ExpirationCron); err != nil {
		return fmt.Errorf("failed to register expiration job: %w", err)
	}

	if c.ucs.syncPaymentStatus != nil {
		if err := mgr.RegisterPaymentSyncJob(c.ucs.syncPaymentStatus, c.cfg.Gateway.SyncInterval); err != nil {
			return fmt.Errorf("failed to register payment sync job: %w", err)
		}
	}

	mgr.Start()
	c.scheduler = mgr
	return nil
}

// Shutdown stops the scheduler and closes Redis. The database is owned by
// the caller.
func (c *Container) Shutdown() {
	if c.scheduler != nil {
		if err := c.scheduler.Stop(); err != nil {
			c.log.Errorw("failed to stop scheduler", "error", err)
		}
		c.scheduler = nil
	}
	c.closeRedis()
}

func (c *Container) closeRedis() {
	if c.redis == nil {
		return
	}
	if err := c.redis.Close(); err != nil {
		c.log.Warnw("failed to close redis client", "error", err)
	}
	c.redis = nil
}
