// Package scheduler runs the background jobs of the worker on gocron v2.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/gymdesk/gymdesk/internal/application/membership/usecases"
	"github.com/gymdesk/gymdesk/internal/shared/biztime"
	"github.com/gymdesk/gymdesk/internal/shared/goroutine"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

const (
	expirationJobName  = "membership-expiration"
	paymentSyncJobName = "payment-status-sync"

	expirationJobTimeout  = 30 * time.Minute
	paymentSyncJobTimeout = 5 * time.Minute
)

// BatchJob processes one batch and returns the number of items handled.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// CycleJob runs one expiration cycle.
type CycleJob interface {
	Execute(ctx context.Context) (*usecases.CycleReport, error)
}

// SchedulerManager owns the single gocron scheduler of the process.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager evaluates cron expressions in the business timezone.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// ========================================
// Expiration Cycle (cron)
// ========================================

// RegisterExpirationJob runs job on cronExpr. Singleton mode skips a tick
// while the previous cycle is still running.
func (m *SchedulerManager) RegisterExpirationJob(job CycleJob, cronExpr string) error {
	_, err := m.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), expirationJobTimeout)
			defer cancel()
			m.runExpirationCycle(ctx, job)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("membership", "expiration"),
		gocron.WithName(expirationJobName),
	)
	if err != nil {
		return fmt.Errorf("failed to register expiration job: %w", err)
	}

	m.logger.Infow("registered expiration job", "cron", cronExpr)
	return nil
}

func (m *SchedulerManager) runExpirationCycle(ctx context.Context, job CycleJob) {
	startTime := biztime.NowUTC()

	var report *usecases.CycleReport
	err := goroutine.Run(m.logger, expirationJobName, func() error {
		var runErr error
		report, runErr = job.Execute(ctx)
		return runErr
	})

	if errors.Is(err, usecases.ErrCycleInProgress) {
		m.logger.Infow("expiration cycle skipped, another run holds the lock")
		return
	}
	if err != nil {
		m.logger.Errorw("expiration cycle failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Infow("expiration cycle completed",
		"run_id", report.RunID,
		"notified", len(report.Notified),
		"suspended", len(report.Suspended),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
		"duration", time.Since(startTime),
	)
}

// ========================================
// Payment Status Sync (interval, start immediately)
// ========================================

func (m *SchedulerManager) RegisterPaymentSyncJob(job BatchJob, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("payment sync interval must be positive, got %s", interval)
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), paymentSyncJobTimeout)
			defer cancel()
			m.runPaymentSync(ctx, job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("payment", "sync"),
		gocron.WithName(paymentSyncJobName),
	)
	if err != nil {
		return fmt.Errorf("failed to register payment sync job: %w", err)
	}

	m.logger.Infow("registered payment sync job", "interval", interval.String())
	return nil
}

func (m *SchedulerManager) runPaymentSync(ctx context.Context, job BatchJob) {
	startTime := biztime.NowUTC()

	var count int
	err := goroutine.Run(m.logger, paymentSyncJobName, func() error {
		var runErr error
		count, runErr = job.Execute(ctx)
		return runErr
	})
	if err != nil {
		// cancelled during shutdown
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("payment sync failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if count > 0 {
		m.logger.Infow("payment statuses synced",
			"count", count,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("no payment status changes", "duration", time.Since(startTime))
	}
}

// ========================================
// Scheduler Lifecycle Methods
// ========================================

func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop waits for running jobs to finish.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
