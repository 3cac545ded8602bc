package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

const (
	expirationCycleLockKey = "lock:expiration-cycle"
	// DefaultCycleLockTTL bounds how long a crashed holder blocks other workers.
	DefaultCycleLockTTL = 30 * time.Minute
)

// RedsyncCycleLocker makes a single attempt at a cluster-wide lock for the
// expiration cycle.
type RedsyncCycleLocker struct {
	rs     *redsync.Redsync
	ttl    time.Duration
	logger logger.Interface
}

func NewRedsyncCycleLocker(client *redis.Client, ttl time.Duration, log logger.Interface) *RedsyncCycleLocker {
	if ttl <= 0 {
		ttl = DefaultCycleLockTTL
	}
	return &RedsyncCycleLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		ttl:    ttl,
		logger: log.Named("cycle-locker"),
	}
}

func (l *RedsyncCycleLocker) TryLock(ctx context.Context) (func(), bool, error) {
	mutex := l.rs.NewMutex(
		expirationCycleLockKey,
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(1),
	)

	if err := mutex.TryLockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to acquire expiration cycle lock: %w", err)
	}

	unlock := func() {
		// The caller's ctx may already be cancelled when the cycle ends.
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := mutex.UnlockContext(unlockCtx); err != nil {
			l.logger.Warnw("failed to release expiration cycle lock", "error", err)
		}
	}
	return unlock, true, nil
}
