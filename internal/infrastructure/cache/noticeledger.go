package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gymdesk/gymdesk/internal/application/membership/usecases"
)

// noticeKeyPrefix namespaces reminder ledger keys.
// Format: notice:{member_id}:{threshold}:{end_date}
const noticeKeyPrefix = "notice:"

func buildNoticeKey(key usecases.NoticeKey) string {
	return fmt.Sprintf("%s%d:%d:%s", noticeKeyPrefix, key.MemberID, key.Threshold, key.EndDate)
}

// RedisNoticeLedger records sent reminders with SETNX so that concurrent
// workers agree on who sends.
type RedisNoticeLedger struct {
	client *redis.Client
}

func NewRedisNoticeLedger(client *redis.Client) *RedisNoticeLedger {
	return &RedisNoticeLedger{client: client}
}

func (l *RedisNoticeLedger) TryRecord(ctx context.Context, key usecases.NoticeKey, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, buildNoticeKey(key), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record notice: %w", err)
	}
	return ok, nil
}

func (l *RedisNoticeLedger) Release(ctx context.Context, key usecases.NoticeKey) error {
	if err := l.client.Del(ctx, buildNoticeKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to release notice: %w", err)
	}
	return nil
}

// MemoryNoticeLedger is the single-process ledger used when Redis is not
// configured. Entries do not survive a restart.
type MemoryNoticeLedger struct {
	mu      sync.Mutex
	entries map[usecases.NoticeKey]time.Time
	now     func() time.Time
}

func NewMemoryNoticeLedger() *MemoryNoticeLedger {
	return &MemoryNoticeLedger{
		entries: make(map[usecases.NoticeKey]time.Time),
		now:     time.Now,
	}
}

func (l *MemoryNoticeLedger) TryRecord(_ context.Context, key usecases.NoticeKey, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiresAt, ok := l.entries[key]; ok && now.Before(expiresAt) {
		return false, nil
	}

	l.entries[key] = now.Add(ttl)
	l.sweep(now)
	return true, nil
}

func (l *MemoryNoticeLedger) Release(_ context.Context, key usecases.NoticeKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}

// sweep drops expired entries. Caller holds mu.
func (l *MemoryNoticeLedger) sweep(now time.Time) {
	for k, expiresAt := range l.entries {
		if !now.Before(expiresAt) {
			delete(l.entries, k)
		}
	}
}
