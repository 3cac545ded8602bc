package usecases

import (
	"context"
	"errors"
	"time"
)

// ErrCycleInProgress is returned when another expiration cycle holds the lock.
var ErrCycleInProgress = errors.New("expiration cycle already in progress")

// ExpirationNotifier delivers membership reminders. A nil daysRemaining
// means the membership has ended and the account was suspended.
type ExpirationNotifier interface {
	SendExpirationNotice(ctx context.Context, email string, daysRemaining *int) error
}

// NoticeKey identifies one reminder: a member, a threshold and the end date
// the reminder refers to. A renewed membership yields a new key.
type NoticeKey struct {
	MemberID  uint
	Threshold int
	EndDate   string
}

// NoticeLedger remembers which reminders were already sent.
type NoticeLedger interface {
	// TryRecord atomically records key. It returns false when key was
	// already recorded and has not expired.
	TryRecord(ctx context.Context, key NoticeKey, ttl time.Duration) (bool, error)
	// Release forgets key so a later attempt can resend.
	Release(ctx context.Context, key NoticeKey) error
}

// CycleLocker guards against concurrent cycles across processes.
type CycleLocker interface {
	// TryLock makes a single attempt. When acquired, unlock must be called
	// once the cycle finishes.
	TryLock(ctx context.Context) (unlock func(), acquired bool, err error)
}

// TransactionRunner runs fn in a single database transaction carried by ctx.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
