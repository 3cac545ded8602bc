package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymdesk/gymdesk/internal/domain/membership"
	vo "github.com/gymdesk/gymdesk/internal/domain/membership/valueobjects"
	"github.com/gymdesk/gymdesk/internal/shared/biztime"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

// =====================================================================
// Fixture
// =====================================================================

var cycleToday = time.Date(2025, 6, 10, 6, 0, 0, 0, biztime.Location())

const (
	memberTenDays uint = iota + 1
	memberFiveDays
	memberOneDay
	memberThreeDays
	memberExpired
	memberNoBasis
)

type cycleFixture struct {
	members    []*membership.Member
	payments   []*membership.Payment
	plans      []*membership.Plan
	memberRepo *mockMemberRepository

	mu            sync.Mutex
	statusUpdates map[uint]vo.AccountStatus
}

func mustMember(t *testing.T, id uint, email string) *membership.Member {
	t.Helper()
	m, err := membership.ReconstructMember(id, email, "Member", vo.AccountStatusActive,
		vo.BillingStatusPaid, "", nil, 1, cycleToday, cycleToday)
	require.NoError(t, err)
	return m
}

// mustPaidPayment creates a paid payment for a one-month plan that ends on endDay of June 2025.
func mustPaidPayment(t *testing.T, id uint, email string, endDay int) *membership.Payment {
	t.Helper()
	created := time.Date(2025, 5, endDay, 10, 0, 0, 0, biztime.Location())
	p, err := membership.ReconstructPayment(id, "order-"+email, nil, decimal.NewFromInt(1000),
		"PAID", email, membership.PaymentPlanInfo{}, nil, 1, created, created)
	require.NoError(t, err)
	return p
}

func newCycleFixture(t *testing.T) *cycleFixture {
	t.Helper()

	plan, err := membership.ReconstructPlan(1, "monthly", decimal.NewFromInt(1000), 1, cycleToday, cycleToday)
	require.NoError(t, err)

	f := &cycleFixture{
		members: []*membership.Member{
			mustMember(t, memberTenDays, "ten@example.com"),
			mustMember(t, memberFiveDays, "five@example.com"),
			mustMember(t, memberOneDay, "one@example.com"),
			mustMember(t, memberThreeDays, "three@example.com"),
			mustMember(t, memberExpired, "expired@example.com"),
			mustMember(t, memberNoBasis, "nobasis@example.com"),
		},
		payments: []*membership.Payment{
			mustPaidPayment(t, 1, "ten@example.com", 20),
			mustPaidPayment(t, 2, "five@example.com", 15),
			mustPaidPayment(t, 3, "one@example.com", 11),
			mustPaidPayment(t, 4, "three@example.com", 13),
			mustPaidPayment(t, 5, "expired@example.com", 9),
		},
		plans:         []*membership.Plan{plan},
		statusUpdates: make(map[uint]vo.AccountStatus),
	}

	f.memberRepo = &mockMemberRepository{
		ListFunc: func(ctx context.Context, filter membership.MemberFilter) ([]*membership.Member, error) {
			var out []*membership.Member
			for _, m := range f.members {
				if filter.AccountStatus != "" && m.AccountStatus() != filter.AccountStatus {
					continue
				}
				if filter.BillingStatus != "" && m.BillingStatus() != filter.BillingStatus {
					continue
				}
				out = append(out, m)
			}
			return out, nil
		},
		UpdateAccountStatusFunc: func(ctx context.Context, id uint, status vo.AccountStatus) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.statusUpdates[id] = status
			return nil
		},
	}
	return f
}

func (f *cycleFixture) useCase(notifier ExpirationNotifier, ledger NoticeLedger, locker CycleLocker) *RunExpirationCycleUseCase {
	paymentRepo := &mockPaymentRepository{
		ListFunc: func(ctx context.Context, filter membership.PaymentFilter) ([]*membership.Payment, error) {
			return f.payments, nil
		},
	}
	planRepo := &mockPlanRepository{
		ListFunc: func(ctx context.Context) ([]*membership.Plan, error) {
			return f.plans, nil
		},
	}

	cfg := DefaultExpirationCycleConfig()
	cfg.NotifyInterval = 0

	uc := NewRunExpirationCycleUseCase(
		f.memberRepo, paymentRepo, planRepo,
		membership.NewEndDateResolver(membership.DefaultMatchPolicy()),
		notifier, ledger, locker, cfg, logger.NewNopLogger(),
	)
	uc.now = func() time.Time { return cycleToday }
	return uc
}

func outcomeFor(outcomes []Outcome, memberID uint) (Outcome, bool) {
	for _, o := range outcomes {
		if o.MemberID == memberID {
			return o, true
		}
	}
	return Outcome{}, false
}

func memberIDs(outcomes []Outcome) []uint {
	ids := make([]uint, 0, len(outcomes))
	for _, o := range outcomes {
		ids = append(ids, o.MemberID)
	}
	return ids
}

func noticeDays(sent []sentNotice, email string) []*int {
	var out []*int
	for _, s := range sent {
		if s.Email == email {
			out = append(out, s.DaysRemaining)
		}
	}
	return out
}

// =====================================================================
// Classification
// =====================================================================

func TestRunExpirationCycle_ClassifiesMembers(t *testing.T) {
	f := newCycleFixture(t)
	notifier := &recordingNotifier{}
	uc := f.useCase(notifier, newMemoryLedger(), nil)

	report, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.DryRun)
	assert.ElementsMatch(t, []uint{memberTenDays, memberFiveDays, memberOneDay}, memberIDs(report.Notified))
	assert.ElementsMatch(t, []uint{memberExpired}, memberIDs(report.Suspended))
	assert.ElementsMatch(t, []uint{memberThreeDays, memberNoBasis}, memberIDs(report.Skipped))
	assert.Empty(t, report.Failed)
	assert.Equal(t, 4, report.Processed())

	ten, _ := outcomeFor(report.Notified, memberTenDays)
	require.NotNil(t, ten.Threshold)
	assert.Equal(t, 10, *ten.Threshold)
	assert.Equal(t, "2025-06-20", biztime.FormatDate(*ten.EndDate))

	notDue, _ := outcomeFor(report.Skipped, memberThreeDays)
	assert.Equal(t, ReasonNotDue, notDue.Reason)
	assert.Equal(t, 3, *notDue.DaysRemaining)

	noBasis, _ := outcomeFor(report.Skipped, memberNoBasis)
	assert.Equal(t, ReasonNoBasis, noBasis.Reason)
	assert.Nil(t, noBasis.EndDate)

	expired, _ := outcomeFor(report.Suspended, memberExpired)
	assert.Equal(t, -1, *expired.DaysRemaining)

	assert.Equal(t, map[uint]vo.AccountStatus{memberExpired: vo.AccountStatusSuspended}, f.statusUpdates)

	sent := notifier.Sent()
	require.Len(t, sent, 4)
	assert.Equal(t, 10, *noticeDays(sent, "ten@example.com")[0])
	assert.Equal(t, 5, *noticeDays(sent, "five@example.com")[0])
	assert.Equal(t, 1, *noticeDays(sent, "one@example.com")[0])
	expiredNotices := noticeDays(sent, "expired@example.com")
	require.Len(t, expiredNotices, 1)
	assert.Nil(t, expiredNotices[0])
}

func TestRunExpirationCycle_EndsTodayIsNotExpired(t *testing.T) {
	f := newCycleFixture(t)
	f.members = []*membership.Member{mustMember(t, 42, "today@example.com")}
	f.payments = []*membership.Payment{mustPaidPayment(t, 42, "today@example.com", 10)}
	notifier := &recordingNotifier{}

	report, err := f.useCase(notifier, newMemoryLedger(), nil).Execute(context.Background())

	require.NoError(t, err)
	assert.Empty(t, report.Suspended)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, ReasonNotDue, report.Skipped[0].Reason)
	assert.Equal(t, 0, *report.Skipped[0].DaysRemaining)
	assert.Empty(t, notifier.Sent())
}

// =====================================================================
// Idempotence
// =====================================================================

func TestRunExpirationCycle_SecondRunSameDaySendsNothingNew(t *testing.T) {
	f := newCycleFixture(t)
	notifier := &recordingNotifier{}
	uc := f.useCase(notifier, newMemoryLedger(), nil)

	_, err := uc.Execute(context.Background())
	require.NoError(t, err)
	firstRun := len(notifier.Sent())

	report, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, firstRun, len(notifier.Sent()))
	assert.Empty(t, report.Notified)
	assert.Empty(t, report.Suspended, "suspended member is no longer active")
	for _, id := range []uint{memberTenDays, memberFiveDays, memberOneDay} {
		o, ok := outcomeFor(report.Skipped, id)
		require.True(t, ok)
		assert.Equal(t, ReasonAlreadyNotified, o.Reason)
	}
}

// =====================================================================
// Failure isolation
// =====================================================================

func TestRunExpirationCycle_NotifierFailureIsIsolated(t *testing.T) {
	f := newCycleFixture(t)
	failFive := true
	notifier := &recordingNotifier{
		SendFunc: func(ctx context.Context, email string, days *int) error {
			if failFive && email == "five@example.com" {
				return errors.New("smtp: 421 service unavailable")
			}
			return nil
		},
	}
	ledger := newMemoryLedger()
	uc := f.useCase(notifier, ledger, nil)

	report, err := uc.Execute(context.Background())

	require.NoError(t, err)
	failed, ok := outcomeFor(report.Failed, memberFiveDays)
	require.True(t, ok)
	assert.Equal(t, ReasonNotifyFailed, failed.Reason)
	assert.Contains(t, failed.Error, "421")
	assert.ElementsMatch(t, []uint{memberTenDays, memberOneDay}, memberIDs(report.Notified))
	assert.False(t, ledger.Has(NoticeKey{MemberID: memberFiveDays, Threshold: 5, EndDate: "2025-06-15"}))

	failFive = false
	retry, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{memberFiveDays}, memberIDs(retry.Notified))
}

func TestRunExpirationCycle_SuspendWriteFailure(t *testing.T) {
	f := newCycleFixture(t)
	f.memberRepo.UpdateAccountStatusFunc = func(ctx context.Context, id uint, status vo.AccountStatus) error {
		return errors.New("deadlock found when trying to get lock")
	}
	notifier := &recordingNotifier{}

	report, err := f.useCase(notifier, newMemoryLedger(), nil).Execute(context.Background())

	require.NoError(t, err)
	assert.Empty(t, report.Suspended)
	failed, ok := outcomeFor(report.Failed, memberExpired)
	require.True(t, ok)
	assert.Equal(t, ReasonSuspendFailed, failed.Reason)
	assert.Empty(t, noticeDays(notifier.Sent(), "expired@example.com"))
	assert.Len(t, report.Notified, 3)
}

func TestRunExpirationCycle_SuspensionNoticeFailureStillSuspends(t *testing.T) {
	f := newCycleFixture(t)
	notifier := &recordingNotifier{
		SendFunc: func(ctx context.Context, email string, days *int) error {
			if days == nil {
				return errors.New("mailbox unavailable")
			}
			return nil
		},
	}

	report, err := f.useCase(notifier, newMemoryLedger(), nil).Execute(context.Background())

	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{memberExpired}, memberIDs(report.Suspended))
	failed, ok := outcomeFor(report.Failed, memberExpired)
	require.True(t, ok)
	assert.Equal(t, ReasonNotifyFailed, failed.Reason)
	assert.Equal(t, vo.AccountStatusSuspended, f.statusUpdates[memberExpired])
}

func TestRunExpirationCycle_RecoversPanicPerMember(t *testing.T) {
	f := newCycleFixture(t)
	notifier := &recordingNotifier{
		SendFunc: func(ctx context.Context, email string, days *int) error {
			if email == "ten@example.com" {
				panic("template missing")
			}
			return nil
		},
	}

	report, err := f.useCase(notifier, newMemoryLedger(), nil).Execute(context.Background())

	require.NoError(t, err)
	failed, ok := outcomeFor(report.Failed, memberTenDays)
	require.True(t, ok)
	assert.Equal(t, ReasonPanic, failed.Reason)
	assert.ElementsMatch(t, []uint{memberFiveDays, memberOneDay}, memberIDs(report.Notified))
	assert.ElementsMatch(t, []uint{memberExpired}, memberIDs(report.Suspended))
}

func TestRunExpirationCycle_LedgerFailureSkipsNotice(t *testing.T) {
	f := newCycleFixture(t)
	ledger := newMemoryLedger()
	ledger.TryRecordFn = func(ctx context.Context, key NoticeKey) (bool, error) {
		return false, errors.New("redis: connection refused")
	}
	notifier := &recordingNotifier{}

	report, err := f.useCase(notifier, ledger, nil).Execute(context.Background())

	require.NoError(t, err)
	assert.Empty(t, report.Notified)
	assert.Len(t, report.Failed, 3)
	for _, o := range report.Failed {
		assert.Equal(t, ReasonLedgerFailed, o.Reason)
	}
	// Suspension does not depend on the ledger.
	assert.Len(t, notifier.Sent(), 1)
}

func TestRunExpirationCycle_ReadFailureAbortsWithoutWrites(t *testing.T) {
	tests := []struct {
		name    string
		breakFn func(f *cycleFixture, uc *RunExpirationCycleUseCase)
		msg     string
	}{
		{
			name: "members",
			breakFn: func(f *cycleFixture, uc *RunExpirationCycleUseCase) {
				f.memberRepo.ListFunc = func(ctx context.Context, filter membership.MemberFilter) ([]*membership.Member, error) {
					return nil, errors.New("connection reset")
				}
			},
			msg: "failed to list members",
		},
		{
			name: "payments",
			breakFn: func(f *cycleFixture, uc *RunExpirationCycleUseCase) {
				uc.paymentRepo = &mockPaymentRepository{
					ListFunc: func(ctx context.Context, filter membership.PaymentFilter) ([]*membership.Payment, error) {
						return nil, errors.New("connection reset")
					},
				}
			},
			msg: "failed to list payments",
		},
		{
			name: "plans",
			breakFn: func(f *cycleFixture, uc *RunExpirationCycleUseCase) {
				uc.planRepo = &mockPlanRepository{
					ListFunc: func(ctx context.Context) ([]*membership.Plan, error) {
						return nil, errors.New("connection reset")
					},
				}
			},
			msg: "failed to list plans",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newCycleFixture(t)
			notifier := &recordingNotifier{}
			uc := f.useCase(notifier, newMemoryLedger(), nil)
			tc.breakFn(f, uc)

			report, err := uc.Execute(context.Background())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
			assert.Nil(t, report)
			assert.Empty(t, notifier.Sent())
			assert.Empty(t, f.statusUpdates)
		})
	}
}

// =====================================================================
// Non-overlap
// =====================================================================

func TestRunExpirationCycle_RejectsOverlappingRun(t *testing.T) {
	f := newCycleFixture(t)
	uc := f.useCase(&recordingNotifier{}, newMemoryLedger(), nil)

	uc.running.Lock()
	_, err := uc.Execute(context.Background())
	uc.running.Unlock()

	assert.ErrorIs(t, err, ErrCycleInProgress)
	assert.True(t, IsCycleInProgress(err))

	_, err = uc.Execute(context.Background())
	assert.NoError(t, err)
}

func TestRunExpirationCycle_BlockingNotifierHoldsLock(t *testing.T) {
	f := newCycleFixture(t)
	f.members = f.members[:1]
	entered := make(chan struct{})
	release := make(chan struct{})
	notifier := &recordingNotifier{
		SendFunc: func(ctx context.Context, email string, days *int) error {
			close(entered)
			<-release
			return nil
		},
	}
	uc := f.useCase(notifier, newMemoryLedger(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := uc.Execute(context.Background())
		done <- err
	}()
	<-entered

	_, err := uc.Execute(context.Background())
	assert.ErrorIs(t, err, ErrCycleInProgress)

	close(release)
	assert.NoError(t, <-done)
}

func TestRunExpirationCycle_DistributedLock(t *testing.T) {
	t.Run("held elsewhere", func(t *testing.T) {
		f := newCycleFixture(t)
		locker := &mockCycleLocker{
			TryLockFunc: func(ctx context.Context) (func(), bool, error) {
				return nil, false, nil
			},
		}
		notifier := &recordingNotifier{}

		_, err := f.useCase(notifier, newMemoryLedger(), locker).Execute(context.Background())

		assert.ErrorIs(t, err, ErrCycleInProgress)
		assert.Empty(t, notifier.Sent())
	})

	t.Run("released after run", func(t *testing.T) {
		f := newCycleFixture(t)
		released := false
		locker := &mockCycleLocker{
			TryLockFunc: func(ctx context.Context) (func(), bool, error) {
				return func() { released = true }, true, nil
			},
		}

		_, err := f.useCase(&recordingNotifier{}, newMemoryLedger(), locker).Execute(context.Background())

		require.NoError(t, err)
		assert.True(t, released)
	})

	t.Run("lock backend error", func(t *testing.T) {
		f := newCycleFixture(t)
		locker := &mockCycleLocker{
			TryLockFunc: func(ctx context.Context) (func(), bool, error) {
				return nil, false, errors.New("redis down")
			},
		}

		_, err := f.useCase(&recordingNotifier{}, newMemoryLedger(), locker).Execute(context.Background())

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCycleInProgress)
	})
}

// =====================================================================
// Dry run and cancellation
// =====================================================================

func TestRunExpirationCycle_DryRunHasNoSideEffects(t *testing.T) {
	f := newCycleFixture(t)
	notifier := &recordingNotifier{}
	ledger := newMemoryLedger()
	locker := &mockCycleLocker{
		TryLockFunc: func(ctx context.Context) (func(), bool, error) {
			t.Fatal("dry run must not take the distributed lock")
			return nil, false, nil
		},
	}

	report, err := f.useCase(notifier, ledger, locker).DryRun(context.Background())

	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.ElementsMatch(t, []uint{memberTenDays, memberFiveDays, memberOneDay}, memberIDs(report.Notified))
	assert.ElementsMatch(t, []uint{memberExpired}, memberIDs(report.Suspended))
	assert.Empty(t, notifier.Sent())
	assert.Empty(t, f.statusUpdates)
	assert.Empty(t, ledger.keys)
}

func TestRunExpirationCycle_StopsOnCancelledContext(t *testing.T) {
	f := newCycleFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	notifier := &recordingNotifier{
		SendFunc: func(_ context.Context, email string, days *int) error {
			cancel()
			return nil
		},
	}

	report, err := f.useCase(notifier, newMemoryLedger(), nil).Execute(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Len(t, report.Notified, 1)
	assert.Len(t, notifier.Sent(), 1)
}

func TestRunExpirationCycle_Thresholds(t *testing.T) {
	f := newCycleFixture(t)
	uc := f.useCase(&recordingNotifier{}, newMemoryLedger(), nil)
	assert.Equal(t, []int{10, 5, 1}, uc.Thresholds())
}
