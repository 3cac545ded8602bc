package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/gymdesk/gymdesk/internal/domain/membership"
	vo "github.com/gymdesk/gymdesk/internal/domain/membership/valueobjects"
	"github.com/gymdesk/gymdesk/internal/shared/biztime"
	"github.com/gymdesk/gymdesk/internal/shared/goroutine"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

// OutcomeReason explains why a member ended up in a report bucket.
type OutcomeReason string

const (
	ReasonThreshold       OutcomeReason = "threshold"
	ReasonExpired         OutcomeReason = "expired"
	ReasonNoBasis         OutcomeReason = "no_basis"
	ReasonNotDue          OutcomeReason = "not_due"
	ReasonAlreadyNotified OutcomeReason = "already_notified"
	ReasonSuspendFailed   OutcomeReason = "suspend_failed"
	ReasonNotifyFailed    OutcomeReason = "notify_failed"
	ReasonLedgerFailed    OutcomeReason = "ledger_failed"
	ReasonPanic           OutcomeReason = "panic"
)

// Outcome is what the cycle did, or would do in a dry run, for one member.
type Outcome struct {
	MemberID      uint          `json:"member_id"`
	Email         string        `json:"email"`
	EndDate       *time.Time    `json:"end_date,omitempty"`
	DaysRemaining *int          `json:"days_remaining,omitempty"`
	Threshold     *int          `json:"threshold,omitempty"`
	Reason        OutcomeReason `json:"reason"`
	Error         string        `json:"error,omitempty"`
}

// CycleReport summarizes one expiration cycle. A member whose suspension
// succeeded but whose notice failed appears in both Suspended and Failed.
type CycleReport struct {
	RunID      string    `json:"run_id"`
	DryRun     bool      `json:"dry_run"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Notified   []Outcome `json:"notified"`
	Suspended  []Outcome `json:"suspended"`
	Skipped    []Outcome `json:"skipped"`
	Failed     []Outcome `json:"failed"`
}

// Processed returns the number of members that were notified or suspended.
func (r *CycleReport) Processed() int {
	return len(r.Notified) + len(r.Suspended)
}

// ExpirationCycleConfig tunes the cycle.
type ExpirationCycleConfig struct {
	// Thresholds are the days-remaining values that trigger a reminder.
	Thresholds []int
	// NotifyInterval is the minimum spacing between notifier calls. Zero
	// disables throttling.
	NotifyInterval time.Duration
	// NoticeTTL bounds how long a sent reminder is remembered.
	NoticeTTL time.Duration
}

func DefaultExpirationCycleConfig() ExpirationCycleConfig {
	return ExpirationCycleConfig{
		Thresholds:     []int{10, 5, 1},
		NotifyInterval: time.Second,
		NoticeTTL:      72 * time.Hour,
	}
}

// RunExpirationCycleUseCase scans active paid members, sends reminders at
// configured thresholds and suspends members whose membership has ended.
type RunExpirationCycleUseCase struct {
	memberRepo  membership.MemberRepository
	paymentRepo membership.PaymentRepository
	planRepo    membership.PlanRepository
	resolver    *membership.EndDateResolver
	notifier    ExpirationNotifier
	ledger      NoticeLedger
	locker      CycleLocker
	limiter     *rate.Limiter
	thresholds  map[int]struct{}
	noticeTTL   time.Duration
	logger      logger.Interface

	running sync.Mutex
	now     func() time.Time
}

// NewRunExpirationCycleUseCase wires the cycle. locker may be nil when only
// a single instance runs.
func NewRunExpirationCycleUseCase(
	memberRepo membership.MemberRepository,
	paymentRepo membership.PaymentRepository,
	planRepo membership.PlanRepository,
	resolver *membership.EndDateResolver,
	notifier ExpirationNotifier,
	ledger NoticeLedger,
	locker CycleLocker,
	cfg ExpirationCycleConfig,
	logger logger.Interface,
) *RunExpirationCycleUseCase {
	limit := rate.Inf
	if cfg.NotifyInterval > 0 {
		limit = rate.Every(cfg.NotifyInterval)
	}
	thresholds := make(map[int]struct{}, len(cfg.Thresholds))
	for _, t := range cfg.Thresholds {
		thresholds[t] = struct{}{}
	}
	ttl := cfg.NoticeTTL
	if ttl <= 0 {
		ttl = DefaultExpirationCycleConfig().NoticeTTL
	}

	return &RunExpirationCycleUseCase{
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		planRepo:    planRepo,
		resolver:    resolver,
		notifier:    notifier,
		ledger:      ledger,
		locker:      locker,
		limiter:     rate.NewLimiter(limit, 1),
		thresholds:  thresholds,
		noticeTTL:   ttl,
		logger:      logger,
		now:         biztime.NowUTC,
	}
}

// Execute runs one cycle. It returns ErrCycleInProgress when another cycle
// is running and a wrapped error when the initial reads fail, in which case
// nothing was written.
func (uc *RunExpirationCycleUseCase) Execute(ctx context.Context) (*CycleReport, error) {
	return uc.run(ctx, false)
}

// DryRun classifies members exactly like Execute but performs no writes
// and sends no notices.
func (uc *RunExpirationCycleUseCase) DryRun(ctx context.Context) (*CycleReport, error) {
	return uc.run(ctx, true)
}

func (uc *RunExpirationCycleUseCase) run(ctx context.Context, dryRun bool) (*CycleReport, error) {
	if !uc.running.TryLock() {
		return nil, ErrCycleInProgress
	}
	defer uc.running.Unlock()

	if uc.locker != nil && !dryRun {
		unlock, acquired, err := uc.locker.TryLock(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire cycle lock: %w", err)
		}
		if !acquired {
			return nil, ErrCycleInProgress
		}
		defer unlock()
	}

	report := &CycleReport{
		RunID:     uuid.NewString(),
		DryRun:    dryRun,
		StartedAt: uc.now(),
	}
	log := uc.logger.With("run_id", report.RunID, "dry_run", dryRun)

	members, payments, plans, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	log.Infow("expiration cycle started",
		"members", len(members),
		"paid_payments", len(payments),
		"plans", len(plans),
	)

	index := newPaymentIndex(payments)
	today := uc.now()

	for _, m := range members {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = uc.now()
			log.Warnw("expiration cycle interrupted", "error", err)
			return report, fmt.Errorf("expiration cycle interrupted: %w", err)
		}

		var outcomes []bucketed
		err := goroutine.Run(log, fmt.Sprintf("expire-member-%d", m.ID()), func() error {
			outcomes = uc.processMember(ctx, log, m, index.forMember(m), plans, today, dryRun)
			return nil
		})
		if err != nil {
			outcomes = []bucketed{{bucketFailed, Outcome{
				MemberID: m.ID(),
				Email:    m.Email(),
				Reason:   ReasonPanic,
				Error:    err.Error(),
			}}}
		}
		report.add(outcomes...)
	}

	report.FinishedAt = uc.now()
	log.Infow("expiration cycle finished",
		"notified", len(report.Notified),
		"suspended", len(report.Suspended),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report, nil
}

func (uc *RunExpirationCycleUseCase) load(ctx context.Context) ([]*membership.Member, []*membership.Payment, []*membership.Plan, error) {
	members, err := uc.memberRepo.List(ctx, membership.MemberFilter{
		AccountStatus: vo.AccountStatusActive,
		BillingStatus: vo.BillingStatusPaid,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list members: %w", err)
	}

	payments, err := uc.paymentRepo.List(ctx, membership.PaymentFilter{
		Statuses: []vo.PaymentStatus{vo.PaymentStatusPaid},
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list payments: %w", err)
	}

	plans, err := uc.planRepo.List(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list plans: %w", err)
	}

	return members, payments, plans, nil
}

type bucket int

const (
	bucketNotified bucket = iota
	bucketSuspended
	bucketSkipped
	bucketFailed
)

type bucketed struct {
	bucket  bucket
	outcome Outcome
}

func (r *CycleReport) add(items ...bucketed) {
	for _, it := range items {
		switch it.bucket {
		case bucketNotified:
			r.Notified = append(r.Notified, it.outcome)
		case bucketSuspended:
			r.Suspended = append(r.Suspended, it.outcome)
		case bucketSkipped:
			r.Skipped = append(r.Skipped, it.outcome)
		case bucketFailed:
			r.Failed = append(r.Failed, it.outcome)
		}
	}
}

func (uc *RunExpirationCycleUseCase) processMember(
	ctx context.Context,
	log logger.Interface,
	m *membership.Member,
	payments []*membership.Payment,
	plans []*membership.Plan,
	today time.Time,
	dryRun bool,
) []bucketed {
	base := Outcome{MemberID: m.ID(), Email: m.Email()}

	window := uc.resolver.Window(m, payments, plans, today)
	if window == nil {
		log.Debugw("membership end date indeterminate", "member_id", m.ID())
		base.Reason = ReasonNoBasis
		return []bucketed{{bucketSkipped, base}}
	}

	end := window.EndDate
	days := window.DaysRemaining
	base.EndDate = &end
	base.DaysRemaining = &days

	if window.IsExpired() {
		return uc.suspend(ctx, log, m, base, dryRun)
	}

	if _, ok := uc.thresholds[days]; !ok {
		base.Reason = ReasonNotDue
		return []bucketed{{bucketSkipped, base}}
	}

	threshold := days
	base.Threshold = &threshold
	return uc.remind(ctx, log, m, base, dryRun)
}

func (uc *RunExpirationCycleUseCase) suspend(
	ctx context.Context,
	log logger.Interface,
	m *membership.Member,
	base Outcome,
	dryRun bool,
) []bucketed {
	base.Reason = ReasonExpired
	if dryRun {
		return []bucketed{{bucketSuspended, base}}
	}

	if err := m.Suspend(); err != nil {
		log.Errorw("member cannot be suspended", "member_id", m.ID(), "error", err)
		base.Reason = ReasonSuspendFailed
		base.Error = err.Error()
		return []bucketed{{bucketFailed, base}}
	}

	if err := uc.memberRepo.UpdateAccountStatus(ctx, m.ID(), m.AccountStatus()); err != nil {
		log.Errorw("failed to suspend member", "member_id", m.ID(), "error", err)
		base.Reason = ReasonSuspendFailed
		base.Error = err.Error()
		return []bucketed{{bucketFailed, base}}
	}

	log.Infow("member suspended",
		"member_id", m.ID(),
		"end_date", biztime.FormatDate(*base.EndDate),
		"days_remaining", *base.DaysRemaining,
	)
	out := []bucketed{{bucketSuspended, base}}

	if err := uc.notify(ctx, m.Email(), nil); err != nil {
		log.Warnw("failed to send suspension notice", "member_id", m.ID(), "error", err)
		failed := base
		failed.Reason = ReasonNotifyFailed
		failed.Error = err.Error()
		out = append(out, bucketed{bucketFailed, failed})
	}
	return out
}

func (uc *RunExpirationCycleUseCase) remind(
	ctx context.Context,
	log logger.Interface,
	m *membership.Member,
	base Outcome,
	dryRun bool,
) []bucketed {
	base.Reason = ReasonThreshold
	if dryRun {
		return []bucketed{{bucketNotified, base}}
	}

	key := NoticeKey{
		MemberID:  m.ID(),
		Threshold: *base.Threshold,
		EndDate:   biztime.FormatDate(*base.EndDate),
	}

	recorded, err := uc.ledger.TryRecord(ctx, key, uc.noticeTTL)
	if err != nil {
		log.Errorw("notice ledger unavailable", "member_id", m.ID(), "error", err)
		base.Reason = ReasonLedgerFailed
		base.Error = err.Error()
		return []bucketed{{bucketFailed, base}}
	}
	if !recorded {
		base.Reason = ReasonAlreadyNotified
		return []bucketed{{bucketSkipped, base}}
	}

	days := *base.DaysRemaining
	if err := uc.notify(ctx, m.Email(), &days); err != nil {
		log.Warnw("failed to send expiration reminder",
			"member_id", m.ID(),
			"threshold", key.Threshold,
			"error", err,
		)
		if relErr := uc.ledger.Release(ctx, key); relErr != nil {
			log.Errorw("failed to release notice ledger entry", "member_id", m.ID(), "error", relErr)
		}
		base.Reason = ReasonNotifyFailed
		base.Error = err.Error()
		return []bucketed{{bucketFailed, base}}
	}

	log.Infow("expiration reminder sent", "member_id", m.ID(), "days_remaining", days)
	return []bucketed{{bucketNotified, base}}
}

func (uc *RunExpirationCycleUseCase) notify(ctx context.Context, email string, days *int) error {
	if err := uc.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notifier throttle: %w", err)
	}
	return uc.notifier.SendExpirationNotice(ctx, email, days)
}

// paymentIndex groups paid payments so each member only sees its own
// candidates: those linked to its id plus unlinked ones sharing its email.
type paymentIndex struct {
	byMember map[uint][]*membership.Payment
	byEmail  map[string][]*membership.Payment
}

func newPaymentIndex(payments []*membership.Payment) *paymentIndex {
	idx := &paymentIndex{
		byMember: make(map[uint][]*membership.Payment),
		byEmail:  make(map[string][]*membership.Payment),
	}
	for _, p := range payments {
		if p == nil {
			continue
		}
		if id := p.MemberID(); id != nil {
			idx.byMember[*id] = append(idx.byMember[*id], p)
			continue
		}
		key := emailKey(p.CustomerEmail())
		if key != "" {
			idx.byEmail[key] = append(idx.byEmail[key], p)
		}
	}
	return idx
}

func (idx *paymentIndex) forMember(m *membership.Member) []*membership.Payment {
	linked := idx.byMember[m.ID()]
	unlinked := idx.byEmail[emailKey(m.Email())]
	out := make([]*membership.Payment, 0, len(linked)+len(unlinked))
	out = append(out, linked...)
	return append(out, unlinked...)
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsCycleInProgress reports whether err means another cycle holds the lock.
func IsCycleInProgress(err error) bool {
	return errors.Is(err, ErrCycleInProgress)
}

// Thresholds returns the configured reminder thresholds, largest first.
func (uc *RunExpirationCycleUseCase) Thresholds() []int {
	out := make([]int, 0, len(uc.thresholds))
	for t := range uc.thresholds {
		out = append(out, t)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
