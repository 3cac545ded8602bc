package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/gymdesk/gymdesk/internal/application/membership/paymentgateway"
	"github.com/gymdesk/gymdesk/internal/domain/membership"
	vo "github.com/gymdesk/gymdesk/internal/domain/membership/valueobjects"
)

type mockMemberRepository struct {
	CreateFunc              func(ctx context.Context, m *membership.Member) error
	GetByIDFunc             func(ctx context.Context, id uint) (*membership.Member, error)
	GetByEmailFunc          func(ctx context.Context, email string) (*membership.Member, error)
	ListFunc                func(ctx context.Context, filter membership.MemberFilter) ([]*membership.Member, error)
	UpdateAccountStatusFunc func(ctx context.Context, id uint, status vo.AccountStatus) error
	UpdateFunc              func(ctx context.Context, m *membership.Member) error
}

func (m *mockMemberRepository) Create(ctx context.Context, member *membership.Member) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, member)
	}
	return nil
}

func (m *mockMemberRepository) GetByID(ctx context.Context, id uint) (*membership.Member, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, membership.ErrMemberNotFound
}

func (m *mockMemberRepository) GetByEmail(ctx context.Context, email string) (*membership.Member, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, membership.ErrMemberNotFound
}

func (m *mockMemberRepository) List(ctx context.Context, filter membership.MemberFilter) ([]*membership.Member, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockMemberRepository) UpdateAccountStatus(ctx context.Context, id uint, status vo.AccountStatus) error {
	if m.UpdateAccountStatusFunc != nil {
		return m.UpdateAccountStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockMemberRepository) Update(ctx context.Context, member *membership.Member) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, member)
	}
	return nil
}

type mockPaymentRepository struct {
	CreateFunc       func(ctx context.Context, p *membership.Payment) error
	GetByOrderIDFunc func(ctx context.Context, orderID string) (*membership.Payment, error)
	ListFunc         func(ctx context.Context, filter membership.PaymentFilter) ([]*membership.Payment, error)
	UpdateFunc       func(ctx context.Context, p *membership.Payment) error
}

func (m *mockPaymentRepository) Create(ctx context.Context, p *membership.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return nil
}

func (m *mockPaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*membership.Payment, error) {
	if m.GetByOrderIDFunc != nil {
		return m.GetByOrderIDFunc(ctx, orderID)
	}
	return nil, membership.ErrPaymentNotFound
}

func (m *mockPaymentRepository) List(ctx context.Context, filter membership.PaymentFilter) ([]*membership.Payment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockPaymentRepository) Update(ctx context.Context, p *membership.Payment) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, p)
	}
	return nil
}

type mockPlanRepository struct {
	ListFunc      func(ctx context.Context) ([]*membership.Plan, error)
	GetByTypeFunc func(ctx context.Context, planType string) (*membership.Plan, error)
	UpsertFunc    func(ctx context.Context, p *membership.Plan) error
}

func (m *mockPlanRepository) List(ctx context.Context) ([]*membership.Plan, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockPlanRepository) GetByType(ctx context.Context, planType string) (*membership.Plan, error) {
	if m.GetByTypeFunc != nil {
		return m.GetByTypeFunc(ctx, planType)
	}
	return nil, nil
}

func (m *mockPlanRepository) Upsert(ctx context.Context, p *membership.Plan) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, p)
	}
	return nil
}

type sentNotice struct {
	Email         string
	DaysRemaining *int
}

// recordingNotifier records every notice; SendFunc may inject failures.
type recordingNotifier struct {
	mu       sync.Mutex
	sent     []sentNotice
	SendFunc func(ctx context.Context, email string, daysRemaining *int) error
}

func (n *recordingNotifier) SendExpirationNotice(ctx context.Context, email string, daysRemaining *int) error {
	if n.SendFunc != nil {
		if err := n.SendFunc(ctx, email, daysRemaining); err != nil {
			return err
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotice{Email: email, DaysRemaining: daysRemaining})
	return nil
}

func (n *recordingNotifier) Sent() []sentNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotice(nil), n.sent...)
}

type memoryLedger struct {
	mu          sync.Mutex
	keys        map[NoticeKey]struct{}
	TryRecordFn func(ctx context.Context, key NoticeKey) (bool, error)
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{keys: make(map[NoticeKey]struct{})}
}

func (l *memoryLedger) TryRecord(ctx context.Context, key NoticeKey, _ time.Duration) (bool, error) {
	if l.TryRecordFn != nil {
		return l.TryRecordFn(ctx, key)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.keys[key]; ok {
		return false, nil
	}
	l.keys[key] = struct{}{}
	return true, nil
}

func (l *memoryLedger) Release(_ context.Context, key NoticeKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.keys, key)
	return nil
}

func (l *memoryLedger) Has(key NoticeKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.keys[key]
	return ok
}

type mockCycleLocker struct {
	TryLockFunc func(ctx context.Context) (func(), bool, error)
}

func (m *mockCycleLocker) TryLock(ctx context.Context) (func(), bool, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx)
	}
	return func() {}, true, nil
}

type mockOrderFetcher struct {
	FetchOrderFunc func(ctx context.Context, orderID string) (*paymentgateway.OrderStatus, error)
}

func (m *mockOrderFetcher) FetchOrder(ctx context.Context, orderID string) (*paymentgateway.OrderStatus, error) {
	if m.FetchOrderFunc != nil {
		return m.FetchOrderFunc(ctx, orderID)
	}
	return nil, paymentgateway.ErrOrderNotFound
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
