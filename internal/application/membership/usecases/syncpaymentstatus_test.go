package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymdesk/gymdesk/internal/application/membership/paymentgateway"
	"github.com/gymdesk/gymdesk/internal/domain/membership"
	vo "github.com/gymdesk/gymdesk/internal/domain/membership/valueobjects"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

func mustPendingPayment(t *testing.T, id uint, orderID, email, planType string) *membership.Payment {
	t.Helper()
	now := time.Now().UTC()
	p, err := membership.ReconstructPayment(id, orderID, nil, decimal.NewFromInt(999), "ACTIVE", email,
		membership.PaymentPlanInfo{PlanType: planType}, nil, 1, now, now)
	require.NoError(t, err)
	return p
}

func TestSyncPaymentStatus_SettlesPaymentAndMember(t *testing.T) {
	payment := mustPendingPayment(t, 1, "order_1", "Ana@Example.com", "basic")
	unpaid, err := membership.ReconstructMember(4, "ana@example.com", "Ana", vo.AccountStatusActive,
		vo.BillingStatusUnpaid, "", nil, 1, time.Now(), time.Now())
	require.NoError(t, err)
	paidAt := time.Date(2025, 6, 1, 4, 30, 0, 0, time.UTC)

	var listed membership.PaymentFilter
	var updatedPayment *membership.Payment
	var updatedMember *membership.Member

	paymentRepo := &mockPaymentRepository{
		ListFunc: func(ctx context.Context, filter membership.PaymentFilter) ([]*membership.Payment, error) {
			listed = filter
			return []*membership.Payment{payment}, nil
		},
		UpdateFunc: func(ctx context.Context, p *membership.Payment) error {
			updatedPayment = p
			return nil
		},
	}
	memberRepo := &mockMemberRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*membership.Member, error) {
			assert.Equal(t, "Ana@Example.com", email)
			return unpaid, nil
		},
		UpdateFunc: func(ctx context.Context, m *membership.Member) error {
			updatedMember = m
			return nil
		},
	}
	gateway := &mockOrderFetcher{
		FetchOrderFunc: func(ctx context.Context, orderID string) (*paymentgateway.OrderStatus, error) {
			return &paymentgateway.OrderStatus{OrderID: orderID, Status: "PAID", PaidAt: &paidAt}, nil
		},
	}

	uc := NewSyncPaymentStatusUseCase(paymentRepo, memberRepo, gateway, passthroughTx{}, 0, logger.NewNopLogger())
	count, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []vo.PaymentStatus{vo.PaymentStatusPending}, listed.Statuses)
	require.NotNil(t, listed.CreatedAfter)
	assert.WithinDuration(t, time.Now().Add(-DefaultSyncLookback), *listed.CreatedAfter, time.Minute)

	require.NotNil(t, updatedPayment)
	assert.Equal(t, vo.PaymentStatusPaid, updatedPayment.Status())
	assert.True(t, paidAt.Equal(*updatedPayment.CompletedAt()))
	require.NotNil(t, updatedPayment.MemberID())
	assert.Equal(t, uint(4), *updatedPayment.MemberID())

	require.NotNil(t, updatedMember)
	assert.Equal(t, vo.BillingStatusPaid, updatedMember.BillingStatus())
	assert.Equal(t, "basic", updatedMember.PlanType())
}

func TestSyncPaymentStatus_SkipsFailuresAndUnchanged(t *testing.T) {
	payments := []*membership.Payment{
		mustPendingPayment(t, 1, "order_err", "a@example.com", ""),
		mustPendingPayment(t, 2, "order_same", "b@example.com", ""),
		mustPendingPayment(t, 3, "order_failed", "c@example.com", ""),
		mustPendingPayment(t, 4, "order_weird", "d@example.com", ""),
	}
	var updates []string

	paymentRepo := &mockPaymentRepository{
		ListFunc: func(ctx context.Context, filter membership.PaymentFilter) ([]*membership.Payment, error) {
			return payments, nil
		},
		UpdateFunc: func(ctx context.Context, p *membership.Payment) error {
			updates = append(updates, p.OrderID())
			return nil
		},
	}
	gateway := &mockOrderFetcher{
		FetchOrderFunc: func(ctx context.Context, orderID string) (*paymentgateway.OrderStatus, error) {
			switch orderID {
			case "order_err":
				return nil, errors.New("gateway timeout")
			case "order_same":
				return &paymentgateway.OrderStatus{OrderID: orderID, Status: "ACTIVE"}, nil
			case "order_failed":
				return &paymentgateway.OrderStatus{OrderID: orderID, Status: "EXPIRED"}, nil
			default:
				return &paymentgateway.OrderStatus{OrderID: orderID, Status: "ON_HOLD"}, nil
			}
		},
	}

	uc := NewSyncPaymentStatusUseCase(paymentRepo, &mockMemberRepository{}, gateway, passthroughTx{}, time.Hour, logger.NewNopLogger())
	count, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"order_failed"}, updates)
	assert.Equal(t, vo.PaymentStatusCancelled, payments[2].Status())
}

func TestSyncPaymentStatus_PaidWithoutMemberStillRecorded(t *testing.T) {
	payment := mustPendingPayment(t, 1, "order_1", "ghost@example.com", "")
	updated := false

	paymentRepo := &mockPaymentRepository{
		ListFunc: func(ctx context.Context, filter membership.PaymentFilter) ([]*membership.Payment, error) {
			return []*membership.Payment{payment}, nil
		},
		UpdateFunc: func(ctx context.Context, p *membership.Payment) error {
			updated = true
			return nil
		},
	}
	gateway := &mockOrderFetcher{
		FetchOrderFunc: func(ctx context.Context, orderID string) (*paymentgateway.OrderStatus, error) {
			return &paymentgateway.OrderStatus{OrderID: orderID, Status: "paid"}, nil
		},
	}

	uc := NewSyncPaymentStatusUseCase(paymentRepo, &mockMemberRepository{}, gateway, passthroughTx{}, time.Hour, logger.NewNopLogger())
	count, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.True(t, updated)
	assert.Nil(t, payment.MemberID())
}

func TestSyncPaymentStatus_ListFailure(t *testing.T) {
	paymentRepo := &mockPaymentRepository{
		ListFunc: func(ctx context.Context, filter membership.PaymentFilter) ([]*membership.Payment, error) {
			return nil, errors.New("db down")
		},
	}

	uc := NewSyncPaymentStatusUseCase(paymentRepo, &mockMemberRepository{}, &mockOrderFetcher{}, passthroughTx{}, time.Hour, logger.NewNopLogger())
	_, err := uc.Execute(context.Background())

	assert.ErrorContains(t, err, "failed to list pending payments")
}
