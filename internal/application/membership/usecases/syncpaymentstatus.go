package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gymdesk/gymdesk/internal/application/membership/paymentgateway"
	"github.com/gymdesk/gymdesk/internal/domain/membership"
	vo "github.com/gymdesk/gymdesk/internal/domain/membership/valueobjects"
	"github.com/gymdesk/gymdesk/internal/shared/biztime"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

const DefaultSyncLookback = 72 * time.Hour

// SyncPaymentStatusUseCase polls the gateway for pending payments and
// records their final status. A payment that settles marks its member paid.
type SyncPaymentStatusUseCase struct {
	paymentRepo membership.PaymentRepository
	memberRepo  membership.MemberRepository
	gateway     paymentgateway.OrderStatusFetcher
	txManager   TransactionRunner
	lookback    time.Duration
	logger      logger.Interface
}

func NewSyncPaymentStatusUseCase(
	paymentRepo membership.PaymentRepository,
	memberRepo membership.MemberRepository,
	gateway paymentgateway.OrderStatusFetcher,
	txManager TransactionRunner,
	lookback time.Duration,
	logger logger.Interface,
) *SyncPaymentStatusUseCase {
	if lookback <= 0 {
		lookback = DefaultSyncLookback
	}
	return &SyncPaymentStatusUseCase{
		paymentRepo: paymentRepo,
		memberRepo:  memberRepo,
		gateway:     gateway,
		txManager:   txManager,
		lookback:    lookback,
		logger:      logger,
	}
}

// Execute returns the number of payments whose status changed.
func (uc *SyncPaymentStatusUseCase) Execute(ctx context.Context) (int, error) {
	since := biztime.NowUTC().Add(-uc.lookback)
	pending, err := uc.paymentRepo.List(ctx, membership.PaymentFilter{
		Statuses:     []vo.PaymentStatus{vo.PaymentStatusPending},
		CreatedAfter: &since,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list pending payments: %w", err)
	}

	if len(pending) == 0 {
		return 0, nil
	}

	uc.logger.Infow("syncing pending payments", "count", len(pending))

	updated := 0
	for _, p := range pending {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}

		changed, err := uc.syncOne(ctx, p)
		if err != nil {
			uc.logger.Warnw("failed to sync payment",
				"order_id", p.OrderID(),
				"error", err,
			)
			continue
		}
		if changed {
			updated++
		}
	}

	return updated, nil
}

func (uc *SyncPaymentStatusUseCase) syncOne(ctx context.Context, p *membership.Payment) (bool, error) {
	order, err := uc.gateway.FetchOrder(ctx, p.OrderID())
	if err != nil {
		return false, fmt.Errorf("failed to fetch order: %w", err)
	}

	changed, err := p.ApplyGatewayStatus(order.Status, order.PaidAt)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if p.Status().IsPaid() {
			if err := uc.markMemberPaid(txCtx, p); err != nil {
				// The payment is still recorded; the member is fixed on the next pass.
				uc.logger.Errorw("failed to update member after payment",
					"order_id", p.OrderID(),
					"error", err,
				)
			}
		}
		if err := uc.paymentRepo.Update(txCtx, p); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	uc.logger.Infow("payment status synced",
		"order_id", p.OrderID(),
		"status", p.Status().String(),
	)
	return true, nil
}

func (uc *SyncPaymentStatusUseCase) markMemberPaid(ctx context.Context, p *membership.Payment) error {
	var (
		m   *membership.Member
		err error
	)
	if id := p.MemberID(); id != nil {
		m, err = uc.memberRepo.GetByID(ctx, *id)
	} else {
		m, err = uc.memberRepo.GetByEmail(ctx, p.CustomerEmail())
	}
	if errors.Is(err, membership.ErrMemberNotFound) {
		uc.logger.Warnw("paid order has no member", "order_id", p.OrderID(), "email", p.CustomerEmail())
		return nil
	}
	if err != nil {
		return err
	}

	if p.MemberID() == nil {
		p.LinkMember(m.ID())
	}
	m.MarkPaid(p.PlanType())
	return uc.memberRepo.Update(ctx, m)
}
