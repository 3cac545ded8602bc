package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/gymdesk/gymdesk/internal/application/membership/dto"
	"github.com/gymdesk/gymdesk/internal/domain/membership"
	vo "github.com/gymdesk/gymdesk/internal/domain/membership/valueobjects"
	"github.com/gymdesk/gymdesk/internal/shared/biztime"
	apperrors "github.com/gymdesk/gymdesk/internal/shared/errors"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

// GetMembershipWindowUseCase resolves one member's current membership period.
type GetMembershipWindowUseCase struct {
	memberRepo  membership.MemberRepository
	paymentRepo membership.PaymentRepository
	planRepo    membership.PlanRepository
	resolver    *membership.EndDateResolver
	logger      logger.Interface
}

func NewGetMembershipWindowUseCase(
	memberRepo membership.MemberRepository,
	paymentRepo membership.PaymentRepository,
	planRepo membership.PlanRepository,
	resolver *membership.EndDateResolver,
	logger logger.Interface,
) *GetMembershipWindowUseCase {
	return &GetMembershipWindowUseCase{
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		planRepo:    planRepo,
		resolver:    resolver,
		logger:      logger,
	}
}

func (uc *GetMembershipWindowUseCase) Execute(ctx context.Context, memberID uint) (*dto.MembershipWindowDTO, error) {
	if memberID == 0 {
		return nil, apperrors.NewValidationError("member id is required")
	}

	m, err := uc.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, membership.ErrMemberNotFound) {
			return nil, apperrors.NewNotFoundError("member not found", fmt.Sprintf("id=%d", memberID))
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	paid := []vo.PaymentStatus{vo.PaymentStatusPaid}
	id := m.ID()
	linked, err := uc.paymentRepo.List(ctx, membership.PaymentFilter{Statuses: paid, MemberID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to list member payments: %w", err)
	}
	byEmail, err := uc.paymentRepo.List(ctx, membership.PaymentFilter{Statuses: paid, Email: m.Email()})
	if err != nil {
		return nil, fmt.Errorf("failed to list member payments: %w", err)
	}

	plans, err := uc.planRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	window := uc.resolver.Window(m, mergePayments(linked, byEmail), plans, biztime.NowUTC())
	if window == nil {
		uc.logger.Debugw("membership end date indeterminate", "member_id", memberID)
	}

	return dto.ToMembershipWindowDTO(m, window), nil
}

// mergePayments concatenates payment lists, dropping duplicates by order id.
func mergePayments(lists ...[]*membership.Payment) []*membership.Payment {
	seen := make(map[string]struct{})
	var out []*membership.Payment
	for _, list := range lists {
		for _, p := range list {
			if _, dup := seen[p.OrderID()]; dup {
				continue
			}
			seen[p.OrderID()] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
