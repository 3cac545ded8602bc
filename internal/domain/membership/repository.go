package membership

import (
	"context"
	"time"

	vo "github.com/gymdesk/gymdesk/internal/domain/membership/valueobjects"
)

// MemberFilter narrows ListMembers. Zero values do not filter.
type MemberFilter struct {
	AccountStatus vo.AccountStatus
	BillingStatus vo.BillingStatus
}

// PaymentFilter narrows ListPayments. Zero values do not filter.
type PaymentFilter struct {
	Statuses      []vo.PaymentStatus
	MemberID      *uint
	Email         string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

type MemberRepository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id uint) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	List(ctx context.Context, filter MemberFilter) ([]*Member, error)
	UpdateAccountStatus(ctx context.Context, id uint, status vo.AccountStatus) error
	Update(ctx context.Context, m *Member) error
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	GetByOrderID(ctx context.Context, orderID string) (*Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]*Payment, error)
	Update(ctx context.Context, p *Payment) error
}

type PlanRepository interface {
	List(ctx context.Context) ([]*Plan, error)
	GetByType(ctx context.Context, planType string) (*Plan, error)
	Upsert(ctx context.Context, p *Plan) error
}
