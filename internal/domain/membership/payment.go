package membership

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/gymdesk/gymdesk/internal/domain/membership/valueobjects"
	"github.com/gymdesk/gymdesk/internal/shared/biztime"
)

// Payment is one checkout attempt. The raw gateway status is kept as
// received; Status() exposes the normalized value.
type Payment struct {
	id            uint
	orderID       string
	memberID      *uint
	orderAmount   decimal.Decimal
	rawStatus     string
	customerEmail string

	planType     string
	planAmount   *decimal.Decimal
	planDuration *int

	completedAt *time.Time
	version     int
	createdAt   time.Time
	updatedAt   time.Time
}

func NewPayment(orderID, customerEmail string, orderAmount decimal.Decimal) (*Payment, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, fmt.Errorf("order ID is required")
	}
	if strings.TrimSpace(customerEmail) == "" {
		return nil, fmt.Errorf("customer email is required")
	}

	now := biztime.NowUTC()
	return &Payment{
		orderID:       orderID,
		orderAmount:   orderAmount,
		rawStatus:     string(vo.PaymentStatusPending),
		customerEmail: strings.TrimSpace(customerEmail),
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// PaymentPlanInfo is the optional plan snapshot captured at checkout.
type PaymentPlanInfo struct {
	PlanType     string
	PlanAmount   *decimal.Decimal
	PlanDuration *int
}

func ReconstructPayment(id uint, orderID string, memberID *uint, orderAmount decimal.Decimal,
	rawStatus, customerEmail string, plan PaymentPlanInfo, completedAt *time.Time,
	version int, createdAt, updatedAt time.Time) (*Payment, error) {

	if id == 0 {
		return nil, fmt.Errorf("payment ID cannot be zero")
	}
	if orderID == "" {
		return nil, fmt.Errorf("order ID is required")
	}

	return &Payment{
		id:            id,
		orderID:       orderID,
		memberID:      memberID,
		orderAmount:   orderAmount,
		rawStatus:     rawStatus,
		customerEmail: customerEmail,
		planType:      plan.PlanType,
		planAmount:    plan.PlanAmount,
		planDuration:  plan.PlanDuration,
		completedAt:   completedAt,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}, nil
}

// ApplyGatewayStatus records a status reported by the payment gateway.
// Returns true when the normalized status changed. A payment that already
// reached a final status is left untouched.
func (p *Payment) ApplyGatewayStatus(raw string, completedAt *time.Time) (bool, error) {
	next := vo.NormalizePaymentStatus(raw)
	if next == vo.PaymentStatusUnknown {
		return false, fmt.Errorf("unrecognized gateway status %q", raw)
	}

	current := p.Status()
	if current == next {
		return false, nil
	}
	if current.IsFinal() {
		return false, fmt.Errorf("cannot move payment %s from final status %s to %s", p.orderID, current, next)
	}

	now := biztime.NowUTC()
	p.rawStatus = string(next)
	if next.IsPaid() {
		if completedAt == nil {
			completedAt = &now
		}
		t := completedAt.UTC()
		p.completedAt = &t
	}
	p.updatedAt = now
	p.version++
	return true, nil
}

// LinkMember attaches the payment to a member account.
func (p *Payment) LinkMember(memberID uint) {
	p.memberID = &memberID
	p.updatedAt = biztime.NowUTC()
}

func (p *Payment) SetPlanInfo(info PaymentPlanInfo) {
	p.planType = info.PlanType
	p.planAmount = info.PlanAmount
	p.planDuration = info.PlanDuration
}

// StartDate is when the paid period begins: settlement time when known,
// otherwise the checkout time.
func (p *Payment) StartDate() time.Time {
	if p.completedAt != nil {
		return *p.completedAt
	}
	return p.createdAt
}

// BelongsTo reports whether the payment correlates to the member. A linked
// member id is authoritative; unlinked payments fall back to a
// case-insensitive email comparison.
func (p *Payment) BelongsTo(m *Member) bool {
	if m == nil {
		return false
	}
	if p.memberID != nil && m.ID() != 0 {
		return *p.memberID == m.ID()
	}
	return emailsEqual(p.customerEmail, m.Email())
}

func (p *Payment) ID() uint {
	return p.id
}

func (p *Payment) SetID(id uint) {
	p.id = id
}

func (p *Payment) OrderID() string {
	return p.orderID
}

func (p *Payment) MemberID() *uint {
	return p.memberID
}

func (p *Payment) OrderAmount() decimal.Decimal {
	return p.orderAmount
}

func (p *Payment) RawStatus() string {
	return p.rawStatus
}

func (p *Payment) Status() vo.PaymentStatus {
	return vo.NormalizePaymentStatus(p.rawStatus)
}

func (p *Payment) CustomerEmail() string {
	return p.customerEmail
}

func (p *Payment) PlanType() string {
	return p.planType
}

func (p *Payment) PlanAmount() *decimal.Decimal {
	return p.planAmount
}

func (p *Payment) PlanDuration() *int {
	return p.planDuration
}

func (p *Payment) CompletedAt() *time.Time {
	return p.completedAt
}

func (p *Payment) Version() int {
	return p.version
}

func (p *Payment) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Payment) UpdatedAt() time.Time {
	return p.updatedAt
}

func emailsEqual(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}
