package membership

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/gymdesk/gymdesk/internal/domain/membership/valueobjects"
	"github.com/gymdesk/gymdesk/internal/shared/biztime"
)

// Member is a gym member account.
type Member struct {
	id            uint
	email         string
	name          string
	accountStatus vo.AccountStatus
	billingStatus vo.BillingStatus
	planType      string
	endDate       *time.Time
	version       int
	createdAt     time.Time
	updatedAt     time.Time
}

func NewMember(email, name string) (*Member, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("member email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid member email: %s", email)
	}

	now := biztime.NowUTC()
	return &Member{
		email:         email,
		name:          name,
		accountStatus: vo.AccountStatusActive,
		billingStatus: vo.BillingStatusUnpaid,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructMember(id uint, email, name string, accountStatus vo.AccountStatus,
	billingStatus vo.BillingStatus, planType string, endDate *time.Time,
	version int, createdAt, updatedAt time.Time) (*Member, error) {

	if id == 0 {
		return nil, fmt.Errorf("member ID cannot be zero")
	}
	if !accountStatus.IsValid() {
		return nil, fmt.Errorf("invalid account status: %s", accountStatus)
	}
	if !billingStatus.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", billingStatus)
	}

	return &Member{
		id:            id,
		email:         email,
		name:          name,
		accountStatus: accountStatus,
		billingStatus: billingStatus,
		planType:      planType,
		endDate:       endDate,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}, nil
}

// Suspend moves an active member to suspended. Suspending an already
// suspended member is a no-op so repeated expiration cycles stay idempotent.
func (m *Member) Suspend() error {
	switch m.accountStatus {
	case vo.AccountStatusSuspended:
		return nil
	case vo.AccountStatusActive:
		m.accountStatus = vo.AccountStatusSuspended
		m.updatedAt = biztime.NowUTC()
		m.version++
		return nil
	default:
		return fmt.Errorf("%w: cannot suspend member in status %s", ErrInvalidTransition, m.accountStatus)
	}
}

// MarkPaid records a settled payment for the member. An empty planType
// keeps the current one.
func (m *Member) MarkPaid(planType string) {
	m.billingStatus = vo.BillingStatusPaid
	if strings.TrimSpace(planType) != "" {
		m.planType = planType
	}
	m.updatedAt = biztime.NowUTC()
	m.version++
}

// SetEndDateOverride pins the membership end date, bypassing derivation.
func (m *Member) SetEndDateOverride(endDate *time.Time) {
	m.endDate = endDate
	m.updatedAt = biztime.NowUTC()
}

// IsUnderExpiryWatch reports whether the expiration cycle should consider the member.
func (m *Member) IsUnderExpiryWatch() bool {
	return m.accountStatus.IsActive() && m.billingStatus.IsPaid()
}

func (m *Member) ID() uint {
	return m.id
}

func (m *Member) SetID(id uint) {
	m.id = id
}

func (m *Member) Email() string {
	return m.email
}

func (m *Member) Name() string {
	return m.name
}

func (m *Member) AccountStatus() vo.AccountStatus {
	return m.accountStatus
}

func (m *Member) BillingStatus() vo.BillingStatus {
	return m.billingStatus
}

func (m *Member) PlanType() string {
	return m.planType
}

func (m *Member) EndDate() *time.Time {
	return m.endDate
}

func (m *Member) Version() int {
	return m.version
}

func (m *Member) CreatedAt() time.Time {
	return m.createdAt
}

func (m *Member) UpdatedAt() time.Time {
	return m.updatedAt
}
