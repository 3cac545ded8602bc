package membership

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a subscription tier in the plan catalog. A plan's price is quoted
// per month; members may prepay several months at once.
type Plan struct {
	id        uint
	planType  string
	amount    decimal.Decimal
	duration  int
	createdAt time.Time
	updatedAt time.Time
}

func NewPlan(planType string, amount decimal.Decimal, duration int) (*Plan, error) {
	planType = strings.TrimSpace(planType)
	if planType == "" {
		return nil, fmt.Errorf("plan type is required")
	}
	if len(planType) > 100 {
		return nil, fmt.Errorf("plan type too long (max 100 characters)")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("plan amount must be positive")
	}
	if duration <= 0 {
		return nil, fmt.Errorf("plan duration must be a positive number of months")
	}

	now := time.Now().UTC()
	return &Plan{
		planType:  planType,
		amount:    amount,
		duration:  duration,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructPlan rebuilds a plan from persistence. Stored rows are trusted;
// rows violating the catalog invariants are skipped by the resolver instead
// of being rejected here.
func ReconstructPlan(id uint, planType string, amount decimal.Decimal, duration int,
	createdAt, updatedAt time.Time) (*Plan, error) {
	if id == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	return &Plan{
		id:        id,
		planType:  planType,
		amount:    amount,
		duration:  duration,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

func (p *Plan) ID() uint {
	return p.id
}

func (p *Plan) SetID(id uint) {
	p.id = id
}

func (p *Plan) PlanType() string {
	return p.planType
}

// Key is the case-insensitive identity of the plan in the catalog.
func (p *Plan) Key() string {
	return strings.ToLower(strings.TrimSpace(p.planType))
}

func (p *Plan) Amount() decimal.Decimal {
	return p.amount
}

func (p *Plan) Duration() int {
	return p.duration
}

// TotalPrice is the amount paid for the whole duration up front.
func (p *Plan) TotalPrice() decimal.Decimal {
	return p.amount.Mul(decimal.NewFromInt(int64(p.duration)))
}

func (p *Plan) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Plan) UpdatedAt() time.Time {
	return p.updatedAt
}

// Update replaces the price and duration of an existing catalog entry.
func (p *Plan) Update(amount decimal.Decimal, duration int) error {
	if !amount.IsPositive() {
		return fmt.Errorf("plan amount must be positive")
	}
	if duration <= 0 {
		return fmt.Errorf("plan duration must be a positive number of months")
	}
	p.amount = amount
	p.duration = duration
	p.updatedAt = time.Now().UTC()
	return nil
}

func (p *Plan) isUsable() bool {
	return p != nil && p.amount.IsPositive() && p.duration > 0
}
