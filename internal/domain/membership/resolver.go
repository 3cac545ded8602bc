package membership

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gymdesk/gymdesk/internal/shared/biztime"
)

// MatchRule names the branch that produced an end date.
type MatchRule string

const (
	MatchRuleOverride      MatchRule = "override"
	MatchRulePlanType      MatchRule = "plan_type"
	MatchRuleSingleAmount  MatchRule = "single_amount"
	MatchRuleExactTotal    MatchRule = "exact_total"
	MatchRuleTolerantTotal MatchRule = "tolerant_total"
	MatchRuleNearestTotal  MatchRule = "nearest_total"
)

func (r MatchRule) String() string {
	return string(r)
}

// MatchPolicy holds the amount tolerances used when a payment has to be
// matched to a plan by price.
type MatchPolicy struct {
	// TotalTolerance is the absolute slack accepted by the tolerant total-price rule.
	TotalTolerance decimal.Decimal
	// NearestMaxDiff and NearestMaxRatio bound the nearest-plan fallback.
	// A candidate is accepted when it satisfies either bound.
	NearestMaxDiff  decimal.Decimal
	NearestMaxRatio decimal.Decimal
}

func DefaultMatchPolicy() MatchPolicy {
	return MatchPolicy{
		TotalTolerance:  decimal.NewFromInt(5),
		NearestMaxDiff:  decimal.NewFromInt(20),
		NearestMaxRatio: decimal.RequireFromString("0.05"),
	}
}

// ParseMatchPolicy builds a policy from decimal strings as found in config.
func ParseMatchPolicy(totalTolerance, nearestMaxDiff, nearestMaxRatio string) (MatchPolicy, error) {
	var p MatchPolicy
	var err error
	if p.TotalTolerance, err = decimal.NewFromString(totalTolerance); err != nil {
		return MatchPolicy{}, fmt.Errorf("invalid total tolerance %q: %w", totalTolerance, err)
	}
	if p.NearestMaxDiff, err = decimal.NewFromString(nearestMaxDiff); err != nil {
		return MatchPolicy{}, fmt.Errorf("invalid nearest max diff %q: %w", nearestMaxDiff, err)
	}
	if p.NearestMaxRatio, err = decimal.NewFromString(nearestMaxRatio); err != nil {
		return MatchPolicy{}, fmt.Errorf("invalid nearest max ratio %q: %w", nearestMaxRatio, err)
	}
	if p.TotalTolerance.IsNegative() || p.NearestMaxDiff.IsNegative() || p.NearestMaxRatio.IsNegative() {
		return MatchPolicy{}, fmt.Errorf("match tolerances must not be negative")
	}
	return p, nil
}

// Resolution is a successfully derived membership period.
type Resolution struct {
	StartDate time.Time
	EndDate   time.Time
	Rule      MatchRule
	Payment   *Payment
	Plan      *Plan
}

// EndDateResolver derives a member's membership end date from payment
// history and the plan catalog. It performs no I/O and is safe for
// concurrent use.
type EndDateResolver struct {
	policy MatchPolicy
}

func NewEndDateResolver(policy MatchPolicy) *EndDateResolver {
	return &EndDateResolver{policy: policy}
}

// ResolveEndDate returns the member's end date, or nil when there is no
// basis to compute one.
func (r *EndDateResolver) ResolveEndDate(m *Member, payments []*Payment, plans []*Plan) *time.Time {
	res := r.Resolve(m, payments, plans)
	if res == nil {
		return nil
	}
	end := res.EndDate
	return &end
}

// Resolve runs the ordered fallback:
//
//  1. an end date stored on the member wins over everything
//  2. otherwise the latest paid payment correlated to the member is chosen
//  3. its plan is found by plan type, then single-month amount, exact total
//     price, tolerant total price, and finally the nearest total price
//  4. end = start + plan duration in calendar months
//
// Returns nil when no branch succeeds.
func (r *EndDateResolver) Resolve(m *Member, payments []*Payment, plans []*Plan) *Resolution {
	if m == nil {
		return nil
	}
	if end := m.EndDate(); end != nil {
		return &Resolution{EndDate: *end, Rule: MatchRuleOverride}
	}

	payment := LatestQualifyingPayment(m, payments)
	if payment == nil {
		return nil
	}

	plan, rule := r.matchPlan(payment, m, plans)
	if plan == nil {
		return nil
	}

	start := payment.StartDate()
	return &Resolution{
		StartDate: start,
		EndDate:   biztime.AddMonths(start.In(biztime.Location()), plan.Duration()),
		Rule:      rule,
		Payment:   payment,
		Plan:      plan,
	}
}

// LatestQualifyingPayment returns the most recent paid payment belonging to
// the member, or nil. Payments sharing a createdAt are ordered by
// completion time, then amount, then storage id, then order id.
func LatestQualifyingPayment(m *Member, payments []*Payment) *Payment {
	var latest *Payment
	for _, p := range payments {
		if p == nil || !p.Status().IsPaid() || !p.BelongsTo(m) {
			continue
		}
		if latest == nil || isLaterPayment(p, latest) {
			latest = p
		}
	}
	return latest
}

func isLaterPayment(a, b *Payment) bool {
	if !a.createdAt.Equal(b.createdAt) {
		return a.createdAt.After(b.createdAt)
	}

	ac, bc := a.completedAt, b.completedAt
	switch {
	case ac != nil && bc == nil:
		return true
	case ac == nil && bc != nil:
		return false
	case ac != nil && bc != nil && !ac.Equal(*bc):
		return ac.After(*bc)
	}

	if c := a.orderAmount.Cmp(b.orderAmount); c != 0 {
		return c > 0
	}
	if a.id != b.id {
		return a.id > b.id
	}
	return a.orderID > b.orderID
}

func (r *EndDateResolver) matchPlan(p *Payment, m *Member, plans []*Plan) (*Plan, MatchRule) {
	catalog := make([]*Plan, 0, len(plans))
	for _, plan := range plans {
		if plan.isUsable() {
			catalog = append(catalog, plan)
		}
	}
	if len(catalog) == 0 {
		return nil, ""
	}

	for _, label := range []string{p.PlanType(), m.PlanType()} {
		if plan := findPlanByLabel(catalog, label); plan != nil {
			return plan, MatchRulePlanType
		}
	}

	amount := p.OrderAmount()
	if !amount.IsPositive() {
		return nil, ""
	}

	for _, plan := range catalog {
		if plan.Amount().Equal(amount) {
			return plan, MatchRuleSingleAmount
		}
	}

	for _, plan := range catalog {
		if plan.TotalPrice().Equal(amount) {
			return plan, MatchRuleExactTotal
		}
	}

	nearest, diff := nearestByTotal(catalog, amount)

	if diff.LessThanOrEqual(r.policy.TotalTolerance) {
		return nearest, MatchRuleTolerantTotal
	}

	// The relative bound is measured against the candidate's total price.
	ratioBound := nearest.TotalPrice().Mul(r.policy.NearestMaxRatio)
	if diff.LessThanOrEqual(r.policy.NearestMaxDiff) || diff.LessThanOrEqual(ratioBound) {
		return nearest, MatchRuleNearestTotal
	}

	return nil, ""
}

// nearestByTotal returns the plan whose total price is closest to amount.
// On equal distance the earlier catalog entry wins.
func nearestByTotal(catalog []*Plan, amount decimal.Decimal) (*Plan, decimal.Decimal) {
	var best *Plan
	var bestDiff decimal.Decimal
	for _, plan := range catalog {
		d := plan.TotalPrice().Sub(amount).Abs()
		if best == nil || d.LessThan(bestDiff) {
			best = plan
			bestDiff = d
		}
	}
	return best, bestDiff
}

var genericPlanLabels = map[string]bool{
	"":             true,
	"plan":         true,
	"membership":   true,
	"subscription": true,
	"custom":       true,
	"default":      true,
}

// normalizePlanLabel lower-cases, collapses whitespace and drops a trailing
// " plan" so "Basic Plan" and "basic" compare equal.
func normalizePlanLabel(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.TrimSuffix(s, " plan")
}

func findPlanByLabel(catalog []*Plan, label string) *Plan {
	want := normalizePlanLabel(label)
	if genericPlanLabels[want] {
		return nil
	}
	for _, plan := range catalog {
		if normalizePlanLabel(plan.PlanType()) == want {
			return plan
		}
	}
	return nil
}
