package membership

import (
	"time"

	"github.com/gymdesk/gymdesk/internal/shared/biztime"
)

// Window is the derived membership period of a member. It is computed on
// demand and never persisted.
type Window struct {
	// StartDate is zero when the end date comes from a member override.
	StartDate     time.Time
	EndDate       time.Time
	DaysRemaining int
	Rule          MatchRule
}

// IsExpired reports whether the end date falls on a day before today.
func (w *Window) IsExpired() bool {
	return w.DaysRemaining < 0
}

// DaysRemaining counts calendar days from today to the end date, ignoring
// time of day. Zero means the membership ends today.
func DaysRemaining(endDate, now time.Time) int {
	return biztime.DaysBetween(now, endDate)
}

// Window resolves the member's end date and measures it against now.
// Returns nil when the end date is indeterminate.
func (r *EndDateResolver) Window(m *Member, payments []*Payment, plans []*Plan, now time.Time) *Window {
	res := r.Resolve(m, payments, plans)
	if res == nil {
		return nil
	}
	return &Window{
		StartDate:     res.StartDate,
		EndDate:       res.EndDate,
		DaysRemaining: DaysRemaining(res.EndDate, now),
		Rule:          res.Rule,
	}
}
