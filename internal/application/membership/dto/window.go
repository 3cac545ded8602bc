package dto

import (
	"github.com/gymdesk/gymdesk/internal/domain/membership"
	"github.com/gymdesk/gymdesk/internal/shared/biztime"
)

// MembershipWindowDTO is the externally visible membership period. Dates
// are business-timezone calendar dates (YYYY-MM-DD). EndDate is nil when
// no end date can be derived.
type MembershipWindowDTO struct {
	MemberID      uint    `json:"member_id"`
	Email         string  `json:"email"`
	AccountStatus string  `json:"account_status"`
	StartDate     *string `json:"start_date"`
	EndDate       *string `json:"end_date"`
	DaysRemaining *int    `json:"days_remaining"`
	Expired       bool    `json:"expired"`
	MatchedBy     string  `json:"matched_by,omitempty"`
}

func ToMembershipWindowDTO(m *membership.Member, w *membership.Window) *MembershipWindowDTO {
	out := &MembershipWindowDTO{
		MemberID:      m.ID(),
		Email:         m.Email(),
		AccountStatus: m.AccountStatus().String(),
	}
	if w == nil {
		return out
	}

	end := biztime.FormatDate(w.EndDate)
	days := w.DaysRemaining
	out.EndDate = &end
	out.DaysRemaining = &days
	out.Expired = w.IsExpired()
	out.MatchedBy = w.Rule.String()
	if !w.StartDate.IsZero() {
		start := biztime.FormatDate(w.StartDate)
		out.StartDate = &start
	}
	return out
}
