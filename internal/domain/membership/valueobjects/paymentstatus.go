package valueobjects

import "strings"

// PaymentStatus is the canonical, normalized status of a payment record.
type PaymentStatus string

const (
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusUnknown   PaymentStatus = "unknown"
)

// rawStatusMap collapses gateway-native spellings onto the canonical set.
// Keys are lower-cased.
var rawStatusMap = map[string]PaymentStatus{
	"paid":       PaymentStatusPaid,
	"success":    PaymentStatusPaid,
	"successful": PaymentStatusPaid,
	"completed":  PaymentStatusPaid,
	"captured":   PaymentStatusPaid,

	"failed":       PaymentStatusFailed,
	"failure":      PaymentStatusFailed,
	"user_dropped": PaymentStatusFailed,
	"void":         PaymentStatusFailed,
	"declined":     PaymentStatusFailed,

	"cancelled":             PaymentStatusCancelled,
	"canceled":              PaymentStatusCancelled,
	"terminated":            PaymentStatusCancelled,
	"termination_requested": PaymentStatusCancelled,
	"expired":               PaymentStatusCancelled,

	"pending":       PaymentStatusPending,
	"initiated":     PaymentStatusPending,
	"active":        PaymentStatusPending,
	"not_attempted": PaymentStatusPending,
	"created":       PaymentStatusPending,
	"processing":    PaymentStatusPending,
}

// NormalizePaymentStatus maps a raw status string, in any casing, onto the
// canonical set. Unrecognized values normalize to PaymentStatusUnknown.
func NormalizePaymentStatus(raw string) PaymentStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s, ok := rawStatusMap[key]; ok {
		return s
	}
	return PaymentStatusUnknown
}

// RawStatusesFor returns every raw spelling (lower-case) that normalizes to s.
// Repositories use it to push status filters down into queries.
func RawStatusesFor(s PaymentStatus) []string {
	out := make([]string, 0, 6)
	for raw, canonical := range rawStatusMap {
		if canonical == s {
			out = append(out, raw)
		}
	}
	return out
}

func (s PaymentStatus) IsPaid() bool {
	return s == PaymentStatusPaid
}

func (s PaymentStatus) IsPending() bool {
	return s == PaymentStatusPending
}

// IsFinal reports whether the status can no longer change through gateway sync.
func (s PaymentStatus) IsFinal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed || s == PaymentStatusCancelled
}

func (s PaymentStatus) String() string {
	return string(s)
}
