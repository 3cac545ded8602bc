package valueobjects

// AccountStatus is the lifecycle state of a member account.
type AccountStatus string

const (
	AccountStatusActive     AccountStatus = "active"
	AccountStatusInactive   AccountStatus = "inactive"
	AccountStatusSuspended  AccountStatus = "suspended"
	AccountStatusTerminated AccountStatus = "terminated"
)

var validAccountStatuses = map[AccountStatus]bool{
	AccountStatusActive:     true,
	AccountStatusInactive:   true,
	AccountStatusSuspended:  true,
	AccountStatusTerminated: true,
}

func (s AccountStatus) IsValid() bool {
	return validAccountStatuses[s]
}

func (s AccountStatus) IsActive() bool {
	return s == AccountStatusActive
}

func (s AccountStatus) IsSuspended() bool {
	return s == AccountStatusSuspended
}

func (s AccountStatus) String() string {
	return string(s)
}

// BillingStatus is the member-level payment flag maintained by payment sync.
type BillingStatus string

const (
	BillingStatusPaid    BillingStatus = "paid"
	BillingStatusUnpaid  BillingStatus = "unpaid"
	BillingStatusPending BillingStatus = "pending"
)

func (s BillingStatus) IsValid() bool {
	switch s {
	case BillingStatusPaid, BillingStatusUnpaid, BillingStatusPending:
		return true
	default:
		return false
	}
}

func (s BillingStatus) IsPaid() bool {
	return s == BillingStatusPaid
}

func (s BillingStatus) String() string {
	return string(s)
}
