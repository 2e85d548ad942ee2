package models

import "time"

// CheckStatus is the outcome of the final account review step.
type CheckStatus string

const (
	CheckPending   CheckStatus = "pending"
	CheckActive    CheckStatus = "active"
	CheckSuspended CheckStatus = "suspended"
)

// Valid reports whether s is one of the allowed check statuses.
func (s CheckStatus) Valid() bool {
	switch s {
	case CheckPending, CheckActive, CheckSuspended:
		return true
	}
	return false
}

// SignupProgress tracks one account's advancement through the four gated
// signup steps. A step's date is non-nil iff the step has moved past
// "not started".
type SignupProgress struct {
	AccountID              string      `json:"account_id"`
	CreateAccountCompleted bool        `json:"create_account_completed"`
	CreateAccountDate      *time.Time  `json:"create_account_date"`
	FirstListingCompleted  bool        `json:"first_listing_completed"`
	FirstListingDate       *time.Time  `json:"first_listing_date"`
	SellerAccountCompleted bool        `json:"seller_account_completed"`
	SellerAccountDate      *time.Time  `json:"seller_account_date"`
	CheckAccountStatus     CheckStatus `json:"check_account_status"`
	CheckAccountDate       *time.Time  `json:"check_account_date"`
	UpdatedAt              time.Time   `json:"updated_at"`
}
