package billing

import (
	"time"

	"community-app/internal/domain/groups"
	"community-app/internal/domain/plans"
	"community-app/internal/domain/users"
)

// MemberPayment status machine: PENDING -> COMPLETED | FAILED, both
// terminal. A payment never transitions backward.
const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
)

type MemberPayment struct {
	ID      uint `gorm:"primaryKey"`
	UserID  uint `gorm:"index"`
	User    users.User
	GroupID uint `gorm:"index"`
	Group   groups.Group
	PlanID  uint
	Plan    plans.PricingPlan

	AmountMinor int64
	Currency    string `gorm:"type:varchar(10)"`
	Phone       string
	Status      string `gorm:"type:varchar(20);not null;default:'PENDING'"`

	RazorpayOrderID   string  `gorm:"not null;uniqueIndex:idx_member_payments_order_id"`
	RazorpayPaymentID *string
	RazorpaySignature *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
