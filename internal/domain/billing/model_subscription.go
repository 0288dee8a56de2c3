package billing

import (
	"time"

	"community-app/internal/domain/groups"
	"community-app/internal/domain/users"
)

const (
	SubscriptionTrialing = "trialing"
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
)

// Subscription tracks the owner's recurring platform fee for one group.
// Exactly one row exists per group.
type Subscription struct {
	ID      uint `gorm:"primaryKey"`
	OwnerID uint `gorm:"index"`
	Owner   users.User
	GroupID uint `gorm:"uniqueIndex:idx_subscriptions_group_id"`
	Group   groups.Group

	RazorpaySubscriptionID *string `gorm:"uniqueIndex:idx_subscriptions_rzp_id"`
	RazorpayPlanID         string
	Status                 string  `gorm:"type:varchar(20)"`

	TrialStart       *time.Time
	TrialEnd         *time.Time
	CurrentPeriodEnd *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
