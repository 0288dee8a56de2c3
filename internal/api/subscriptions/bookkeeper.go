package subscriptions

import (
	"errors"
	"fmt"
	"time"

	"community-app/internal/domain/billing"
	"community-app/internal/infra/razorpay"

	"gorm.io/gorm"
)

var ErrAlreadySubscribed = errors.New("group already has a subscription")

// Bookkeeper creates and tears down the owner's recurring platform
// subscription for a group. Its methods are the saga steps used by both
// the subscription endpoint and paid group creation.
type Bookkeeper struct {
	DB        *gorm.DB
	Gateway   razorpay.Gateway
	PlanID    string // gateway recurring plan
	TrialDays int
}

// CreateRecord inserts the Subscription row with its trial window.
// Exactly one row may exist per group; the unique index on group_id backs
// up this pre-check.
func (b *Bookkeeper) CreateRecord(ownerID, groupID uint) (*billing.Subscription, error) {
	var count int64
	if err := b.DB.Model(&billing.Subscription{}).
		Where("group_id = ?", groupID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadySubscribed
	}

	now := time.Now()
	trialEnd := now.AddDate(0, 0, b.TrialDays)

	sub := &billing.Subscription{
		OwnerID:        ownerID,
		GroupID:        groupID,
		RazorpayPlanID: b.PlanID,
		Status:         billing.SubscriptionTrialing,
		TrialStart:     &now,
		TrialEnd:       &trialEnd,
	}
	if err := b.DB.Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// EnrollGateway registers the recurring subscription with the gateway,
// billing to begin when the trial ends, and stores the returned id.
func (b *Bookkeeper) EnrollGateway(sub *billing.Subscription) error {
	info, err := b.Gateway.CreateSubscription(b.PlanID, 12, *sub.TrialEnd, map[string]interface{}{
		"owner_id": sub.OwnerID,
		"group_id": sub.GroupID,
	})
	if err != nil {
		return err
	}

	return b.DB.Model(sub).Updates(map[string]interface{}{
		"razorpay_subscription_id": info.ID,
	}).Error
}

// RemoveRecord deletes the row; the compensation for CreateRecord.
func (b *Bookkeeper) RemoveRecord(sub *billing.Subscription) error {
	return b.DB.Delete(sub).Error
}

// CancelGateway cancels the gateway subscription; the compensation for
// EnrollGateway.
func (b *Bookkeeper) CancelGateway(sub *billing.Subscription) error {
	if sub.RazorpaySubscriptionID == nil {
		return nil
	}
	if err := b.Gateway.CancelSubscription(*sub.RazorpaySubscriptionID); err != nil {
		return fmt.Errorf("cancel gateway subscription: %w", err)
	}
	return b.DB.Model(sub).Update("status", billing.SubscriptionCanceled).Error
}
