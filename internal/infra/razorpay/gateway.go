package razorpay

import "time"

// Order is the gateway's record of an intent to charge AmountMinor.
// Its ID correlates the later client-side payment callback.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
}

// SubscriptionInfo is the gateway's recurring-billing record for an owner.
type SubscriptionInfo struct {
	ID       string
	Status   string
	ShortURL string
}

// Gateway abstracts the Razorpay REST client so handlers can be exercised
// against a stub in tests.
type Gateway interface {
	CreateOrder(amountMinor int64, currency, receipt string, notes map[string]interface{}) (*Order, error)
	CreateSubscription(planID string, totalCount int, startAt time.Time, notes map[string]interface{}) (*SubscriptionInfo, error)
	CancelSubscription(subscriptionID string) error
}
