package razorpay

import (
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
)

// Client wraps the Razorpay REST SDK behind the Gateway interface.
type Client struct {
	rz    *razorpay.Client
	KeyID string
}

func NewClient(keyID, keySecret string) *Client {
	return &Client{
		rz:    razorpay.NewClient(keyID, keySecret),
		KeyID: keyID,
	}
}

func (c *Client) CreateOrder(amountMinor int64, currency, receipt string, notes map[string]interface{}) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := c.rz.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order create: response missing id")
	}

	return &Order{
		ID:       id,
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
	}, nil
}

func (c *Client) CreateSubscription(planID string, totalCount int, startAt time.Time, notes map[string]interface{}) (*SubscriptionInfo, error) {
	data := map[string]interface{}{
		"plan_id":         planID,
		"total_count":     totalCount,
		"customer_notify": 1,
	}
	// Razorpay treats a future start_at as the trial window.
	if !startAt.IsZero() && startAt.After(time.Now()) {
		data["start_at"] = startAt.Unix()
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := c.rz.Subscription.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay subscription create: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay subscription create: response missing id")
	}
	status, _ := body["status"].(string)
	shortURL, _ := body["short_url"].(string)

	return &SubscriptionInfo{ID: id, Status: status, ShortURL: shortURL}, nil
}

func (c *Client) CancelSubscription(subscriptionID string) error {
	_, err := c.rz.Subscription.Cancel(subscriptionID, nil, nil)
	if err != nil {
		return fmt.Errorf("razorpay subscription cancel: %w", err)
	}
	return nil
}
