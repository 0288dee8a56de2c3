package razorpay

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// StubGateway is an in-memory Gateway for tests and local development.
type StubGateway struct {
	mu       sync.Mutex
	orderSeq int
	subSeq   int

	// When set, the corresponding call fails with ErrStubFailure.
	FailOrders        bool
	FailSubscriptions bool

	Orders        []*Order
	Subscriptions []*SubscriptionInfo
	Canceled      []string
}

var ErrStubFailure = errors.New("stub gateway: simulated failure")

func NewStubGateway() *StubGateway {
	return &StubGateway{}
}

func (s *StubGateway) CreateOrder(amountMinor int64, currency, receipt string, _ map[string]interface{}) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailOrders {
		return nil, ErrStubFailure
	}

	s.orderSeq++
	order := &Order{
		ID:       fmt.Sprintf("order_stub%06d", s.orderSeq),
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
	}
	s.Orders = append(s.Orders, order)
	return order, nil
}

func (s *StubGateway) CreateSubscription(planID string, _ int, _ time.Time, _ map[string]interface{}) (*SubscriptionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSubscriptions {
		return nil, ErrStubFailure
	}

	s.subSeq++
	sub := &SubscriptionInfo{
		ID:     fmt.Sprintf("sub_stub%06d", s.subSeq),
		Status: "created",
	}
	s.Subscriptions = append(s.Subscriptions, sub)
	return sub, nil
}

func (s *StubGateway) CancelSubscription(subscriptionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Canceled = append(s.Canceled, subscriptionID)
	return nil
}
