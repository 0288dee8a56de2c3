package plans

import (
	"math"
	"time"
)

// PricingPlan is an owner's membership price. At most one plan per owner
// may be active at a time; activation flips the others off inside a single
// transaction.
type PricingPlan struct {
	ID       uint `gorm:"primaryKey"`
	OwnerID  uint `gorm:"index"`
	Name     string
	Price    float64 // major units, e.g. 499 = ₹499
	Currency string  `gorm:"type:varchar(10);not null;default:'INR'"`
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AmountMinor returns the plan price in minor currency units (paise).
func (p *PricingPlan) AmountMinor() int64 {
	return int64(math.Round(p.Price * 100))
}
