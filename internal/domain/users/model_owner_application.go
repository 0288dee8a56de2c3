package users

import "time"

const (
	ApplicationPending  = "PENDING"
	ApplicationApproved = "APPROVED"
	ApplicationRejected = "REJECTED"
)

// OwnerApplication is a user's request to become a group owner. Approval
// flips the user's role and issues a time-boxed temporary password.
type OwnerApplication struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"uniqueIndex:idx_owner_applications_user_id"`
	User       User `gorm:"constraint:OnDelete:CASCADE"`
	Motivation string
	Status     string `gorm:"type:varchar(20);not null;default:'PENDING'"`

	ReviewedBy *uint
	ReviewedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
