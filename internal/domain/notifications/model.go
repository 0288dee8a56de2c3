package notifications

import "time"

const (
	TypeMemberJoined  = "member_joined"
	TypeOwnerApproved = "owner_approved"
)

// Notification is a fire-and-forget record shown to the recipient; the
// member_joined kind is created inside the payment-completion transaction.
type Notification struct {
	ID      uint   `gorm:"primaryKey"`
	UserID  uint   `gorm:"index"`
	GroupID *uint
	Type    string `gorm:"type:varchar(30)"`
	Message string
	Read    bool

	CreatedAt time.Time
}
