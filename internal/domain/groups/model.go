package groups

import (
	"time"

	"community-app/internal/domain/users"
)

type Group struct {
	ID          uint `gorm:"primaryKey"`
	OwnerID     uint `gorm:"index"`
	Owner       users.User
	Name        string `gorm:"not null"`
	Slug        string `gorm:"uniqueIndex:idx_groups_slug"`
	Description string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member is the join row granting a user access to a group. Its existence
// is the sole authorization signal; it is created exactly once per
// successful payment or free join.
type Member struct {
	ID      uint `gorm:"primaryKey"`
	UserID  uint `gorm:"uniqueIndex:idx_members_user_group"`
	User    users.User
	GroupID uint `gorm:"uniqueIndex:idx_members_user_group"`
	Group   Group

	CreatedAt time.Time
}
