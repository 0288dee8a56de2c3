package users

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint `gorm:"primaryKey"`
	Name         string
	Lastname     string
	Phone        string
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email"`
	Password     *string `gorm:""`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub"`
	Role         string
	IsVerified   bool

	// Set when an approved owner application issues a temporary password.
	// Login with a temporary password past its expiry is rejected, and the
	// first successful login must change it.
	MustChangePassword    bool
	TempPasswordExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
