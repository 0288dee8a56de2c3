package courses

import (
	"time"

	"community-app/internal/domain/groups"
)

type Course struct {
	ID          uint `gorm:"primaryKey"`
	GroupID     uint `gorm:"index"`
	Group       groups.Group
	Title       string `gorm:"not null"`
	Description string
	Published   bool

	Lessons []Lesson `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Lesson struct {
	ID        uint   `gorm:"primaryKey"`
	CourseID  uint   `gorm:"index"`
	Title     string `gorm:"not null"`
	VideoURL  string
	SortIndex int `gorm:"index"`
	Published bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
