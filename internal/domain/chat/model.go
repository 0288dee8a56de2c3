package chat

import (
	"time"

	"community-app/internal/domain/groups"
	"community-app/internal/domain/users"
)

type Channel struct {
	ID        uint `gorm:"primaryKey"`
	GroupID   uint `gorm:"uniqueIndex:idx_channels_group_name"`
	Group     groups.Group
	Name      string `gorm:"uniqueIndex:idx_channels_group_name"`
	CreatedBy uint

	CreatedAt time.Time
}

type Message struct {
	ID        uint `gorm:"primaryKey"`
	ChannelID uint `gorm:"index"`
	Channel   Channel
	SenderID  uint
	Sender    users.User `gorm:"foreignKey:SenderID"`
	Body      string     `gorm:"not null"`

	CreatedAt time.Time
}

type DirectMessage struct {
	ID          uint       `gorm:"primaryKey"`
	SenderID    uint       `gorm:"index"`
	Sender      users.User `gorm:"foreignKey:SenderID"`
	RecipientID uint       `gorm:"index"`
	Recipient   users.User `gorm:"foreignKey:RecipientID"`
	Body        string     `gorm:"not null"`
	ReadAt      *time.Time

	CreatedAt time.Time
}
