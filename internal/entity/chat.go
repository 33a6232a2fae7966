package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatRoom struct {
	ID        uint      `gorm:"primaryKey" json:"chat_room_id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Message is either a room message (ChatRoomID set) or a direct message
// (RecipientID set).
type Message struct {
	ID          uint       `gorm:"primaryKey" json:"message_id"`
	ChatRoomID  *uint      `gorm:"index" json:"chat_room_id"`
	RecipientID *uuid.UUID `gorm:"type:uuid;index" json:"recipient_id,omitempty"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Body        string     `gorm:"column:message;type:text;not null" json:"message"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`

	ChatRoom  *ChatRoom `gorm:"foreignKey:ChatRoomID;constraint:OnDelete:CASCADE" json:"-"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipient *User     `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"-"`
}
