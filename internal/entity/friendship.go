package entity

import (
	"time"

	"github.com/google/uuid"
)

// Friendship is a directed edge. accepted=false is a pending request from
// UserID to FriendID. An accepted friendship is stored in both directions.
type Friendship struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	FriendID  uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"friend_id"`
	Accepted  bool      `gorm:"not null;default:false" json:"accepted"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Friend *User `gorm:"foreignKey:FriendID;constraint:OnDelete:CASCADE" json:"-"`
}
