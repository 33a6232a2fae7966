package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	TaskStatusOpen = 0
	TaskStatusDone = 1
)

type Task struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"column:task;type:text;not null" json:"task"`
	Status    int       `gorm:"not null;default:0" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserTask records task ownership. TaskID is unique so a task has exactly
// one owner.
type UserTask struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TaskID uint      `gorm:"primaryKey;uniqueIndex" json:"task_id"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Task *Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}
