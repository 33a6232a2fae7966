package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	UserStatusInactive = 0
	UserStatusActive   = 1
)

type User struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string      `gorm:"size:250;not null" json:"name"`
	Email        string      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string      `gorm:"type:text;not null" json:"-"`
	APIKey       string      `gorm:"column:api_key;size:64;uniqueIndex;not null" json:"-"`
	Status       int         `gorm:"not null;default:1" json:"status"`
	DeviceToken  *string     `gorm:"column:gcm_registration_id;type:text" json:"gcm,omitempty"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	Detail       *UserDetail `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"detail,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasDevice reports whether the user registered a push token.
func (u *User) HasDevice() bool {
	return u.DeviceToken != nil && *u.DeviceToken != ""
}

// UserDetail holds the profile of a user. There is at most one row per user,
// keyed by UserID.
type UserDetail struct {
	UserID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"user_id"`
	Bio            *string     `gorm:"type:text" json:"bio"`
	Profession     *string     `gorm:"type:text" json:"profession"`
	Skills         *string     `gorm:"type:text" json:"skills"`
	Awards         *string     `gorm:"type:text" json:"awards"`
	Interests      *string     `gorm:"type:text" json:"interests"`
	References     *string     `gorm:"column:recommendations;type:text" json:"references"`
	Phone          *string     `gorm:"size:30" json:"phone"`
	Photo          *string     `gorm:"type:text" json:"photo"`
	Gender         *string     `gorm:"size:1" json:"gender"`
	GraduationYear *int        `json:"graduation_year"`
	DepartmentID   *uint       `json:"department_id"`
	Department     *Department `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"department,omitempty"`
	DormitoryID    *uint       `json:"dormitory_id"`
	Dormitory      *Dormitory  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"dormitory,omitempty"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}
