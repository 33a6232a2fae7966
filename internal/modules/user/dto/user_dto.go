package dto

import (
	"time"

	"anoa.com/alumnihub/internal/entity"
	"github.com/google/uuid"
)

// UserSummary is the public card of a user shown in lists.
type UserSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	GCM            *string   `json:"gcm"`
	Phone          *string   `json:"phone"`
	Photo          *string   `json:"photo"`
	Gender         *string   `json:"gender"`
	GraduationYear *int      `json:"graduation_year"`
	Department     *string   `json:"department"`
	Dormitory      *string   `json:"dormitory"`
	CreatedAt      time.Time `json:"created_at"`
}

type UserListResponse struct {
	Error bool          `json:"error"`
	Users []UserSummary `json:"users"`
}

type UserIDResponse struct {
	Error bool      `json:"error"`
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type SearchQuery struct {
	Q     string `form:"q" binding:"required,notblank,max=100"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

func NewUserSummary(u *entity.User) UserSummary {
	s := UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		GCM:       u.DeviceToken,
		CreatedAt: u.CreatedAt,
	}
	if d := u.Detail; d != nil {
		s.Phone = d.Phone
		s.Photo = d.Photo
		s.Gender = d.Gender
		s.GraduationYear = d.GraduationYear
		if d.Department != nil {
			s.Department = &d.Department.Description
		}
		if d.Dormitory != nil {
			s.Dormitory = &d.Dormitory.Description
		}
	}
	return s
}

func NewUserSummaries(users []*entity.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserSummary(u))
	}
	return out
}
