package dto

import (
	"io"

	"anoa.com/alumnihub/internal/entity"
	"github.com/google/uuid"
)

// RegisterInfoInput completes the alumni record after registration.
type RegisterInfoInput struct {
	Gender         string `json:"gender" form:"gender" binding:"required,notblank,oneof=L P"`
	GraduationYear int    `json:"graduation_year" form:"graduation_year" binding:"required,min=1950,max=2100"`
	DepartmentID   uint   `json:"department_id" form:"department_id" binding:"required"`
	DormitoryID    uint   `json:"dormitory_id" form:"dormitory_id" binding:"required"`
}

// UpdateProfileInput carries a partial update. Nil fields are left untouched.
type UpdateProfileInput struct {
	Bio        *string `json:"bio" form:"bio" binding:"omitempty,max=2000"`
	Profession *string `json:"profession" form:"profession" binding:"omitempty,max=500"`
	Skills     *string `json:"skills" form:"skills" binding:"omitempty,max=1000"`
	Awards     *string `json:"awards" form:"awards" binding:"omitempty,max=1000"`
	Interests  *string `json:"interests" form:"interests" binding:"omitempty,max=1000"`
	References *string `json:"references" form:"references" binding:"omitempty,max=1000"`
	Phone      *string `json:"phone" form:"phone" binding:"omitempty,max=30"`
}

type UpdateEmailInput struct {
	Email string `json:"email" form:"email" binding:"required,notblank,email,max=255"`
}

// PhotoFile is an uploaded profile photo.
type PhotoFile struct {
	Reader   io.Reader
	FileName string
}

// ShareInfoResponse is what other users may see.
type ShareInfoResponse struct {
	Error          bool      `json:"error"`
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Photo          *string   `json:"photo"`
	Gender         *string   `json:"gender"`
	GraduationYear *int      `json:"graduation_year"`
	Department     *string   `json:"department"`
	Dormitory      *string   `json:"dormitory"`
}

// ProfileResponse is the caller's own record.
type ProfileResponse struct {
	ShareInfoResponse
	Bio        *string `json:"bio"`
	Profession *string `json:"profession"`
	Skills     *string `json:"skills"`
	Awards     *string `json:"awards"`
	Interests  *string `json:"interests"`
	References *string `json:"references"`
	Phone      *string `json:"phone"`
}

type PhotoResponse struct {
	Error bool   `json:"error"`
	Photo string `json:"photo"`
}

// HasChanges reports whether at least one field was supplied.
func (in UpdateProfileInput) HasChanges() bool {
	return in.Bio != nil || in.Profession != nil || in.Skills != nil || in.Awards != nil ||
		in.Interests != nil || in.References != nil || in.Phone != nil
}

func NewShareInfoResponse(u *entity.User) ShareInfoResponse {
	res := ShareInfoResponse{ID: u.ID, Name: u.Name, Email: u.Email}
	if d := u.Detail; d != nil {
		res.Photo = d.Photo
		res.Gender = d.Gender
		res.GraduationYear = d.GraduationYear
		if d.Department != nil {
			res.Department = &d.Department.Description
		}
		if d.Dormitory != nil {
			res.Dormitory = &d.Dormitory.Description
		}
	}
	return res
}

func NewProfileResponse(u *entity.User) ProfileResponse {
	res := ProfileResponse{ShareInfoResponse: NewShareInfoResponse(u)}
	if d := u.Detail; d != nil {
		res.Bio = d.Bio
		res.Profession = d.Profession
		res.Skills = d.Skills
		res.Awards = d.Awards
		res.Interests = d.Interests
		res.References = d.References
		res.Phone = d.Phone
	}
	return res
}
