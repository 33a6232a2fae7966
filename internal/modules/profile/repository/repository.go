package repository

import (
	"context"
	"time"

	"anoa.com/alumnihub/internal/entity"
	"anoa.com/alumnihub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// ProfileRepository writes user details. Every call is keyed by the owner's
// id, never inferred.
type ProfileRepository interface {
	UpsertDetail(ctx context.Context, detail *entity.UserDetail) error
	// UpdateDetail returns false when the user has no detail row yet.
	UpdateDetail(ctx context.Context, userID uuid.UUID, fields map[string]interface{}) (bool, error)
	UpsertPhoto(ctx context.Context, userID uuid.UUID, url string) error
	UpdateEmail(ctx context.Context, userID uuid.UUID, email string) (bool, error)
}

type profileRepository struct {
	h database.Handle
}

func NewProfileRepository(h database.Handle) ProfileRepository {
	return &profileRepository{h: h}
}

func (r *profileRepository) UpsertDetail(ctx context.Context, detail *entity.UserDetail) error {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	return db.Omit("Department", "Dormitory").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"gender", "graduation_year", "department_id", "dormitory_id", "updated_at"}),
	}).Create(detail).Error
}

func (r *profileRepository) UpdateDetail(ctx context.Context, userID uuid.UUID, fields map[string]interface{}) (bool, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	fields["updated_at"] = time.Now()
	res := db.Model(&entity.UserDetail{}).Where("user_id = ?", userID).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *profileRepository) UpsertPhoto(ctx context.Context, userID uuid.UUID, url string) error {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	detail := entity.UserDetail{UserID: userID, Photo: &url}
	return db.Omit("Department", "Dormitory").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"photo", "updated_at"}),
	}).Create(&detail).Error
}

func (r *profileRepository) UpdateEmail(ctx context.Context, userID uuid.UUID, email string) (bool, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	res := db.Model(&entity.User{}).Where("id = ?", userID).Update("email", email)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
