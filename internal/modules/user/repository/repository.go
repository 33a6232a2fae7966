package repository

import (
	"context"

	"anoa.com/alumnihub/internal/entity"
	"anoa.com/alumnihub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByAPIKey(ctx context.Context, apiKey string) (*entity.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.User, error)
	FindAllExcept(ctx context.Context, id uuid.UUID) ([]*entity.User, error)
	Search(ctx context.Context, query string, limit int) ([]*entity.User, error)
	UpdateDeviceToken(ctx context.Context, id uuid.UUID, token string) (bool, error)
	UpdateAPIKey(ctx context.Context, id uuid.UUID, apiKey string) (bool, error)
}

type userRepository struct {
	h database.Handle
}

func NewUserRepository(h database.Handle) UserRepository {
	return &userRepository{h: h}
}

func withDetail(db *gorm.DB) *gorm.DB {
	return db.Preload("Detail").Preload("Detail.Department").Preload("Detail.Dormitory")
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	return db.Create(user).Error
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var count int64
	if err := db.Model(&entity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var user entity.User
	if err := withDetail(db).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var user entity.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByAPIKey(ctx context.Context, apiKey string) (*entity.User, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var user entity.User
	if err := db.Select("id", "name", "email", "status").Where("api_key = ?", apiKey).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs loads every user in ids with a single parameterized IN query.
func (r *userRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.User, error) {
	if len(ids) == 0 {
		return []*entity.User{}, nil
	}

	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var users []*entity.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) FindAllExcept(ctx context.Context, id uuid.UUID) ([]*entity.User, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var users []*entity.User
	if err := withDetail(db).Where("id <> ?", id).Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]*entity.User, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	pattern := "%" + query + "%"
	var users []*entity.User
	if err := withDetail(db).
		Where("name ILIKE ? OR email ILIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateDeviceToken(ctx context.Context, id uuid.UUID, token string) (bool, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	res := db.Model(&entity.User{}).Where("id = ?", id).Update("gcm_registration_id", token)
	return res.RowsAffected > 0, res.Error
}

func (r *userRepository) UpdateAPIKey(ctx context.Context, id uuid.UUID, apiKey string) (bool, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	res := db.Model(&entity.User{}).Where("id = ?", id).Update("api_key", apiKey)
	return res.RowsAffected > 0, res.Error
}
