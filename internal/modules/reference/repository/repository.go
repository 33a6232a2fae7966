package repository

import (
	"context"

	"anoa.com/alumnihub/internal/entity"
	"anoa.com/alumnihub/pkg/database"
	"gorm.io/gorm"
)

type ReferenceRepository interface {
	FindDepartments(ctx context.Context, filter string) ([]*entity.Department, error)
	FindDormitories(ctx context.Context, filter string) ([]*entity.Dormitory, error)
}

type referenceRepository struct {
	h database.Handle
}

func NewReferenceRepository(h database.Handle) ReferenceRepository {
	return &referenceRepository{h: h}
}

func filtered(db *gorm.DB, filter string) *gorm.DB {
	if filter != "" {
		db = db.Where("description ILIKE ?", "%"+filter+"%")
	}
	return db.Order("id ASC")
}

func (r *referenceRepository) FindDepartments(ctx context.Context, filter string) ([]*entity.Department, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var departments []*entity.Department
	if err := filtered(db, filter).Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *referenceRepository) FindDormitories(ctx context.Context, filter string) ([]*entity.Dormitory, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var dormitories []*entity.Dormitory
	if err := filtered(db, filter).Find(&dormitories).Error; err != nil {
		return nil, err
	}
	return dormitories, nil
}
