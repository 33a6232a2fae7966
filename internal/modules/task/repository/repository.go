package repository

import (
	"context"

	"anoa.com/alumnihub/internal/entity"
	"anoa.com/alumnihub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskRepository scopes every read and write to the owning user.
type TaskRepository interface {
	Create(ctx context.Context, userID uuid.UUID, task *entity.Task) error
	FindByID(ctx context.Context, userID uuid.UUID, id uint) (*entity.Task, error)
	FindAll(ctx context.Context, userID uuid.UUID) ([]entity.Task, error)
	Update(ctx context.Context, userID uuid.UUID, id uint, text string, status int) (bool, error)
	Delete(ctx context.Context, userID uuid.UUID, id uint) (bool, error)
}

type taskRepository struct {
	h database.Handle
}

func NewTaskRepository(h database.Handle) TaskRepository {
	return &taskRepository{h: h}
}

func owned(db *gorm.DB, userID uuid.UUID) *gorm.DB {
	return db.Joins("JOIN user_tasks ut ON ut.task_id = tasks.id").Where("ut.user_id = ?", userID)
}

// Create inserts the task and its ownership row atomically.
func (r *taskRepository) Create(ctx context.Context, userID uuid.UUID, task *entity.Task) error {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		return tx.Create(&entity.UserTask{UserID: userID, TaskID: task.ID}).Error
	})
}

func (r *taskRepository) FindByID(ctx context.Context, userID uuid.UUID, id uint) (*entity.Task, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var task entity.Task
	if err := owned(db, userID).Where("tasks.id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, userID uuid.UUID) ([]entity.Task, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var tasks []entity.Task
	if err := owned(db, userID).Order("tasks.created_at ASC, tasks.id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update reports false when the task does not exist or belongs to someone else.
func (r *taskRepository) Update(ctx context.Context, userID uuid.UUID, id uint, text string, status int) (bool, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	ownedIDs := db.Model(&entity.UserTask{}).Select("task_id").Where("user_id = ?", userID)
	res := db.Model(&entity.Task{}).
		Where("id = ? AND id IN (?)", id, ownedIDs).
		Updates(map[string]interface{}{"task": text, "status": status})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the ownership row first so a foreign task is never touched.
func (r *taskRepository) Delete(ctx context.Context, userID uuid.UUID, id uint) (bool, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	deleted := false
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND task_id = ?", userID, id).Delete(&entity.UserTask{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Where("id = ?", id).Delete(&entity.Task{}).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}
