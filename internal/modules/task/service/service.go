package service

import (
	"context"
	"errors"
	"net/http"

	"anoa.com/alumnihub/internal/entity"
	"anoa.com/alumnihub/internal/modules/task/dto"
	"anoa.com/alumnihub/internal/modules/task/repository"
	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	errTaskUpdate = apperror.New(http.StatusNotFound, "Task failed to update. Please try again!", apperror.ErrNotFound)
	errTaskDelete = apperror.New(http.StatusNotFound, "Task failed to delete. Please try again!", apperror.ErrNotFound)
)

type TaskService interface {
	Create(ctx context.Context, userID uuid.UUID, input dto.CreateTaskInput) (uint, error)
	Get(ctx context.Context, userID uuid.UUID, id uint) (*dto.TaskResponse, error)
	List(ctx context.Context, userID uuid.UUID) []dto.TaskResponse
	Update(ctx context.Context, userID uuid.UUID, id uint, input dto.UpdateTaskInput) error
	Delete(ctx context.Context, userID uuid.UUID, id uint) error
}

type taskService struct {
	repo repository.TaskRepository
}

func NewTaskService(repo repository.TaskRepository) TaskService {
	return &taskService{repo: repo}
}

// Create stores the task text exactly as given. Blank input is rejected by
// the request binding.
func (s *taskService) Create(ctx context.Context, userID uuid.UUID, input dto.CreateTaskInput) (uint, error) {
	task := &entity.Task{
		Text:   input.Task,
		Status: entity.TaskStatusOpen,
	}
	if err := s.repo.Create(ctx, userID, task); err != nil {
		return 0, apperror.Persistence("Failed to create task. Please try again", err)
	}
	return task.ID, nil
}

// Get never distinguishes a missing task from one owned by someone else.
func (s *taskService) Get(ctx context.Context, userID uuid.UUID, id uint) (*dto.TaskResponse, error) {
	task, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Persistence("An error occurred. Please try again", err)
	}
	res := dto.NewTaskResponse(task)
	return &res, nil
}

func (s *taskService) List(ctx context.Context, userID uuid.UUID) []dto.TaskResponse {
	tasks, err := s.repo.FindAll(ctx, userID)
	if err != nil {
		logger.WithField("user_id", userID).WithError(err).Error("failed to list tasks")
		return []dto.TaskResponse{}
	}

	out := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, dto.NewTaskResponse(&tasks[i]))
	}
	return out
}

func (s *taskService) Update(ctx context.Context, userID uuid.UUID, id uint, input dto.UpdateTaskInput) error {
	updated, err := s.repo.Update(ctx, userID, id, input.Task, *input.Status)
	if err != nil {
		return apperror.Persistence("Task failed to update. Please try again!", err)
	}
	if !updated {
		return errTaskUpdate
	}
	return nil
}

func (s *taskService) Delete(ctx context.Context, userID uuid.UUID, id uint) error {
	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return apperror.Persistence("Task failed to delete. Please try again!", err)
	}
	if !deleted {
		return errTaskDelete
	}
	return nil
}
