package dto

import (
	"time"

	"anoa.com/alumnihub/internal/entity"
)

type CreateTaskInput struct {
	Task string `json:"task" form:"task" binding:"required,notblank,max=1000"`
}

type UpdateTaskInput struct {
	Task   string `json:"task" form:"task" binding:"required,notblank,max=1000"`
	Status *int   `json:"status" form:"status" binding:"required,oneof=0 1"`
}

type TaskResponse struct {
	ID        uint      `json:"id"`
	Task      string    `json:"task"`
	Status    int       `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type TaskDetailResponse struct {
	Error bool `json:"error"`
	TaskResponse
}

type TaskListResponse struct {
	Error bool           `json:"error"`
	Tasks []TaskResponse `json:"tasks"`
}

type TaskCreatedResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	TaskID  uint   `json:"task_id"`
}

func NewTaskResponse(t *entity.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		Task:      t.Text,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
	}
}
