package handler

import (
	"net/http"
	"strconv"

	taskDto "anoa.com/alumnihub/internal/modules/task/dto"
	task "anoa.com/alumnihub/internal/modules/task/service"
	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/response"
	"anoa.com/alumnihub/pkg/validator"
	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	service task.TaskService
}

func NewTaskHandler(service task.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// parseTaskID maps malformed ids to not found, same as ids owned by others.
func parseTaskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, apperror.ErrNotFound)
		return 0, false
	}
	return uint(id), true
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input taskDto.CreateTaskInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	id, err := h.service.Create(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, taskDto.TaskCreatedResponse{
		Error:   false,
		Message: "Task created successfully",
		TaskID:  id,
	})
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	tasks := h.service.List(c.Request.Context(), userID)
	c.JSON(http.StatusOK, taskDto.TaskListResponse{Error: false, Tasks: tasks})
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	t, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, taskDto.TaskDetailResponse{Error: false, TaskResponse: *t})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	var input taskDto.UpdateTaskInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	if err := h.service.Update(c.Request.Context(), userID, id, input); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Task updated successfully")
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Task deleted successfully")
}
