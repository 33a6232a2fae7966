package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	taskDto "anoa.com/alumnihub/internal/modules/task/dto"
	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/response"
	"anoa.com/alumnihub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTaskService struct {
	tasks map[uint]taskDto.TaskResponse
	owner map[uint]uuid.UUID
}

func newStub() *stubTaskService {
	return &stubTaskService{tasks: map[uint]taskDto.TaskResponse{}, owner: map[uint]uuid.UUID{}}
}

func (s *stubTaskService) Create(_ context.Context, userID uuid.UUID, in taskDto.CreateTaskInput) (uint, error) {
	id := uint(len(s.tasks) + 1)
	s.tasks[id] = taskDto.TaskResponse{ID: id, Task: in.Task}
	s.owner[id] = userID
	return id, nil
}

func (s *stubTaskService) Get(_ context.Context, userID uuid.UUID, id uint) (*taskDto.TaskResponse, error) {
	t, ok := s.tasks[id]
	if !ok || s.owner[id] != userID {
		return nil, apperror.ErrNotFound
	}
	return &t, nil
}

func (s *stubTaskService) List(_ context.Context, userID uuid.UUID) []taskDto.TaskResponse {
	out := []taskDto.TaskResponse{}
	for id, t := range s.tasks {
		if s.owner[id] == userID {
			out = append(out, t)
		}
	}
	return out
}

func (s *stubTaskService) Update(_ context.Context, userID uuid.UUID, id uint, in taskDto.UpdateTaskInput) error {
	if s.owner[id] != userID {
		return apperror.ErrNotFound
	}
	s.tasks[id] = taskDto.TaskResponse{ID: id, Task: in.Task, Status: *in.Status}
	return nil
}

func (s *stubTaskService) Delete(_ context.Context, userID uuid.UUID, id uint) error {
	if s.owner[id] != userID {
		return apperror.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func router(svc *stubTaskService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Register()
	h := NewTaskHandler(svc)

	r := gin.New()
	g := r.Group("", func(c *gin.Context) {
		c.Set(response.UserIDKey, c.GetHeader("Authorization"))
	})
	g.GET("/tasks", h.GetTasks)
	g.GET("/tasks/:id", h.GetTask)
	g.POST("/tasks", h.CreateTask)
	g.PUT("/tasks/:id", h.UpdateTask)
	g.DELETE("/tasks/:id", h.DeleteTask)
	return r
}

func call(r http.Handler, user uuid.UUID, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", user.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestTaskEndpoints(t *testing.T) {
	r := router(newStub())
	alice := uuid.New()

	w, body := call(r, alice, http.MethodPost, "/tasks", `{"task":"buy milk"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint(body["task_id"].(float64))

	w, body = call(r, alice, http.MethodGet, fmt.Sprintf("/tasks/%d", id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "buy milk", body["task"])
	assert.Equal(t, false, body["error"])

	w, body = call(r, alice, http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["tasks"], 1)

	w, _ = call(r, alice, http.MethodPut, fmt.Sprintf("/tasks/%d", id), `{"task":"buy milk","status":1}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(r, alice, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTaskEndpoints_Validation(t *testing.T) {
	r := router(newStub())
	alice := uuid.New()

	w, body := call(r, alice, http.MethodPost, "/tasks", `{"task":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["message"], "task")

	w, body = call(r, alice, http.MethodPut, "/tasks/1", `{"task":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["message"], "status")

	w, _ = call(r, alice, http.MethodGet, "/tasks/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskEndpoints_ForeignTaskIsNotFound(t *testing.T) {
	r := router(newStub())
	alice, bob := uuid.New(), uuid.New()

	_, body := call(r, alice, http.MethodPost, "/tasks", `{"task":"secret"}`)
	path := fmt.Sprintf("/tasks/%d", uint(body["task_id"].(float64)))

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w, body := call(r, bob, method, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, method)
		assert.Equal(t, true, body["error"])
	}
	w, _ := call(r, bob, http.MethodPut, path, `{"task":"mine now","status":0}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
