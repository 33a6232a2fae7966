package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/tasks", nil)
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestError_NotFound(t *testing.T) {
	c, rec := newContext()

	Error(c, apperror.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.True(t, body.Error)
	assert.Equal(t, "The requested resource doesn't exists", body.Message)
}

func TestError_InternalDetailsHidden(t *testing.T) {
	c, rec := newContext()

	Error(c, errors.New("dial tcp 10.0.0.1:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperror.ErrPersistence.Error(), decode(t, rec).Message)
}

func TestError_OperationSpecificPersistenceMessage(t *testing.T) {
	c, rec := newContext()

	Error(c, apperror.Persistence("Failed to create task. Please try again", errors.New("deadlock")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to create task. Please try again", decode(t, rec).Message)
}

func TestGetUserID(t *testing.T) {
	c, _ := newContext()

	_, err := GetUserID(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	id := uuid.New()
	c.Set(UserIDKey, id)
	got, err := GetUserID(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	c.Set(UserIDKey, id.String())
	got, err = GetUserID(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	c.Set(UserIDKey, "not-a-uuid")
	_, err = GetUserID(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestError_RateLimitSetsRetryAfter(t *testing.T) {
	c, rec := newContext()

	Error(c, &ratelimiter.RateLimitError{Message: "slow down", RetryAfter: 2 * time.Second})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, "slow down", decode(t, rec).Message)
}
