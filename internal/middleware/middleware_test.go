package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyAuth map[string]uuid.UUID

func (k keyAuth) Authenticate(_ context.Context, apiKey string) (uuid.UUID, error) {
	if apiKey == "" {
		return uuid.Nil, apperror.ErrMissingAPIKey
	}
	id, ok := k[apiKey]
	if !ok {
		return uuid.Nil, apperror.ErrInvalidAPIKey
	}
	return id, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(auth Authenticator) *gin.Engine {
	r := gin.New()
	r.GET("/me", NewAuthMiddleware(auth).RequireAuth(), func(c *gin.Context) {
		id, err := response.GetUserID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.String(http.StatusOK, id.String())
	})
	return r
}

func get(r http.Handler, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if apiKey != "" {
		req.Header.Set("Authorization", apiKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	r := protectedRouter(keyAuth{"key-a": alice, "key-b": bob})

	w := get(r, "key-a")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, alice.String(), w.Body.String())

	// identity is request scoped
	w = get(r, "key-b")
	assert.Equal(t, bob.String(), w.Body.String())
}

func TestRequireAuth_MissingKey(t *testing.T) {
	w := get(protectedRouter(keyAuth{}), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Error)
	assert.Equal(t, apperror.ErrMissingAPIKey.Error(), body.Message)
}

func TestRequireAuth_InvalidKey(t *testing.T) {
	w := get(protectedRouter(keyAuth{"key-a": uuid.New()}), "nope")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), apperror.ErrInvalidAPIKey.Error())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.POST("/login", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	for i := 0; i <= maxTrackedClients; i++ {
		rl.getLimiter(uuid.NewString())
	}
	rl.Cleanup()
	assert.Empty(t, rl.limiters)
}
