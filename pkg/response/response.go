package response

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/logger"
	"anoa.com/alumnihub/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserIDKey is the gin context key holding the authenticated user's id.
const UserIDKey = "user_id"

// ErrorBody is the envelope for every failed request.
type ErrorBody struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// MessageBody is the envelope for successful writes with nothing else to return.
type MessageBody struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	switch v := value.(type) {
	case uuid.UUID:
		if v == uuid.Nil {
			return uuid.Nil, apperror.ErrUnauthorized
		}
		return v, nil
	case string:
		userID, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, apperror.ErrUnauthorized
		}
		return userID, nil
	}
	return uuid.Nil, apperror.ErrUnauthorized
}

// Error writes the standard error envelope. Internal errors are logged and
// only their client-safe message leaves the process.
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	message := err.Error()
	if code == http.StatusInternalServerError {
		logger.WithFields(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(unwrapCause(err)).Error("request failed")

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			message = appErr.Error()
		} else {
			message = apperror.ErrPersistence.Error()
		}
	}

	var rateLimitErr *ratelimiter.RateLimitError
	if errors.As(err, &rateLimitErr) {
		c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
	}

	c.JSON(code, ErrorBody{Error: true, Message: message})
}

// AbortWithError writes the error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// Message writes {"error": false, "message": msg} with the given status.
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, MessageBody{Error: false, Message: msg})
}

func unwrapCause(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Err != nil {
		return appErr.Err
	}
	return err
}
