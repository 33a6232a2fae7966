package middleware

import (
	"context"

	"anoa.com/alumnihub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Authenticator resolves an API key into the id of the user holding it.
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (uuid.UUID, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireAuth reads the API key from the Authorization header and stores the
// caller's id in the request context under response.UserIDKey.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("Authorization")

		userID, err := m.auth.Authenticate(c.Request.Context(), apiKey)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		c.Set(response.UserIDKey, userID)
		c.Next()
	}
}
