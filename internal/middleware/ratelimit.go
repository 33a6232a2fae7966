package middleware

import (
	"sync"

	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/logger"
	"anoa.com/alumnihub/pkg/response"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const maxTrackedClients = 10000

// RateLimiter throttles requests per client IP with a token bucket each.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !rl.getLimiter(key).Allow() {
			logger.WithFields(map[string]interface{}{
				"client_ip": key,
				"path":      c.FullPath(),
			}).Warn("rate limit exceeded")
			response.AbortWithError(c, apperror.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// Cleanup drops every tracked bucket once the table grows past its cap.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.limiters) > maxTrackedClients {
		rl.limiters = make(map[string]*rate.Limiter)
	}
}
