package database

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Handle pairs the connection pool with the timeout applied to every store
// call. A zero Timeout leaves the caller's deadline untouched.
type Handle struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func NewHandle(db *gorm.DB, timeout time.Duration) Handle {
	return Handle{DB: db, Timeout: timeout}
}

// WithContext returns a session bound to ctx, bounded by the store timeout.
// The cancel func must always be called.
func (h Handle) WithContext(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if h.Timeout <= 0 {
		return h.DB.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, h.Timeout)
	return h.DB.WithContext(ctx), cancel
}
