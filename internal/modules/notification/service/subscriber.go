package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Subscriber streams raw push payloads published on the given channels.
// The returned close func releases the subscription.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) (<-chan string, func() error, error)
}

type redisSubscriber struct {
	client *redis.Client
}

// NewRedisSubscriber returns nil when client is nil so callers can tell the
// stream is unavailable.
func NewRedisSubscriber(client *redis.Client) Subscriber {
	if client == nil {
		return nil
	}
	return &redisSubscriber{client: client}
}

func (s *redisSubscriber) Subscribe(ctx context.Context, channels ...string) (<-chan string, func() error, error) {
	pubsub := s.client.Subscribe(ctx, channels...)

	// wait for confirmation that the subscription exists
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, pubsub.Close, nil
}
