package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"anoa.com/alumnihub/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	FlagChatRoom = 1
	FlagUser     = 2

	GlobalTopic = "global"
)

// PushPayload is the body delivered to devices and topic subscribers.
type PushPayload struct {
	Title        string      `json:"title"`
	IsBackground bool        `json:"is_background"`
	Flag         int         `json:"flag"`
	Data         interface{} `json:"data"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Notifier delivers pushes to a device, a topic, or a set of devices.
type Notifier interface {
	Send(ctx context.Context, deviceToken string, payload PushPayload) error
	SendToTopic(ctx context.Context, topic string, payload PushPayload) error
	SendMultiple(ctx context.Context, deviceTokens []string, payload PushPayload) error
}

// RoomTopic names the topic every member of a chat room listens on.
func RoomTopic(roomID uint) string {
	return fmt.Sprintf("room_%d", roomID)
}

func DeviceChannel(deviceToken string) string {
	return "push:device:" + deviceToken
}

func TopicChannel(topic string) string {
	return "push:topic:" + topic
}

// Publisher is the subset of the redis client used for delivery.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type redisNotifier struct {
	pub Publisher
}

// NewRedisNotifier publishes pushes over redis pub/sub. With a nil publisher
// every push is dropped.
func NewRedisNotifier(pub Publisher) Notifier {
	return &redisNotifier{pub: pub}
}

func (n *redisNotifier) publish(ctx context.Context, channel string, payload PushPayload) error {
	if n.pub == nil {
		logger.WithField("channel", channel).Debug("redis unavailable, push dropped")
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode push: %w", err)
	}
	if err := n.pub.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

func (n *redisNotifier) Send(ctx context.Context, deviceToken string, payload PushPayload) error {
	if deviceToken == "" {
		return nil
	}
	return n.publish(ctx, DeviceChannel(deviceToken), payload)
}

func (n *redisNotifier) SendToTopic(ctx context.Context, topic string, payload PushPayload) error {
	return n.publish(ctx, TopicChannel(topic), payload)
}

func (n *redisNotifier) SendMultiple(ctx context.Context, deviceTokens []string, payload PushPayload) error {
	var firstErr error
	for _, token := range deviceTokens {
		if err := n.Send(ctx, token, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
