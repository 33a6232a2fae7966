package service

import (
	"context"
	"sync"
	"time"

	"anoa.com/alumnihub/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Dispatcher runs Notifier calls off the request path. Failures are logged
// and never reach the caller.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, timeout time.Duration) *Dispatcher {
	return &Dispatcher{notifier: notifier, timeout: timeout}
}

func (d *Dispatcher) ToDevice(deviceToken string, payload PushPayload) {
	if deviceToken == "" {
		return
	}
	d.dispatch(logrus.Fields{"device": deviceToken}, func(ctx context.Context) error {
		return d.notifier.Send(ctx, deviceToken, payload)
	})
}

func (d *Dispatcher) ToTopic(topic string, payload PushPayload) {
	d.dispatch(logrus.Fields{"topic": topic}, func(ctx context.Context) error {
		return d.notifier.SendToTopic(ctx, topic, payload)
	})
}

func (d *Dispatcher) ToDevices(deviceTokens []string, payload PushPayload) {
	if len(deviceTokens) == 0 {
		return
	}
	d.dispatch(logrus.Fields{"devices": len(deviceTokens)}, func(ctx context.Context) error {
		return d.notifier.SendMultiple(ctx, deviceTokens, payload)
	})
}

func (d *Dispatcher) dispatch(fields logrus.Fields, send func(ctx context.Context) error) {
	if d == nil || d.notifier == nil {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(fields).Errorf("notifier panicked: %v", r)
			}
		}()

		ctx := context.Background()
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}

		if err := send(ctx); err != nil {
			logger.WithFields(fields).WithError(err).Warn("failed to send notification")
		}
	}()
}

// Wait blocks until every in-flight notification has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
