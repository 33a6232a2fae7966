package handler

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"anoa.com/alumnihub/internal/entity"
	notification "anoa.com/alumnihub/internal/modules/notification/service"
	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/logger"
	"anoa.com/alumnihub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var topicPattern = regexp.MustCompile(`^(global|room_[0-9]+)$`)

// UserLookup resolves the device token the stream should follow.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type TicketResponse struct {
	Error     bool      `json:"error"`
	Ticket    string    `json:"ticket"`
	ExpiresAt time.Time `json:"expires_at"`
}

type NotificationHandler struct {
	tickets    notification.TicketService
	subscriber notification.Subscriber
	users      UserLookup
	upgrader   websocket.Upgrader
}

func NewNotificationHandler(tickets notification.TicketService, subscriber notification.Subscriber, users UserLookup, allowedOrigins []string) *NotificationHandler {
	return &NotificationHandler{
		tickets:    tickets,
		subscriber: subscriber,
		users:      users,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// native clients send no origin
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// Ticket issues a short-lived ticket for opening the stream.
func (h *NotificationHandler) Ticket(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	ticket, expiresAt, err := h.tickets.Issue(userID)
	if err != nil {
		response.Error(c, apperror.New(http.StatusInternalServerError, "Failed to issue ticket", err))
		return
	}

	c.JSON(http.StatusOK, TicketResponse{Error: false, Ticket: ticket, ExpiresAt: expiresAt})
}

func parseTopics(raw string) ([]string, error) {
	var topics []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !topicPattern.MatchString(t) {
			return nil, apperror.New(http.StatusBadRequest, fmt.Sprintf("Unknown topic %q", t), apperror.ErrBadRequest)
		}
		topics = append(topics, t)
	}
	return topics, nil
}

// Stream relays pushes for the caller's device and the requested topics over
// a websocket.
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID, err := h.tickets.Verify(c.Query("ticket"))
	if err != nil {
		response.Error(c, err)
		return
	}

	topics, err := parseTopics(c.Query("topics"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.subscriber == nil {
		response.Error(c, apperror.New(http.StatusServiceUnavailable, "Realtime stream is unavailable", nil))
		return
	}

	channels := make([]string, 0, len(topics)+1)
	for _, t := range topics {
		channels = append(channels, notification.TopicChannel(t))
	}
	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, apperror.ErrNotFound)
		return
	}
	if user.HasDevice() {
		channels = append(channels, notification.DeviceChannel(*user.DeviceToken))
	}
	if len(channels) == 0 {
		response.Error(c, apperror.New(http.StatusBadRequest, "Nothing to subscribe to", apperror.ErrBadRequest))
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	msgs, closeSub, err := h.subscriber.Subscribe(ctx, channels...)
	if err != nil {
		response.Error(c, apperror.New(http.StatusServiceUnavailable, "Realtime stream is unavailable", err))
		return
	}
	defer closeSub()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithField("user_id", userID).WithError(err).Warn("failed to upgrade websocket")
		return
	}
	defer conn.Close()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				logger.WithField("user_id", userID).WithError(err).Debug("failed to write to websocket")
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
