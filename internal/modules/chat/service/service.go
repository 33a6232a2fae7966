package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/alumnihub/internal/entity"
	"anoa.com/alumnihub/internal/modules/chat/dto"
	"anoa.com/alumnihub/internal/modules/chat/repository"
	notification "anoa.com/alumnihub/internal/modules/notification/service"
	userDto "anoa.com/alumnihub/internal/modules/user/dto"
	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/logger"
	"anoa.com/alumnihub/pkg/ratelimiter"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const messageAction = "message"

var (
	errRoomNotFound      = apperror.New(http.StatusNotFound, "Chat room not found", apperror.ErrNotFound)
	errRecipientNotFound = apperror.New(http.StatusNotFound, "Recipient not found", apperror.ErrNotFound)
	errEmptyMessage      = apperror.New(http.StatusBadRequest, "Message is empty", apperror.ErrBadRequest)
	errNoRecipients      = apperror.New(http.StatusBadRequest, "No recipients given", apperror.ErrBadRequest)
)

// UserLookup resolves senders and recipients.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.User, error)
}

type ChatService interface {
	ListRooms(ctx context.Context) []dto.ChatRoomResponse
	GetRoomHistory(ctx context.Context, roomID uint) (*dto.RoomHistoryResponse, error)
	PostRoomMessage(ctx context.Context, userID uuid.UUID, roomID uint, body string) (*dto.MessageSentResponse, error)
	PostDirectMessage(ctx context.Context, fromID, toID uuid.UUID, body string) (*dto.MessageSentResponse, error)
	// Broadcast pushes an ephemeral message to several users. Nothing is stored.
	Broadcast(ctx context.Context, fromID uuid.UUID, toIDs []uuid.UUID, body string) (*dto.MessageSentResponse, error)
	// SendToAll pushes an ephemeral message to the global topic.
	SendToAll(ctx context.Context, fromID uuid.UUID, body string) (*dto.MessageSentResponse, error)
	GetConversation(ctx context.Context, userID, otherID uuid.UUID) []dto.MessageResponse
}

type chatService struct {
	repo       repository.ChatRepository
	users      UserLookup
	dispatcher *notification.Dispatcher
	limiter    *ratelimiter.Limiter
	pushTitle  string
}

func NewChatService(
	repo repository.ChatRepository,
	users UserLookup,
	dispatcher *notification.Dispatcher,
	limiter *ratelimiter.Limiter,
	pushTitle string,
) ChatService {
	return &chatService{
		repo:       repo,
		users:      users,
		dispatcher: dispatcher,
		limiter:    limiter,
		pushTitle:  pushTitle,
	}
}

func (s *chatService) ListRooms(ctx context.Context) []dto.ChatRoomResponse {
	rooms, err := s.repo.ListRooms(ctx)
	if err != nil {
		logger.WithError(err).Error("failed to list chat rooms")
		return []dto.ChatRoomResponse{}
	}

	out := make([]dto.ChatRoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, dto.NewChatRoomResponse(r))
	}
	return out
}

func (s *chatService) findRoom(ctx context.Context, roomID uint) (*entity.ChatRoom, error) {
	room, err := s.repo.FindRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRoomNotFound
		}
		return nil, apperror.Persistence("An error occurred. Please try again", err)
	}
	return room, nil
}

// GetRoomHistory returns an empty message list for a room nobody wrote in.
func (s *chatService) GetRoomHistory(ctx context.Context, roomID uint) (*dto.RoomHistoryResponse, error) {
	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	res := &dto.RoomHistoryResponse{
		Error:    false,
		ChatRoom: dto.NewChatRoomResponse(room),
		Messages: []dto.MessageResponse{},
	}

	messages, err := s.repo.RoomMessages(ctx, roomID)
	if err != nil {
		logger.WithField("chat_room_id", roomID).WithError(err).Error("failed to load room messages")
		return res, nil
	}
	res.Messages = dto.NewMessageResponses(messages)
	return res, nil
}

// claim rejects a blank body and takes the sender's rate limit window. It
// runs after every lookup so only a failed save has to release the window.
// The body is stored as sent.
func (s *chatService) claim(ctx context.Context, userID uuid.UUID, body string) error {
	if strings.TrimSpace(body) == "" {
		return errEmptyMessage
	}

	if err := s.limiter.Check(ctx, userID, messageAction); err != nil {
		var rateLimitErr *ratelimiter.RateLimitError
		if errors.As(err, &rateLimitErr) {
			return err
		}
		logger.WithField("user_id", userID).WithError(err).Warn("rate limit check failed, allowing message")
	}
	return nil
}

func (s *chatService) sender(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, apperror.Persistence("An error occurred. Please try again", err)
	}
	return user, nil
}

func (s *chatService) store(ctx context.Context, m *entity.Message) error {
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		if clearErr := s.limiter.Clear(ctx, m.UserID, messageAction); clearErr != nil {
			logger.WithField("user_id", m.UserID).WithError(clearErr).Warn("failed to clear rate limit")
		}
		return apperror.Persistence("Failed send message", err)
	}
	return nil
}

func (s *chatService) payload(flag int, data map[string]interface{}) notification.PushPayload {
	return notification.PushPayload{
		Title:     s.pushTitle,
		Flag:      flag,
		Data:      data,
		CreatedAt: time.Now(),
	}
}

func (s *chatService) PostRoomMessage(ctx context.Context, userID uuid.UUID, roomID uint, body string) (*dto.MessageSentResponse, error) {
	if _, err := s.findRoom(ctx, roomID); err != nil {
		return nil, err
	}
	user, err := s.sender(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.claim(ctx, userID, body); err != nil {
		return nil, err
	}

	msg := &entity.Message{ChatRoomID: &roomID, UserID: userID, Body: body}
	if err := s.store(ctx, msg); err != nil {
		return nil, err
	}

	sender := userDto.NewUserSummary(user)
	res := dto.NewMessageResponse(msg)
	s.dispatcher.ToTopic(notification.RoomTopic(roomID), s.payload(notification.FlagChatRoom, map[string]interface{}{
		"user":         sender,
		"message":      res,
		"chat_room_id": roomID,
	}))

	return &dto.MessageSentResponse{Error: false, Message: res, User: &sender}, nil
}

// PostDirectMessage stores the message and pushes it to the recipient's
// device when one is registered.
func (s *chatService) PostDirectMessage(ctx context.Context, fromID, toID uuid.UUID, body string) (*dto.MessageSentResponse, error) {
	recipient, err := s.users.FindByID(ctx, toID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRecipientNotFound
		}
		return nil, apperror.Persistence("An error occurred. Please try again", err)
	}
	user, err := s.sender(ctx, fromID)
	if err != nil {
		return nil, err
	}
	if err := s.claim(ctx, fromID, body); err != nil {
		return nil, err
	}

	msg := &entity.Message{RecipientID: &toID, UserID: fromID, Body: body}
	if err := s.store(ctx, msg); err != nil {
		return nil, err
	}

	sender := userDto.NewUserSummary(user)
	res := dto.NewMessageResponse(msg)
	if recipient.HasDevice() {
		s.dispatcher.ToDevice(*recipient.DeviceToken, s.payload(notification.FlagUser, map[string]interface{}{
			"user":    sender,
			"message": res,
		}))
	}

	return &dto.MessageSentResponse{Error: false, Message: res, User: &sender}, nil
}

func ephemeral(user *entity.User, text string) dto.MessageResponse {
	return dto.MessageResponse{
		Message:   text,
		CreatedAt: time.Now(),
		User:      &dto.Sender{UserID: user.ID, Username: user.Name},
	}
}

func (s *chatService) Broadcast(ctx context.Context, fromID uuid.UUID, toIDs []uuid.UUID, body string) (*dto.MessageSentResponse, error) {
	if len(toIDs) == 0 {
		return nil, errNoRecipients
	}
	user, err := s.sender(ctx, fromID)
	if err != nil {
		return nil, err
	}
	recipients, err := s.users.FindByIDs(ctx, toIDs)
	if err != nil {
		return nil, apperror.Persistence("Failed send message", err)
	}
	if err := s.claim(ctx, fromID, body); err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r.HasDevice() {
			tokens = append(tokens, *r.DeviceToken)
		}
	}

	sender := userDto.NewUserSummary(user)
	res := ephemeral(user, body)
	s.dispatcher.ToDevices(tokens, s.payload(notification.FlagUser, map[string]interface{}{
		"user":    sender,
		"message": res,
	}))

	return &dto.MessageSentResponse{Error: false, Message: res, User: &sender}, nil
}

func (s *chatService) SendToAll(ctx context.Context, fromID uuid.UUID, body string) (*dto.MessageSentResponse, error) {
	user, err := s.sender(ctx, fromID)
	if err != nil {
		return nil, err
	}
	if err := s.claim(ctx, fromID, body); err != nil {
		return nil, err
	}

	sender := userDto.NewUserSummary(user)
	res := ephemeral(user, body)
	s.dispatcher.ToTopic(notification.GlobalTopic, s.payload(notification.FlagUser, map[string]interface{}{
		"user":    sender,
		"message": res,
	}))

	return &dto.MessageSentResponse{Error: false, Message: res, User: &sender}, nil
}

func (s *chatService) GetConversation(ctx context.Context, userID, otherID uuid.UUID) []dto.MessageResponse {
	messages, err := s.repo.Conversation(ctx, userID, otherID)
	if err != nil {
		logger.WithFields(map[string]interface{}{"user_id": userID, "other_id": otherID}).
			WithError(err).Error("failed to load conversation")
		return []dto.MessageResponse{}
	}
	return dto.NewMessageResponses(messages)
}
