package dto

import (
	"time"

	"anoa.com/alumnihub/internal/entity"
	userDto "anoa.com/alumnihub/internal/modules/user/dto"
	"github.com/google/uuid"
)

type PostMessageInput struct {
	Message string `json:"message" form:"message" binding:"required,notblank,max=2000"`
}

// BroadcastInput addresses several users at once. To is a comma separated
// list of user ids.
type BroadcastInput struct {
	To      string `json:"to" form:"to" binding:"required,notblank"`
	Message string `json:"message" form:"message" binding:"required,notblank,max=2000"`
}

type ChatRoomResponse struct {
	ChatRoomID uint      `json:"chat_room_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

type ChatRoomListResponse struct {
	Error     bool               `json:"error"`
	ChatRooms []ChatRoomResponse `json:"chat_rooms"`
}

type Sender struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// MessageResponse is a stored or ephemeral message. Ephemeral messages have
// no id and no room.
type MessageResponse struct {
	MessageID   *uint      `json:"message_id"`
	ChatRoomID  *uint      `json:"chat_room_id"`
	RecipientID *uuid.UUID `json:"recipient_id,omitempty"`
	Message     string     `json:"message"`
	CreatedAt   time.Time  `json:"created_at"`
	User        *Sender    `json:"user,omitempty"`
}

type RoomHistoryResponse struct {
	Error    bool              `json:"error"`
	ChatRoom ChatRoomResponse  `json:"chat_room"`
	Messages []MessageResponse `json:"messages"`
}

type MessageListResponse struct {
	Error    bool              `json:"error"`
	Messages []MessageResponse `json:"messages"`
}

type MessageSentResponse struct {
	Error   bool                 `json:"error"`
	Message MessageResponse      `json:"message"`
	User    *userDto.UserSummary `json:"user,omitempty"`
}

func NewChatRoomResponse(r *entity.ChatRoom) ChatRoomResponse {
	return ChatRoomResponse{ChatRoomID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
}

func NewMessageResponse(m *entity.Message) MessageResponse {
	id := m.ID
	res := MessageResponse{
		MessageID:   &id,
		ChatRoomID:  m.ChatRoomID,
		RecipientID: m.RecipientID,
		Message:     m.Body,
		CreatedAt:   m.CreatedAt,
	}
	if m.User != nil {
		res.User = &Sender{UserID: m.User.ID, Username: m.User.Name}
	}
	return res
}

func NewMessageResponses(messages []*entity.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, NewMessageResponse(m))
	}
	return out
}
