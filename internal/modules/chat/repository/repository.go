package repository

import (
	"context"

	"anoa.com/alumnihub/internal/entity"
	"anoa.com/alumnihub/pkg/database"
	"github.com/google/uuid"
)

type ChatRepository interface {
	ListRooms(ctx context.Context) ([]*entity.ChatRoom, error)
	FindRoom(ctx context.Context, id uint) (*entity.ChatRoom, error)
	// RoomMessages returns the room's messages with their sender in insertion
	// order.
	RoomMessages(ctx context.Context, roomID uint) ([]*entity.Message, error)
	// CreateMessage inserts m and reloads it with its sender.
	CreateMessage(ctx context.Context, m *entity.Message) error
	// Conversation returns the direct messages exchanged by two users.
	Conversation(ctx context.Context, userID, otherID uuid.UUID) ([]*entity.Message, error)
}

type chatRepository struct {
	h database.Handle
}

func NewChatRepository(h database.Handle) ChatRepository {
	return &chatRepository{h: h}
}

func (r *chatRepository) ListRooms(ctx context.Context) ([]*entity.ChatRoom, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var rooms []*entity.ChatRoom
	if err := db.Order("id ASC").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *chatRepository) FindRoom(ctx context.Context, id uint) (*entity.ChatRoom, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var room entity.ChatRoom
	if err := db.Where("id = ?", id).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *chatRepository) RoomMessages(ctx context.Context, roomID uint) ([]*entity.Message, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var messages []*entity.Message
	err := db.Preload("User").
		Where("chat_room_id = ?", roomID).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, m *entity.Message) error {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	if err := db.Omit("ChatRoom", "User", "Recipient").Create(m).Error; err != nil {
		return err
	}
	return db.Preload("User").Where("id = ?", m.ID).First(m).Error
}

func (r *chatRepository) Conversation(ctx context.Context, userID, otherID uuid.UUID) ([]*entity.Message, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var messages []*entity.Message
	err := db.Preload("User").
		Where("(user_id = ? AND recipient_id = ?) OR (user_id = ? AND recipient_id = ?)", userID, otherID, otherID, userID).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
