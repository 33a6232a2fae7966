package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/alumnihub/internal/entity"
	"anoa.com/alumnihub/pkg/database/dbtest"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFindRoom_NotFound(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewChatRepository(h)

	mock.ExpectQuery(`SELECT \* FROM "chat_rooms" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}))

	_, err := repo.FindRoom(context.Background(), 7)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRoomMessages_OrderedWithSender(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewChatRepository(h)
	alice := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "messages" WHERE chat_room_id = \$1 ORDER BY id ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "chat_room_id", "user_id", "message", "created_at"}).
			AddRow(1, 1, alice.String(), "first", now).
			AddRow(2, 1, alice.String(), "second", now))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
		WithArgs(alice).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(alice.String(), "Alice"))

	messages, err := repo.RoomMessages(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Body)
	assert.Equal(t, "Alice", messages[1].User.Name)
}

func TestRoomMessages_EmptyRoomSkipsPreload(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewChatRepository(h)

	mock.ExpectQuery(`SELECT \* FROM "messages" WHERE chat_room_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	messages, err := repo.RoomMessages(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestCreateMessage_InsertsThenReloads(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewChatRepository(h)
	alice := uuid.New()
	room := uint(1)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "messages" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "messages" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "chat_room_id", "user_id", "message", "created_at"}).
			AddRow(5, 1, alice.String(), "hi", time.Now()))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(alice.String(), "Alice"))

	msg := &entity.Message{ChatRoomID: &room, UserID: alice, Body: "hi"}
	require.NoError(t, repo.CreateMessage(context.Background(), msg))
	assert.Equal(t, uint(5), msg.ID)
	require.NotNil(t, msg.User)
	assert.Equal(t, "Alice", msg.User.Name)
}

func TestConversation_BothDirections(t *testing.T) {
	h, mock := dbtest.New(t)
	repo := NewChatRepository(h)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "messages" WHERE \(user_id = \$1 AND recipient_id = \$2\) OR \(user_id = \$3 AND recipient_id = \$4\) ORDER BY id ASC`).
		WithArgs(a, b, b, a).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	messages, err := repo.Conversation(context.Background(), a, b)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
