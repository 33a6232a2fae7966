package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"anoa.com/alumnihub/internal/entity"
	notification "anoa.com/alumnihub/internal/modules/notification/service"
	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memChat struct {
	mu         sync.Mutex
	rooms      map[uint]*entity.ChatRoom
	users      map[uuid.UUID]*entity.User
	messages   []*entity.Message
	failSave   bool
	failLookup bool
}

func newMemChat() *memChat {
	return &memChat{
		rooms: map[uint]*entity.ChatRoom{1: {ID: 1, Name: "General", CreatedAt: time.Now()}},
		users: map[uuid.UUID]*entity.User{},
	}
}

func (m *memChat) addUser(name, token string) *entity.User {
	u := &entity.User{ID: uuid.New(), Name: name}
	if token != "" {
		u.DeviceToken = &token
	}
	m.users[u.ID] = u
	return u
}

func (m *memChat) ListRooms(context.Context) ([]*entity.ChatRoom, error) {
	return []*entity.ChatRoom{m.rooms[1]}, nil
}

func (m *memChat) FindRoom(_ context.Context, id uint) (*entity.ChatRoom, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memChat) RoomMessages(_ context.Context, roomID uint) ([]*entity.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Message
	for _, msg := range m.messages {
		if msg.ChatRoomID != nil && *msg.ChatRoomID == roomID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memChat) CreateMessage(_ context.Context, msg *entity.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("connection reset")
	}
	msg.ID = uint(len(m.messages) + 1)
	msg.CreatedAt = time.Now()
	msg.User = m.users[msg.UserID]
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memChat) Conversation(_ context.Context, a, b uuid.UUID) ([]*entity.Message, error) {
	var out []*entity.Message
	for _, msg := range m.messages {
		if msg.RecipientID == nil {
			continue
		}
		if (msg.UserID == a && *msg.RecipientID == b) || (msg.UserID == b && *msg.RecipientID == a) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memChat) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if m.failLookup {
		return nil, errors.New("connection reset")
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memChat) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.User, error) {
	var out []*entity.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type sent struct {
	kind    string
	targets []string
	payload notification.PushPayload
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (r *recordingNotifier) record(kind string, targets []string, p notification.PushPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{kind: kind, targets: targets, payload: p})
	return r.err
}

func (r *recordingNotifier) Send(_ context.Context, token string, p notification.PushPayload) error {
	return r.record("device", []string{token}, p)
}

func (r *recordingNotifier) SendToTopic(_ context.Context, topic string, p notification.PushPayload) error {
	return r.record("topic", []string{topic}, p)
}

func (r *recordingNotifier) SendMultiple(_ context.Context, tokens []string, p notification.PushPayload) error {
	return r.record("multiple", tokens, p)
}

type windowStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (w *windowStore) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.keys[key] {
		return redis.NewBoolResult(false, nil)
	}
	w.keys[key] = true
	return redis.NewBoolResult(true, nil)
}

func (w *windowStore) TTL(context.Context, string) *redis.DurationCmd {
	return redis.NewDurationResult(2*time.Second, nil)
}

func (w *windowStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, k := range keys {
		delete(w.keys, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

type fixture struct {
	repo     *memChat
	notifier *recordingNotifier
	dispatch *notification.Dispatcher
	svc      ChatService
}

func newFixture(limiter *ratelimiter.Limiter) *fixture {
	repo := newMemChat()
	rec := &recordingNotifier{}
	d := notification.NewDispatcher(rec, time.Second)
	return &fixture{
		repo:     repo,
		notifier: rec,
		dispatch: d,
		svc:      NewChatService(repo, repo, d, limiter, "Forum"),
	}
}

func TestGetRoomHistory_EmptyRoom(t *testing.T) {
	f := newFixture(nil)

	history, err := f.svc.GetRoomHistory(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "General", history.ChatRoom.Name)
	assert.NotNil(t, history.Messages)
	assert.Empty(t, history.Messages)

	_, err = f.svc.GetRoomHistory(context.Background(), 99)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPostRoomMessage_PersistsAndNotifiesTopic(t *testing.T) {
	f := newFixture(nil)
	alice := f.repo.addUser("Alice", "")
	ctx := context.Background()

	first, err := f.svc.PostRoomMessage(ctx, alice.ID, 1, "  hello <b>everyone</b>")
	require.NoError(t, err)
	_, err = f.svc.PostRoomMessage(ctx, alice.ID, 1, "second")
	require.NoError(t, err)
	f.dispatch.Wait()

	assert.Equal(t, "  hello <b>everyone</b>", first.Message.Message)
	require.NotNil(t, first.Message.User)
	assert.Equal(t, "Alice", first.Message.User.Username)

	history, err := f.svc.GetRoomHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "  hello <b>everyone</b>", history.Messages[0].Message)
	assert.Equal(t, "second", history.Messages[1].Message)
	assert.Equal(t, alice.ID, history.Messages[0].User.UserID)

	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, "topic", f.notifier.sent[0].kind)
	assert.Equal(t, []string{"room_1"}, f.notifier.sent[0].targets)
	assert.Equal(t, notification.FlagChatRoom, f.notifier.sent[0].payload.Flag)
	assert.Equal(t, "Forum", f.notifier.sent[0].payload.Title)
}

func TestPostRoomMessage_Errors(t *testing.T) {
	f := newFixture(nil)
	alice := f.repo.addUser("Alice", "")
	ctx := context.Background()

	_, err := f.svc.PostRoomMessage(ctx, alice.ID, 42, "hi")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.PostRoomMessage(ctx, alice.ID, 1, " \t\n")
	assert.Equal(t, 400, apperror.MapErrorToStatus(err))

	f.repo.failSave = true
	_, err = f.svc.PostRoomMessage(ctx, alice.ID, 1, "hi")
	assert.ErrorIs(t, err, apperror.ErrPersistence)
	f.dispatch.Wait()
	assert.Empty(t, f.notifier.sent)
}

func TestPostRoomMessage_NotifierFailureIsNotFatal(t *testing.T) {
	f := newFixture(nil)
	f.notifier.err = errors.New("push gateway down")
	alice := f.repo.addUser("Alice", "")

	res, err := f.svc.PostRoomMessage(context.Background(), alice.ID, 1, "hi")
	require.NoError(t, err)
	f.dispatch.Wait()

	assert.NotNil(t, res.Message.MessageID)
	assert.Len(t, f.repo.messages, 1)
}

func TestPostDirectMessage(t *testing.T) {
	f := newFixture(nil)
	alice := f.repo.addUser("Alice", "")
	bob := f.repo.addUser("Bob", "bob-device")
	carol := f.repo.addUser("Carol", "")
	ctx := context.Background()

	res, err := f.svc.PostDirectMessage(ctx, alice.ID, bob.ID, "hey bob")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, *res.Message.RecipientID)

	_, err = f.svc.PostDirectMessage(ctx, alice.ID, carol.ID, "hey carol")
	require.NoError(t, err)

	_, err = f.svc.PostDirectMessage(ctx, alice.ID, uuid.New(), "anyone?")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	f.dispatch.Wait()

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, []string{"bob-device"}, f.notifier.sent[0].targets)
	assert.Equal(t, notification.FlagUser, f.notifier.sent[0].payload.Flag)

	conv := f.svc.GetConversation(ctx, bob.ID, alice.ID)
	require.Len(t, conv, 1)
	assert.Equal(t, "hey bob", conv[0].Message)
	assert.Empty(t, f.svc.GetConversation(ctx, bob.ID, carol.ID))
}

func TestBroadcast_IsEphemeral(t *testing.T) {
	f := newFixture(nil)
	alice := f.repo.addUser("Alice", "")
	bob := f.repo.addUser("Bob", "bob-device")
	carol := f.repo.addUser("Carol", "")
	dave := f.repo.addUser("Dave", "dave-device")

	res, err := f.svc.Broadcast(context.Background(), alice.ID, []uuid.UUID{bob.ID, carol.ID, dave.ID}, "party at 8")
	require.NoError(t, err)
	f.dispatch.Wait()

	assert.Nil(t, res.Message.MessageID)
	assert.Empty(t, f.repo.messages)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "multiple", f.notifier.sent[0].kind)
	assert.ElementsMatch(t, []string{"bob-device", "dave-device"}, f.notifier.sent[0].targets)

	_, err = f.svc.Broadcast(context.Background(), alice.ID, nil, "nobody")
	assert.Equal(t, 400, apperror.MapErrorToStatus(err))
}

func TestSendToAll_UsesGlobalTopic(t *testing.T) {
	f := newFixture(nil)
	alice := f.repo.addUser("Alice", "")

	_, err := f.svc.SendToAll(context.Background(), alice.ID, "hello world")
	require.NoError(t, err)
	f.dispatch.Wait()

	assert.Empty(t, f.repo.messages)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, []string{notification.GlobalTopic}, f.notifier.sent[0].targets)
}

func TestMessages_RateLimited(t *testing.T) {
	limiter := ratelimiter.New(&windowStore{keys: map[string]bool{}}, 2*time.Second)
	f := newFixture(limiter)
	alice := f.repo.addUser("Alice", "")
	bob := f.repo.addUser("Bob", "")
	ctx := context.Background()

	_, err := f.svc.PostRoomMessage(ctx, alice.ID, 1, "one")
	require.NoError(t, err)

	_, err = f.svc.PostRoomMessage(ctx, alice.ID, 1, "two")
	assert.Equal(t, 429, apperror.MapErrorToStatus(err))
	assert.Len(t, f.repo.messages, 1)

	_, err = f.svc.PostRoomMessage(ctx, bob.ID, 1, "bob is fine")
	assert.NoError(t, err)
}

func TestMessages_FailedSaveReleasesRateLimit(t *testing.T) {
	limiter := ratelimiter.New(&windowStore{keys: map[string]bool{}}, 2*time.Second)
	f := newFixture(limiter)
	alice := f.repo.addUser("Alice", "")
	ctx := context.Background()

	f.repo.failSave = true
	_, err := f.svc.PostRoomMessage(ctx, alice.ID, 1, "one")
	require.Error(t, err)

	f.repo.failSave = false
	_, err = f.svc.PostRoomMessage(ctx, alice.ID, 1, "retry")
	assert.NoError(t, err)
}

func TestMessages_FailedSenderLookupKeepsWindowFree(t *testing.T) {
	limiter := ratelimiter.New(&windowStore{keys: map[string]bool{}}, 2*time.Second)
	f := newFixture(limiter)
	alice := f.repo.addUser("Alice", "")
	ctx := context.Background()

	f.repo.failLookup = true
	_, err := f.svc.PostRoomMessage(ctx, alice.ID, 1, "one")
	assert.ErrorIs(t, err, apperror.ErrPersistence)
	_, err = f.svc.SendToAll(ctx, alice.ID, "two")
	assert.ErrorIs(t, err, apperror.ErrPersistence)

	f.repo.failLookup = false
	_, err = f.svc.PostRoomMessage(ctx, alice.ID, 1, "retry")
	assert.NoError(t, err)
}

func TestDirectMessage_BodyStoredAsSent(t *testing.T) {
	f := newFixture(nil)
	alice := f.repo.addUser("Alice", "")
	bob := f.repo.addUser("Bob", "")
	ctx := context.Background()

	for _, body := range []string{"a<b and c>d", "fix <div> layout", "  indent", "tom & jerry "} {
		_, err := f.svc.PostDirectMessage(ctx, alice.ID, bob.ID, body)
		require.NoError(t, err)
	}

	conv := f.svc.GetConversation(ctx, bob.ID, alice.ID)
	require.Len(t, conv, 4)
	assert.Equal(t, "a<b and c>d", conv[0].Message)
	assert.Equal(t, "fix <div> layout", conv[1].Message)
	assert.Equal(t, "  indent", conv[2].Message)
	assert.Equal(t, "tom & jerry ", conv[3].Message)
}
