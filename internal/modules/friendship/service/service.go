package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anoa.com/alumnihub/internal/entity"
	"anoa.com/alumnihub/internal/modules/friendship/dto"
	"anoa.com/alumnihub/internal/modules/friendship/repository"
	notification "anoa.com/alumnihub/internal/modules/notification/service"
	userDto "anoa.com/alumnihub/internal/modules/user/dto"
	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultSuggestionLimit = 20

var (
	errSelfRequest    = apperror.New(http.StatusBadRequest, "You cannot add yourself as a friend", apperror.ErrBadRequest)
	errAlreadyFriends = apperror.New(http.StatusConflict, "You are already friends", apperror.ErrConflict)
	errAlreadySent    = apperror.New(http.StatusConflict, "Friend request already sent", apperror.ErrConflict)
	errNoRequest      = apperror.New(http.StatusNotFound, "Friend request not found", apperror.ErrNotFound)
)

// UserFinder loads the other side of a friendship.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type FriendshipService interface {
	Request(ctx context.Context, userID, friendID uuid.UUID) (dto.Status, error)
	Accept(ctx context.Context, userID, friendID uuid.UUID) error
	ListAccepted(ctx context.Context, userID uuid.UUID) []userDto.UserSummary
	ListPending(ctx context.Context, userID uuid.UUID) []userDto.UserSummary
	ListSent(ctx context.Context, userID uuid.UUID) []userDto.UserSummary
	Suggest(ctx context.Context, userID uuid.UUID, limit int) []userDto.UserSummary
	Status(ctx context.Context, userID, otherID uuid.UUID) (dto.Status, error)
}

type friendshipService struct {
	repo       repository.FriendshipRepository
	users      UserFinder
	dispatcher *notification.Dispatcher
	pushTitle  string
}

func NewFriendshipService(repo repository.FriendshipRepository, users UserFinder, dispatcher *notification.Dispatcher, pushTitle string) FriendshipService {
	return &friendshipService{
		repo:       repo,
		users:      users,
		dispatcher: dispatcher,
		pushTitle:  pushTitle,
	}
}

func (s *friendshipService) findEdge(ctx context.Context, from, to uuid.UUID) (*entity.Friendship, error) {
	edge, err := s.repo.Find(ctx, from, to)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Persistence("An error occurred. Please try again", err)
	}
	return edge, nil
}

// Request sends a friend request. When the target already asked the caller,
// the request accepts theirs instead.
func (s *friendshipService) Request(ctx context.Context, userID, friendID uuid.UUID) (dto.Status, error) {
	if userID == friendID {
		return dto.StatusNone, errSelfRequest
	}

	target, err := s.users.FindByID(ctx, friendID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StatusNone, apperror.ErrNotFound
		}
		return dto.StatusNone, apperror.Persistence("An error occurred. Please try again", err)
	}

	out, err := s.findEdge(ctx, userID, friendID)
	if err != nil {
		return dto.StatusNone, err
	}
	if out != nil {
		if out.Accepted {
			return dto.StatusFriends, errAlreadyFriends
		}
		return dto.StatusPendingSent, errAlreadySent
	}

	in, err := s.findEdge(ctx, friendID, userID)
	if err != nil {
		return dto.StatusNone, err
	}
	if in != nil {
		if err := s.Accept(ctx, userID, friendID); err != nil {
			return dto.StatusNone, err
		}
		return dto.StatusFriends, nil
	}

	if err := s.repo.Create(ctx, &entity.Friendship{UserID: userID, FriendID: friendID}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StatusPendingSent, errAlreadySent
		}
		return dto.StatusNone, apperror.Persistence("Failed to send friend request. Please try again", err)
	}

	// Both users may have asked at the same time. The later of the two sees
	// the other's edge here and completes the friendship.
	in, err = s.findEdge(ctx, friendID, userID)
	if err != nil {
		return dto.StatusNone, err
	}
	if in != nil {
		if err := s.Accept(ctx, userID, friendID); err != nil {
			return dto.StatusNone, err
		}
		return dto.StatusFriends, nil
	}

	s.notifyRequest(ctx, userID, target)
	return dto.StatusPendingSent, nil
}

func (s *friendshipService) notifyRequest(ctx context.Context, fromID uuid.UUID, target *entity.User) {
	if !target.HasDevice() {
		return
	}
	from, err := s.users.FindByID(ctx, fromID)
	if err != nil {
		logger.WithField("user_id", fromID).WithError(err).Warn("failed to load requester for notification")
		return
	}

	s.dispatcher.ToDevice(*target.DeviceToken, notification.PushPayload{
		Title: s.pushTitle,
		Flag:  notification.FlagUser,
		Data: map[string]interface{}{
			"type": "friend_request",
			"user": userDto.NewUserSummary(from),
		},
		CreatedAt: time.Now(),
	})
}

// Accept is idempotent: accepting an already accepted request succeeds.
func (s *friendshipService) Accept(ctx context.Context, userID, friendID uuid.UUID) error {
	if userID == friendID {
		return errSelfRequest
	}
	if err := s.repo.Accept(ctx, userID, friendID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNoRequest
		}
		return apperror.Persistence("Failed to accept friend request. Please try again", err)
	}
	return nil
}

func (s *friendshipService) list(userID uuid.UUID, what string, users []*entity.User, err error) []userDto.UserSummary {
	if err != nil {
		logger.WithField("user_id", userID).WithError(err).Errorf("failed to list %s", what)
		return []userDto.UserSummary{}
	}
	return userDto.NewUserSummaries(users)
}

func (s *friendshipService) ListAccepted(ctx context.Context, userID uuid.UUID) []userDto.UserSummary {
	users, err := s.repo.ListAccepted(ctx, userID)
	return s.list(userID, "friends", users, err)
}

func (s *friendshipService) ListPending(ctx context.Context, userID uuid.UUID) []userDto.UserSummary {
	users, err := s.repo.ListPending(ctx, userID)
	return s.list(userID, "friend requests", users, err)
}

func (s *friendshipService) ListSent(ctx context.Context, userID uuid.UUID) []userDto.UserSummary {
	users, err := s.repo.ListSent(ctx, userID)
	return s.list(userID, "sent friend requests", users, err)
}

func (s *friendshipService) Suggest(ctx context.Context, userID uuid.UUID, limit int) []userDto.UserSummary {
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	users, err := s.repo.Suggest(ctx, userID, limit)
	return s.list(userID, "friend suggestions", users, err)
}

func (s *friendshipService) Status(ctx context.Context, userID, otherID uuid.UUID) (dto.Status, error) {
	out, err := s.findEdge(ctx, userID, otherID)
	if err != nil {
		return dto.StatusNone, err
	}
	in, err := s.findEdge(ctx, otherID, userID)
	if err != nil {
		return dto.StatusNone, err
	}

	switch {
	case (out != nil && out.Accepted) || (in != nil && in.Accepted):
		return dto.StatusFriends, nil
	case out != nil:
		return dto.StatusPendingSent, nil
	case in != nil:
		return dto.StatusPendingReceived, nil
	}
	return dto.StatusNone, nil
}
