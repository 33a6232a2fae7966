package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"anoa.com/alumnihub/internal/entity"
	search "anoa.com/alumnihub/internal/modules/search/service"
	"anoa.com/alumnihub/internal/modules/user/dto"
	"anoa.com/alumnihub/internal/modules/user/repository"
	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/hasher"
	"anoa.com/alumnihub/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultSearchLimit = 20

// AuthService owns registration, login and the API key gate.
type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error)
	Authenticate(ctx context.Context, apiKey string) (uuid.UUID, error)
	UpdateDeviceToken(ctx context.Context, userID uuid.UUID, token string) error
	RotateAPIKey(ctx context.Context, userID uuid.UUID) (string, error)
}

// UserService serves the user directory.
type UserService interface {
	ListUsers(ctx context.Context, viewerID uuid.UUID) []dto.UserSummary
	GetIDByEmail(ctx context.Context, email string) (*dto.UserIDResponse, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]dto.UserSummary, error)
}

// NewAPIKey returns an opaque key backed by 122 random bits (UUIDv4).
func NewAPIKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

type authService struct {
	repo       repository.UserRepository
	hasher     hasher.Hasher
	index      search.UserIndex
	newAPIKey  func() string
	indexAfter time.Duration
}

func NewAuthService(repo repository.UserRepository, h hasher.Hasher, index search.UserIndex) AuthService {
	return &authService{
		repo:       repo,
		hasher:     h,
		index:      index,
		newAPIKey:  NewAPIKey,
		indexAfter: 10 * time.Second,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*entity.User, error) {
	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperror.Persistence("Oops! An error occurred while registering", err)
	}
	if exists {
		return nil, apperror.ErrAlreadyExists
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperror.Persistence("Oops! An error occurred while registering", err)
	}

	user := &entity.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: passwordHash,
		APIKey:       s.newAPIKey(),
		Status:       entity.UserStatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Either a concurrent registration took the email or the api key
			// collided. Only the former is reported as a conflict.
			if taken, checkErr := s.repo.ExistsByEmail(ctx, input.Email); checkErr == nil && taken {
				return nil, apperror.ErrAlreadyExists
			}
		}
		return nil, apperror.Persistence("Oops! An error occurred while registering", err)
	}

	s.indexAsync(user)
	return user, nil
}

func (s *authService) indexAsync(user *entity.User) {
	if s.index == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.indexAfter)
		defer cancel()
		if err := s.index.IndexUser(ctx, user); err != nil {
			logger.WithField("user_id", user.ID).WithError(err).Warn("failed to index user")
		}
	}()
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Persistence("An error occurred. Please try again", err)
	}

	if !s.hasher.Verify(user.PasswordHash, input.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	return &dto.LoginResponse{
		Error:     false,
		Name:      user.Name,
		Email:     user.Email,
		APIKey:    user.APIKey,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, apiKey string) (uuid.UUID, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return uuid.Nil, apperror.ErrMissingAPIKey
	}

	user, err := s.repo.FindByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apperror.ErrInvalidAPIKey
		}
		return uuid.Nil, apperror.Persistence("An error occurred. Please try again", err)
	}

	return user.ID, nil
}

func (s *authService) UpdateDeviceToken(ctx context.Context, userID uuid.UUID, token string) error {
	updated, err := s.repo.UpdateDeviceToken(ctx, userID, strings.TrimSpace(token))
	if err != nil {
		return apperror.Persistence("Failed to update GCM registration ID", err)
	}
	if !updated {
		return apperror.ErrNotFound
	}
	return nil
}

func (s *authService) RotateAPIKey(ctx context.Context, userID uuid.UUID) (string, error) {
	key := s.newAPIKey()
	updated, err := s.repo.UpdateAPIKey(ctx, userID, key)
	if err != nil {
		return "", apperror.Persistence("Failed to regenerate api key", err)
	}
	if !updated {
		return "", apperror.ErrNotFound
	}
	return key, nil
}

type userService struct {
	repo  repository.UserRepository
	index search.UserIndex
}

func NewUserService(repo repository.UserRepository, index search.UserIndex) UserService {
	return &userService{repo: repo, index: index}
}

// ListUsers returns every user except the viewer. A failed read yields an
// empty directory.
func (s *userService) ListUsers(ctx context.Context, viewerID uuid.UUID) []dto.UserSummary {
	users, err := s.repo.FindAllExcept(ctx, viewerID)
	if err != nil {
		logger.WithField("user_id", viewerID).WithError(err).Error("failed to list users")
		return []dto.UserSummary{}
	}
	return dto.NewUserSummaries(users)
}

func (s *userService) GetIDByEmail(ctx context.Context, email string) (*dto.UserIDResponse, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Persistence("An error occurred. Please try again", err)
	}
	return &dto.UserIDResponse{Error: false, ID: user.ID, Email: user.Email}, nil
}

func (s *userService) SearchUsers(ctx context.Context, query string, limit int) ([]dto.UserSummary, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	query = strings.TrimSpace(query)

	if s.index != nil {
		ids, err := s.index.SearchUsers(ctx, query, limit)
		if err == nil {
			return s.loadInOrder(ctx, ids)
		}
		logger.WithField("query", query).WithError(err).Warn("search index unavailable, falling back to database")
	}

	users, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, apperror.Persistence("An error occurred. Please try again", err)
	}
	return dto.NewUserSummaries(users), nil
}

func (s *userService) loadInOrder(ctx context.Context, ids []uuid.UUID) ([]dto.UserSummary, error) {
	users, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Persistence("An error occurred. Please try again", err)
	}

	byID := make(map[uuid.UUID]*entity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]dto.UserSummary, 0, len(users))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, dto.NewUserSummary(u))
		}
	}
	return out, nil
}
