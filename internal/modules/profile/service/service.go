package profile

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/alumnihub/internal/entity"
	profileDto "anoa.com/alumnihub/internal/modules/profile/dto"
	profileRepo "anoa.com/alumnihub/internal/modules/profile/repository"
	search "anoa.com/alumnihub/internal/modules/search/service"
	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/logger"
	"anoa.com/alumnihub/pkg/sanitize"
	"anoa.com/alumnihub/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const indexTimeout = 10 * time.Second

var (
	errUnknownReference = apperror.New(http.StatusBadRequest, "Unknown department or dormitory", apperror.ErrBadRequest)
	errNothingToUpdate  = apperror.New(http.StatusBadRequest, "Nothing to update", apperror.ErrBadRequest)
	errNoDetail         = apperror.New(http.StatusNotFound, "Please complete your info first", apperror.ErrNotFound)
	errPhotoDisabled    = apperror.New(http.StatusServiceUnavailable, "Photo upload is not available", storage.ErrStorageDisabled)
)

// UserReader loads a user together with its detail.
type UserReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type ProfileService interface {
	UpsertDetail(ctx context.Context, userID uuid.UUID, input profileDto.RegisterInfoInput) error
	UpdateDetail(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput) error
	UpdateEmail(ctx context.Context, userID uuid.UUID, email string) error
	GetMyInfo(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error)
	GetShareInfo(ctx context.Context, userID uuid.UUID) (*profileDto.ShareInfoResponse, error)
	UploadPhoto(ctx context.Context, userID uuid.UUID, photo *profileDto.PhotoFile) (string, error)
}

type profileService struct {
	repo         profileRepo.ProfileRepository
	users        UserReader
	imageStorage storage.ImageStorage
	index        search.UserIndex
	photoFolder  string
}

func NewProfileService(
	repo profileRepo.ProfileRepository,
	users UserReader,
	imageStorage storage.ImageStorage,
	index search.UserIndex,
	photoFolder string,
) ProfileService {
	return &profileService{
		repo:         repo,
		users:        users,
		imageStorage: imageStorage,
		index:        index,
		photoFolder:  photoFolder,
	}
}

func (s *profileService) UpsertDetail(ctx context.Context, userID uuid.UUID, input profileDto.RegisterInfoInput) error {
	gender := strings.ToUpper(strings.TrimSpace(input.Gender))
	year := input.GraduationYear
	departmentID := input.DepartmentID
	dormitoryID := input.DormitoryID

	detail := &entity.UserDetail{
		UserID:         userID,
		Gender:         &gender,
		GraduationYear: &year,
		DepartmentID:   &departmentID,
		DormitoryID:    &dormitoryID,
	}
	if err := s.repo.UpsertDetail(ctx, detail); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return errUnknownReference
		}
		return apperror.Persistence("Oops! An error occurred while registering info", err)
	}

	s.reindex(userID)
	return nil
}

func (s *profileService) UpdateDetail(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput) error {
	if !input.HasChanges() {
		return errNothingToUpdate
	}

	fields := map[string]interface{}{}
	set := func(column string, value *string) {
		if value != nil {
			fields[column] = sanitize.Text(*value)
		}
	}
	set("bio", input.Bio)
	set("profession", input.Profession)
	set("skills", input.Skills)
	set("awards", input.Awards)
	set("interests", input.Interests)
	set("recommendations", input.References)
	set("phone", input.Phone)

	updated, err := s.repo.UpdateDetail(ctx, userID, fields)
	if err != nil {
		return apperror.Persistence("Failed to update profile. Please try again", err)
	}
	if !updated {
		return errNoDetail
	}

	s.reindex(userID)
	return nil
}

func (s *profileService) UpdateEmail(ctx context.Context, userID uuid.UUID, email string) error {
	email = strings.TrimSpace(email)

	updated, err := s.repo.UpdateEmail(ctx, userID, email)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.ErrAlreadyExists
		}
		return apperror.Persistence("Failed to update email. Please try again", err)
	}
	if !updated {
		return apperror.ErrNotFound
	}

	s.reindex(userID)
	return nil
}

func (s *profileService) load(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Persistence("An error occurred. Please try again", err)
	}
	return user, nil
}

// GetMyInfo is not found until the user has registered their info.
func (s *profileService) GetMyInfo(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Detail == nil {
		return nil, apperror.ErrNotFound
	}

	res := profileDto.NewProfileResponse(user)
	return &res, nil
}

func (s *profileService) GetShareInfo(ctx context.Context, userID uuid.UUID) (*profileDto.ShareInfoResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Detail == nil {
		return nil, apperror.ErrNotFound
	}

	res := profileDto.NewShareInfoResponse(user)
	return &res, nil
}

// UploadPhoto stores the new photo, then removes the previous one. Removal
// failures are only logged.
func (s *profileService) UploadPhoto(ctx context.Context, userID uuid.UUID, photo *profileDto.PhotoFile) (string, error) {
	if s.imageStorage == nil {
		return "", errPhotoDisabled
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}
	var oldPhoto string
	if user.Detail != nil && user.Detail.Photo != nil {
		oldPhoto = *user.Detail.Photo
	}

	url, err := s.imageStorage.UploadImage(ctx, photo.Reader, s.photoFolder, photo.FileName)
	if err != nil {
		return "", apperror.Persistence("Failed to upload photo. Please try again", err)
	}

	if err := s.repo.UpsertPhoto(ctx, userID, url); err != nil {
		s.deletePhoto(ctx, userID, url)
		return "", apperror.Persistence("Failed to upload photo. Please try again", err)
	}

	if oldPhoto != "" && oldPhoto != url {
		s.deletePhoto(ctx, userID, oldPhoto)
	}

	s.reindex(userID)
	return url, nil
}

func (s *profileService) deletePhoto(ctx context.Context, userID uuid.UUID, url string) {
	if err := s.imageStorage.DeleteImage(ctx, url); err != nil {
		logger.WithFields(map[string]interface{}{"user_id": userID, "photo": url}).
			WithError(err).Warn("failed to delete photo")
	}
}

// reindex refreshes the search document off the request path.
func (s *profileService) reindex(userID uuid.UUID) {
	if s.index == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()

		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			logger.WithField("user_id", userID).WithError(err).Warn("failed to load user for indexing")
			return
		}
		if err := s.index.IndexUser(ctx, user); err != nil {
			logger.WithField("user_id", userID).WithError(err).Warn("failed to index user")
		}
	}()
}
