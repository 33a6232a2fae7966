package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	profileDto "anoa.com/alumnihub/internal/modules/profile/dto"
	profile "anoa.com/alumnihub/internal/modules/profile/service"
	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/response"
	"anoa.com/alumnihub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxPhotoSize = 5 << 20

var allowedPhotoExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

type ProfileHandler struct {
	profileService profile.ProfileService
}

func NewProfileHandler(profileService profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) RegisterInfo(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input profileDto.RegisterInfoInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	if err := h.profileService.UpsertDetail(c.Request.Context(), userID, input); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusCreated, "Your info successfully registered")
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input profileDto.UpdateProfileInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	if err := h.profileService.UpdateDetail(c.Request.Context(), userID, input); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Profile updated successfully")
}

func (h *ProfileHandler) UpdateEmail(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input profileDto.UpdateEmailInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	if err := h.profileService.UpdateEmail(c.Request.Context(), userID, input.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Email updated successfully")
}

func (h *ProfileHandler) GetMyInfo(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.profileService.GetMyInfo(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) GetShareInfo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound)
		return
	}

	res, err := h.profileService.GetShareInfo(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, &apperror.MissingFieldError{Fields: []string{"photo"}})
		return
	}
	if fileHeader.Size > maxPhotoSize {
		response.Error(c, apperror.New(http.StatusBadRequest, "Photo must be at most 5MB", apperror.ErrBadRequest))
		return
	}
	if !allowedPhotoExt[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
		response.Error(c, apperror.New(http.StatusBadRequest, "Photo must be a jpg, png or webp image", apperror.ErrBadRequest))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "Failed to read photo", apperror.ErrBadRequest))
		return
	}
	defer file.Close()

	url, err := h.profileService.UploadPhoto(c.Request.Context(), userID, &profileDto.PhotoFile{
		Reader:   file,
		FileName: fileHeader.Filename,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, profileDto.PhotoResponse{Error: false, Photo: url})
}
