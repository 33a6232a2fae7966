package handler

import (
	"net/http"

	userDto "anoa.com/alumnihub/internal/modules/user/dto"
	user "anoa.com/alumnihub/internal/modules/user/service"
	"anoa.com/alumnihub/pkg/response"
	"anoa.com/alumnihub/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService user.AuthService
}

func NewAuthHandler(authService user.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input userDto.RegisterInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	if _, err := h.authService.Register(c.Request.Context(), input); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusCreated, "You are successfully registered")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input userDto.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) UpdateDeviceToken(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input userDto.DeviceTokenInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	if err := h.authService.UpdateDeviceToken(c.Request.Context(), userID, input.Token); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "GCM registration ID updated successfully")
}

func (h *AuthHandler) RotateAPIKey(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	key, err := h.authService.RotateAPIKey(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, userDto.APIKeyResponse{Error: false, APIKey: key})
}

type UserHandler struct {
	userService user.UserService
}

func NewUserHandler(userService user.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	users := h.userService.ListUsers(c.Request.Context(), userID)
	c.JSON(http.StatusOK, userDto.UserListResponse{Error: false, Users: users})
}

func (h *UserHandler) GetIDByEmail(c *gin.Context) {
	res, err := h.userService.GetIDByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *UserHandler) Search(c *gin.Context) {
	var query userDto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	users, err := h.userService.SearchUsers(c.Request.Context(), query.Q, query.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, userDto.UserListResponse{Error: false, Users: users})
}
