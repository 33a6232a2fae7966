package handler

import (
	"net/http"

	friendshipDto "anoa.com/alumnihub/internal/modules/friendship/dto"
	friendship "anoa.com/alumnihub/internal/modules/friendship/service"
	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/response"
	"anoa.com/alumnihub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FriendshipHandler struct {
	service friendship.FriendshipService
}

func NewFriendshipHandler(service friendship.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{service: service}
}

// pair returns the caller and the user named in the path.
func pair(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	otherID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, otherID, true
}

func (h *FriendshipHandler) Request(c *gin.Context) {
	userID, friendID, ok := pair(c)
	if !ok {
		return
	}

	status, err := h.service.Request(c.Request.Context(), userID, friendID)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Friend request sent"
	code := http.StatusCreated
	if status == friendshipDto.StatusFriends {
		message = "Friend request accepted"
		code = http.StatusOK
	}
	c.JSON(code, friendshipDto.StatusResponse{Error: false, Message: message, Status: status})
}

func (h *FriendshipHandler) Accept(c *gin.Context) {
	userID, friendID, ok := pair(c)
	if !ok {
		return
	}

	if err := h.service.Accept(c.Request.Context(), userID, friendID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, friendshipDto.StatusResponse{
		Error:   false,
		Message: "Friend request accepted",
		Status:  friendshipDto.StatusFriends,
	})
}

func (h *FriendshipHandler) Status(c *gin.Context) {
	userID, otherID, ok := pair(c)
	if !ok {
		return
	}

	status, err := h.service.Status(c.Request.Context(), userID, otherID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, friendshipDto.StatusResponse{Error: false, Status: status})
}

func (h *FriendshipHandler) ListFriends(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	friends := h.service.ListAccepted(c.Request.Context(), userID)
	c.JSON(http.StatusOK, friendshipDto.FriendListResponse{Error: false, Friends: friends})
}

func (h *FriendshipHandler) ListRequests(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	requests := h.service.ListPending(c.Request.Context(), userID)
	c.JSON(http.StatusOK, friendshipDto.RequestListResponse{Error: false, Requests: requests})
}

func (h *FriendshipHandler) ListSent(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	requests := h.service.ListSent(c.Request.Context(), userID)
	c.JSON(http.StatusOK, friendshipDto.RequestListResponse{Error: false, Requests: requests})
}

func (h *FriendshipHandler) Suggestions(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var query friendshipDto.SuggestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	suggestions := h.service.Suggest(c.Request.Context(), userID, query.Limit)
	c.JSON(http.StatusOK, friendshipDto.SuggestionListResponse{Error: false, Suggestions: suggestions})
}
