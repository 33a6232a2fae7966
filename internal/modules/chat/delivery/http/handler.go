package handler

import (
	"net/http"
	"strconv"
	"strings"

	chatDto "anoa.com/alumnihub/internal/modules/chat/dto"
	chat "anoa.com/alumnihub/internal/modules/chat/service"
	"anoa.com/alumnihub/pkg/apperror"
	"anoa.com/alumnihub/pkg/response"
	"anoa.com/alumnihub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// The sender of every message is the authenticated user. A user_id field in
// the body is ignored.
type ChatHandler struct {
	service chat.ChatService
}

func NewChatHandler(service chat.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

func parseRoomID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, apperror.ErrNotFound)
		return 0, false
	}
	return uint(id), true
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// parseRecipients reads a comma separated id list. Blank entries are skipped.
func parseRecipients(csv string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]struct{})
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, apperror.New(http.StatusBadRequest, "Invalid recipient id: "+part, apperror.ErrBadRequest)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func (h *ChatHandler) ListRooms(c *gin.Context) {
	rooms := h.service.ListRooms(c.Request.Context())
	c.JSON(http.StatusOK, chatDto.ChatRoomListResponse{Error: false, ChatRooms: rooms})
}

func (h *ChatHandler) GetRoom(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	history, err := h.service.GetRoomHistory(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *ChatHandler) PostRoomMessage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	var input chatDto.PostMessageInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	res, err := h.service.PostRoomMessage(c.Request.Context(), userID, roomID, input.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ChatHandler) PostDirectMessage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	toID, ok := parseUserID(c)
	if !ok {
		return
	}

	var input chatDto.PostMessageInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	res, err := h.service.PostDirectMessage(c.Request.Context(), userID, toID, input.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ChatHandler) Broadcast(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input chatDto.BroadcastInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	toIDs, err := parseRecipients(input.To)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.Broadcast(c.Request.Context(), userID, toIDs, input.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ChatHandler) SendToAll(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input chatDto.PostMessageInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.Translate(err))
		return
	}

	res, err := h.service.SendToAll(c.Request.Context(), userID, input.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ChatHandler) GetConversation(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	otherID, ok := parseUserID(c)
	if !ok {
		return
	}

	messages := h.service.GetConversation(c.Request.Context(), userID, otherID)
	c.JSON(http.StatusOK, chatDto.MessageListResponse{Error: false, Messages: messages})
}
