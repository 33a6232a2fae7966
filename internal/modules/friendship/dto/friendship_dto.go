package dto

import userDto "anoa.com/alumnihub/internal/modules/user/dto"

// Status of the relationship between the viewer and another user.
type Status string

const (
	StatusNone            Status = "none"
	StatusPendingSent     Status = "pending_sent"
	StatusPendingReceived Status = "pending_received"
	StatusFriends         Status = "friends"
)

type FriendListResponse struct {
	Error   bool                  `json:"error"`
	Friends []userDto.UserSummary `json:"friends"`
}

type RequestListResponse struct {
	Error    bool                  `json:"error"`
	Requests []userDto.UserSummary `json:"requests"`
}

type SuggestionListResponse struct {
	Error       bool                  `json:"error"`
	Suggestions []userDto.UserSummary `json:"suggestions"`
}

type StatusResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message,omitempty"`
	Status  Status `json:"status"`
}

type SuggestQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
