package dto

import "time"

type RegisterInput struct {
	Name     string `json:"name" form:"name" binding:"required,notblank,max=250"`
	Email    string `json:"email" form:"email" binding:"required,notblank,email,max=255"`
	Password string `json:"password" form:"password" binding:"required,notblank,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" form:"email" binding:"required,notblank"`
	Password string `json:"password" form:"password" binding:"required,notblank"`
}

type LoginResponse struct {
	Error     bool      `json:"error"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	APIKey    string    `json:"apiKey"`
	CreatedAt time.Time `json:"createdAt"`
}

type DeviceTokenInput struct {
	Token string `json:"gcm_registration_id" form:"gcm_registration_id" binding:"required,notblank"`
}

type APIKeyResponse struct {
	Error  bool   `json:"error"`
	APIKey string `json:"apiKey"`
}
