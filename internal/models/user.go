package models

type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
