package dto

import "github.com/hongminglow/campus-connect/internal/models"

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both signup and login.
type AuthResponse struct {
	Message string         `json:"message"`
	Token   string         `json:"token"`
	User    models.Profile `json:"user"`
}

// MeResponse echoes the identity the auth gate attached to the request.
type MeResponse struct {
	ID    int64       `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}
