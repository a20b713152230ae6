package dto

import authdomain "recommend-backend/internal/auth/domain"

type SessionResponse struct {
	Success bool `json:"success"`
}

type MeResponse struct {
	User authdomain.Claims `json:"user"`
}
