package inbound

import (
	"context"
	"time"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type RefreshResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type MeResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type AuthUseCase interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	// Refresh exchanges a presented refresh token (already authenticated at
	// the boundary) for a new access token, revoking every other token the
	// user holds.
	Refresh(ctx context.Context, userID int64, refreshTokenID string) (*RefreshResponse, error)
	Logout(ctx context.Context, userID int64) error
	Me(ctx context.Context, userID int64) (*MeResponse, error)
}
