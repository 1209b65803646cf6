package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/userdesk/userdesk/application/port/inbound"
	"github.com/userdesk/userdesk/application/port/outbound"
	"github.com/userdesk/userdesk/application/usecase/auth"
	"github.com/userdesk/userdesk/infrastructure/http/middleware"
	"github.com/userdesk/userdesk/infrastructure/http/response"
	"github.com/userdesk/userdesk/infrastructure/http/validator"
	"github.com/userdesk/userdesk/pkg/apperror"
)

type AuthHandler struct {
	authUseCase inbound.AuthUseCase
}

func NewAuthHandler(authUseCase inbound.AuthUseCase) *AuthHandler {
	return &AuthHandler{authUseCase: authUseCase}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req inbound.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	// Shape failures on login report 401, same as a credential mismatch path.
	if !validator.ValidateEmail(req.Email) {
		response.Unauthorized(w, "Invalid email format")
		return
	}
	if !validator.ValidateRequired(req.Password) {
		response.Unauthorized(w, "Password is required")
		return
	}

	ctx := context.WithValue(r.Context(), "client_ip", middleware.GetClientIP(r))

	res, err := h.authUseCase.Login(ctx, req)
	if err != nil {
		var vErr *apperror.ValidationError
		switch {
		case errors.As(err, &vErr):
			response.Unauthorized(w, vErr.Error())
		case errors.Is(err, auth.ErrInvalidCredentials):
			response.Unauthorized(w, "Email or password wrong")
		case strings.Contains(err.Error(), "too many login attempts"):
			response.Error(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		default:
			response.InternalServerError(w, "Internal server error")
		}
		return
	}

	response.Success(w, http.StatusOK, "success", res)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	me, err := h.authUseCase.Me(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			response.Unauthorized(w, "Unauthorized")
			return
		}
		response.InternalServerError(w, "Internal server error")
		return
	}

	response.Success(w, http.StatusOK, "success", me)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "Refresh token required")
		return
	}

	res, err := h.authUseCase.Refresh(r.Context(), claims.UserID, claims.TokenID)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshTokenMissing) {
			response.Unauthorized(w, "Refresh token not found")
			return
		}
		response.InternalServerError(w, "Internal server error")
		return
	}

	response.Success(w, http.StatusOK, "success", res)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "Authorization header required")
		return
	}

	if err := h.authUseCase.Logout(r.Context(), claims.UserID); err != nil {
		response.InternalServerError(w, "Internal server error")
		return
	}

	response.Success(w, http.StatusOK, "User logout successful.", nil)
}
