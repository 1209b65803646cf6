package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/userdesk/userdesk/application/port/inbound"
	"github.com/userdesk/userdesk/application/port/outbound"
	"github.com/userdesk/userdesk/infrastructure/http/middleware"
	"github.com/userdesk/userdesk/infrastructure/http/response"
	"github.com/userdesk/userdesk/pkg/apperror"
)

type UserHandler struct {
	userManagement inbound.UserManagementUseCase
}

func NewUserHandler(userManagement inbound.UserManagementUseCase) *UserHandler {
	return &UserHandler{userManagement: userManagement}
}

// RegisterRoutes mounts the user management endpoints. Everything requires an
// authenticated access token; the per-operation access level is enforced
// inside the use case.
func (h *UserHandler) RegisterRoutes(router *mux.Router, authMiddleware *middleware.AuthMiddleware) {
	router.HandleFunc("/api/users", authMiddleware.RequireAuth(h.List)).Methods(http.MethodGet)
	router.HandleFunc("/api/users", authMiddleware.RequireAuth(h.Create)).Methods(http.MethodPost)
	router.HandleFunc("/api/users/{id:[0-9]+}", authMiddleware.RequireAuth(h.Get)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id:[0-9]+}", authMiddleware.RequireAuth(h.Update)).Methods(http.MethodPut)
	router.HandleFunc("/api/users/{id:[0-9]+}", authMiddleware.RequireAuth(h.Delete)).Methods(http.MethodDelete)
	router.HandleFunc("/api/pages", authMiddleware.RequireAuth(h.Pages)).Methods(http.MethodGet)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}

	res, err := h.userManagement.ListUsers(r.Context(), actorID)
	if err != nil {
		h.writeError(w, err, "Unauthorized to view users.", "Not Found", "Failed to list users")
		return
	}

	response.Success(w, http.StatusOK, "success", res)
}

func (h *UserHandler) Pages(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}

	rows, err := h.userManagement.ListPages(r.Context(), actorID)
	if err != nil {
		h.writeError(w, err, "Unauthorized to view pages.", "Not Found", "Failed to list pages")
		return
	}

	response.Success(w, http.StatusOK, "success", rows)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	res, err := h.userManagement.GetUser(r.Context(), actorID, userID)
	if err != nil {
		h.writeError(w, err, "Unauthorized to view user.", "User not found", "Failed to get user")
		return
	}

	response.Success(w, http.StatusOK, "success", res)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}

	var payload inbound.UserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userManagement.CreateUser(r.Context(), actorID, payload)
	if err != nil {
		h.writeError(w, err, "Unauthorized to add a new user.", "User not found", "Failed to add user or permissions")
		return
	}

	response.Success(w, http.StatusOK, "Success, User added successfully", user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	var payload inbound.UserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userManagement.UpdateUser(r.Context(), actorID, userID, payload)
	if err != nil {
		h.writeError(w, err, "Unauthorized to update the user.", "User not found", "Failed to update user or permissions")
		return
	}

	response.Success(w, http.StatusOK, "Success, User updated successfully", user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.userManagement.DeleteUser(r.Context(), actorID, userID); err != nil {
		h.writeError(w, err, "Unauthorized to delete user.", "User not found", "Failed to delete user")
		return
	}

	response.Success(w, http.StatusOK, "User deleted successfully", nil)
}

func (h *UserHandler) writeError(w http.ResponseWriter, err error, forbiddenMsg, notFoundMsg, failureMsg string) {
	var vErr *apperror.ValidationError
	var pErr *apperror.UnknownPagesError

	switch {
	case errors.Is(err, apperror.ErrForbidden):
		response.Forbidden(w, forbiddenMsg)
	case errors.As(err, &vErr):
		response.ValidationErrors(w, vErr.Errors)
	case errors.As(err, &pErr):
		response.ValidationErrors(w, []string{pErr.Error()})
	case errors.Is(err, outbound.ErrUserAlreadyExists):
		response.ValidationErrors(w, []string{"email already exists"})
	case errors.Is(err, outbound.ErrUserNotFound):
		response.NotFound(w, notFoundMsg)
	default:
		response.InternalServerError(w, failureMsg)
	}
}

func actor(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims := middleware.GetUserClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "Unauthorized")
		return 0, false
	}
	return claims.UserID, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "User ID must be a positive integer")
		return 0, false
	}
	return id, true
}
