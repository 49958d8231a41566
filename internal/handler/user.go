package handler

import (
	"net/http"
	"strconv"

	"huddleup/internal/httputil"
	"huddleup/internal/model"
	"huddleup/internal/service"
	"huddleup/internal/transport/http/middleware"
)

// UserHandler exposes user discovery endpoints.
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List returns other users with the caller's relationship to each.
// GET /users?limit=50
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	users, err := h.userService.ListUsers(r.Context(), userID, limit)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to list users")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.UserListResponse{Users: users})
}
