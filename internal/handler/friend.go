package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"huddleup/internal/httputil"
	"huddleup/internal/model"
	"huddleup/internal/service"
	"huddleup/internal/transport/http/middleware"
)

// FriendHandler exposes the friend request lifecycle endpoints.
type FriendHandler struct {
	friendService *service.FriendService
}

func NewFriendHandler(friendService *service.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// SendRequest sends a friend request to the user in the path.
// POST /friends/{id}
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user id")
		return
	}

	if err := h.friendService.SendRequest(r.Context(), userID, targetID); err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFriendSelf):
			httputil.WriteBadRequest(w, "Cannot send a friend request to yourself")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrAlreadyFriends):
			httputil.WriteConflict(w, "You are already friends")
		case errors.Is(err, model.ErrRequestAlreadyPending):
			httputil.WriteConflict(w, "A friend request is already pending")
		default:
			httputil.WriteInternalError(w, "Failed to send friend request")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Friend request sent",
	})
}

// Accept confirms a pending request from the user in the path.
// POST /friends/accept/{id}
func (h *FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	requesterID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user id")
		return
	}

	if err := h.friendService.Accept(r.Context(), userID, requesterID); err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrNoPendingRequest):
			// Accepting without a pending request is an invalid state
			// transition, same bucket as a duplicate send.
			httputil.WriteConflict(w, "No pending friend request from this user")
		default:
			httputil.WriteInternalError(w, "Failed to accept friend request")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Friend request accepted",
	})
}

// Decline discards a pending request from the user in the path. Declining a
// request that does not exist still succeeds.
// POST /friends/decline/{id}
func (h *FriendHandler) Decline(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	requesterID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user id")
		return
	}

	if err := h.friendService.Decline(r.Context(), userID, requesterID); err != nil {
		httputil.WriteInternalError(w, "Failed to decline friend request")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Friend request declined",
	})
}

// GetFriends lists the caller's confirmed friends.
// GET /friends
func (h *FriendHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.friendService.GetFriends(r.Context(), userID)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to get friends")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// GetIncoming lists pending requests addressed to the caller.
// GET /friends/requests
func (h *FriendHandler) GetIncoming(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.friendService.GetIncoming(r.Context(), userID)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to get friend requests")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// GetSent lists pending requests the caller has sent.
// GET /friends/sent
func (h *FriendHandler) GetSent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.friendService.GetSent(r.Context(), userID)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to get sent requests")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
