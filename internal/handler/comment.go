package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"huddleup/internal/httputil"
	"huddleup/internal/model"
	"huddleup/internal/service"
	"huddleup/internal/transport/http/middleware"
)

// CommentHandler exposes comment and reply endpoints.
type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create handles posting a comment or reply.
// POST /comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrContentRequired):
			httputil.WriteBadRequest(w, "Comment text is required")
		case errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, "Comment text exceeds maximum length")
		case errors.Is(err, model.ErrTargetRequired):
			httputil.WriteBadRequest(w, "Comment must target a post or a video")
		case errors.Is(err, model.ErrBothTargets):
			httputil.WriteBadRequest(w, "Comment target is ambiguous")
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Parent comment not found")
		default:
			httputil.WriteInternalError(w, "Failed to create comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// Delete handles removing a comment. Only the author may delete, and replies
// are left in place.
// DELETE /comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	commentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid comment id")
		return
	}

	if err := h.commentService.Delete(r.Context(), commentID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		case errors.Is(err, model.ErrNotCommentOwner):
			httputil.WriteForbidden(w, "You can only delete your own comments")
		default:
			httputil.WriteInternalError(w, "Failed to delete comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Comment deleted",
	})
}

// ToggleLike flips the caller's like on a comment.
// PATCH /comments/{id}/like
func (h *CommentHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	commentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid comment id")
		return
	}

	result, err := h.commentService.ToggleLike(r.Context(), commentID, userID)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			httputil.WriteNotFound(w, "Comment not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to toggle like")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetByPost returns the nested comment tree for a post.
// GET /comments/post/{postId}
func (h *CommentHandler) GetByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "postId"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post id")
		return
	}

	tree, err := h.commentService.GetTreeByPost(r.Context(), postID, viewerID(r))
	if err != nil {
		httputil.WriteInternalError(w, "Failed to get comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tree)
}

// GetByVideo returns the nested comment tree for a video.
// GET /comments/{videoId}
func (h *CommentHandler) GetByVideo(w http.ResponseWriter, r *http.Request) {
	videoID, err := strconv.ParseInt(chi.URLParam(r, "videoId"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid video id")
		return
	}

	tree, err := h.commentService.GetTreeByVideo(r.Context(), videoID, viewerID(r))
	if err != nil {
		httputil.WriteInternalError(w, "Failed to get comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tree)
}

// viewerID returns a pointer to the authenticated user's id, or nil for
// anonymous requests.
func viewerID(r *http.Request) *int64 {
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		return &id
	}
	return nil
}
