package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"huddleup/internal/config"
	"huddleup/internal/httputil"
	"huddleup/internal/model"
	"huddleup/internal/service"
	"huddleup/internal/transport/http/middleware"
)

// MediaHandler exposes avatar upload for the current user.
type MediaHandler struct {
	mediaService *service.MediaService
	userService  *service.UserService
	config       *config.Config
}

func NewMediaHandler(mediaService *service.MediaService, userService *service.UserService, cfg *config.Config) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		userService:  userService,
		config:       cfg,
	}
}

// UploadAvatar replaces the caller's avatar. The previous object is deleted
// from storage unless it is the shared default.
// POST /users/me/avatar
func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	maxFormSize := int64(model.MaxAvatarSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Avatar exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		httputil.WriteBadRequest(w, "Avatar file is required")
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadAvatar(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Avatar exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		default:
			httputil.WriteInternalError(w, "Failed to upload avatar")
		}
		return
	}

	oldKey, err := h.userService.UpdateAvatar(r.Context(), userID, upload.URL, upload.Key)
	if err != nil {
		// The new object is orphaned now; clean it up best-effort.
		if delErr := h.mediaService.DeleteObject(r.Context(), upload.Key); delErr != nil {
			log.Printf("[MediaHandler] Failed to clean up orphaned avatar %s: %v", upload.Key, delErr)
		}
		httputil.WriteInternalError(w, "Failed to update avatar")
		return
	}

	if oldKey != nil && *oldKey != h.config.DefaultAvatarKey {
		if err := h.mediaService.DeleteObject(r.Context(), *oldKey); err != nil {
			log.Printf("[MediaHandler] Failed to delete old avatar %s: %v", *oldKey, err)
		}
	}

	httputil.WriteJSON(w, http.StatusOK, upload)
}
