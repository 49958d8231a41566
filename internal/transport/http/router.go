package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"huddleup/internal/handler"
	"huddleup/internal/httputil"
	authmw "huddleup/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	CommentHandler      *handler.CommentHandler
	FriendHandler       *handler.FriendHandler
	MediaHandler        *handler.MediaHandler
	NotificationHandler *handler.NotificationHandler
	JWTSecret           string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	// Comment trees are readable anonymously; a token just adds the viewer's
	// like flags. The post route is registered before the bare {videoId}
	// route so "post" never parses as a video id.
	r.Route("/comments", func(r chi.Router) {
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/post/{postId}", cfg.CommentHandler.GetByPost)
		r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/{videoId:[0-9]+}", cfg.CommentHandler.GetByVideo)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		// Current user endpoints
		r.Get("/me", cfg.AuthHandler.Me)

		// Auth actions that require authentication
		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		// User discovery and avatar
		r.Get("/users", cfg.UserHandler.List)
		r.Post("/users/me/avatar", cfg.MediaHandler.UploadAvatar)

		// Comment writes
		r.Post("/comments", cfg.CommentHandler.Create)
		r.Delete("/comments/{id}", cfg.CommentHandler.Delete)
		r.Patch("/comments/{id}/like", cfg.CommentHandler.ToggleLike)

		// Friend request lifecycle
		r.Route("/friends", func(r chi.Router) {
			r.Get("/", cfg.FriendHandler.GetFriends)
			r.Get("/requests", cfg.FriendHandler.GetIncoming)
			r.Get("/sent", cfg.FriendHandler.GetSent)
			r.Post("/{id:[0-9]+}", cfg.FriendHandler.SendRequest)
			r.Post("/accept/{id}", cfg.FriendHandler.Accept)
			r.Post("/decline/{id}", cfg.FriendHandler.Decline)
			// Older clients call it reject
			r.Post("/reject/{id}", cfg.FriendHandler.Decline)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", cfg.NotificationHandler.List)
			r.Post("/read", cfg.NotificationHandler.MarkRead)
			r.Post("/read-all", cfg.NotificationHandler.MarkAllRead)
		})
	})

	return r
}
