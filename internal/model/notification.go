package model

import "time"

// Notification types
const (
	NotificationTypeCommentReply  = "comment_reply"
	NotificationTypeCommentLike   = "comment_like"
	NotificationTypeFriendRequest = "friend_request"
	NotificationTypeFriendAccept  = "friend_accept"
)

// Notification represents a single notification record in the database.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`         // Recipient
	ActorID   int64     `db:"actor_id" json:"actor_id"` // Who triggered it
	Type      string    `db:"type" json:"type"`
	CommentID *int64    `db:"comment_id" json:"comment_id,omitempty"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Joined field for display
	Actor *UserSummary `json:"actor,omitempty"`
}

// NotificationListResponse is the polling payload for the client.
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// MarkReadRequest is the request body for POST /notifications/read.
type MarkReadRequest struct {
	IDs []int64 `json:"ids"`
}
