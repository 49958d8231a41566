package repository

import (
	"context"
	"time"

	"huddleup/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ListOthers returns every user except the given one, for discovery.
	ListOthers(ctx context.Context, excludeID int64, limit int) ([]model.UserSummary, error)
	UpdateAvatar(ctx context.Context, userID int64, avatarURL, avatarKey string) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, userID int64, content string, postID, videoID, parentID *int64) (*model.Comment, error)
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
	// Delete removes the single comment row (no cascade to replies) and
	// returns the target it was attached to. Only the owner may delete.
	Delete(ctx context.Context, commentID, userID int64) (postID, videoID *int64, err error)
	// GetFlatByPost / GetFlatByVideo return all comments for a target,
	// newest first, with author and like info joined. viewerID controls
	// the liked_by_me flag and may be nil.
	GetFlatByPost(ctx context.Context, postID int64, viewerID *int64) ([]model.Comment, error)
	GetFlatByVideo(ctx context.Context, videoID int64, viewerID *int64) ([]model.Comment, error)
	// ToggleLike flips the (comment, user) like state in one transaction
	// and returns the resulting count and state.
	ToggleLike(ctx context.Context, commentID, userID int64) (likes int, liked bool, err error)
}

type FriendRepository interface {
	// SendRequest inserts the pending pair row. Returns
	// model.ErrAlreadyFriends or model.ErrRequestAlreadyPending when a
	// relationship already exists in either direction.
	SendRequest(ctx context.Context, fromID, toID int64) error
	// Accept promotes a pending request to accepted with a single
	// conditional write. Returns model.ErrNoPendingRequest when there is
	// no pending request from requesterID to userID.
	Accept(ctx context.Context, userID, requesterID int64) error
	// Decline removes a pending request. Removing a request that does not
	// exist is not an error; the bool reports whether a row was deleted.
	Decline(ctx context.Context, userID, requesterID int64) (bool, error)
	GetIncoming(ctx context.Context, userID int64) ([]model.UserSummary, error)
	GetSent(ctx context.Context, userID int64) ([]model.UserSummary, error)
	GetFriends(ctx context.Context, userID int64) ([]model.UserSummary, error)
	// StatusesFor classifies each other-user relative to selfID as one of
	// the model.FriendStatus* labels, in a single batch query.
	StatusesFor(ctx context.Context, selfID int64, otherIDs []int64) (map[int64]string, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, userID, actorID int64, notifType string, commentID *int64) error
	// List returns the newest notifications with actor info joined, plus
	// the user's total unread count.
	List(ctx context.Context, userID int64, limit int) ([]model.Notification, int, error)
	MarkAsRead(ctx context.Context, userID int64, notificationIDs []int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
}
