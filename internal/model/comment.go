package model

import (
	"errors"
	"time"
)

// Comment represents a comment attached to a post or a video, or a reply to
// another comment. Exactly one of PostID/VideoID is set; replies carry the
// same target as their parent. Replies is assembled at read time and never
// stored.
type Comment struct {
	ID        int64        `db:"id" json:"id"`
	UserID    int64        `db:"user_id" json:"-"`
	PostID    *int64       `db:"post_id" json:"post_id,omitempty"`
	VideoID   *int64       `db:"video_id" json:"video_id,omitempty"`
	ParentID  *int64       `db:"parent_comment_id" json:"parent_id,omitempty"`
	Content   string       `db:"content" json:"content"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"` // Joined field
	LikeCount int          `db:"like_count" json:"likes"`
	LikedByMe bool         `db:"liked_by_me" json:"liked"`
	Replies   []*Comment   `json:"replies"`
}

// CreateCommentRequest is the request body for creating a comment or reply.
// When no explicit target is given the target is inherited from the parent.
type CreateCommentRequest struct {
	Text     string `json:"text"`
	PostID   *int64 `json:"post_id,omitempty"`
	VideoID  *int64 `json:"video_id,omitempty"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// LikeResponse is returned by the like toggle endpoint.
type LikeResponse struct {
	Likes int  `json:"likes"`
	Liked bool `json:"liked"`
}

// CommentTreeResponse is the nested tree returned by the fetch endpoints.
type CommentTreeResponse struct {
	Comments []*Comment `json:"comments"`
}

// Comment constraints
const (
	MaxCommentLength = 2200
)

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
	ErrContentRequired = errors.New("comment text is required")
	ErrContentTooLong  = errors.New("comment text too long")
	ErrTargetRequired  = errors.New("comment must target a post or a video")
	ErrBothTargets     = errors.New("comment cannot target both a post and a video")
)
