package model

import (
	"errors"
	"time"
)

// Friendship states stored per unordered user pair. A missing row means the
// pair has no relationship at all.
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// Friendship is the single record describing the relationship between two
// users. UserLo < UserHi; RequesterID identifies the pending direction.
type Friendship struct {
	UserLo      int64     `db:"user_lo" json:"-"`
	UserHi      int64     `db:"user_hi" json:"-"`
	RequesterID int64     `db:"requester_id" json:"requester_id"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Relationship labels derived for a (viewer, other) pair. Priority when
// classifying: friend > incoming > pending > none.
const (
	FriendStatusFriend   = "friend"
	FriendStatusIncoming = "incoming"
	FriendStatusPending  = "pending"
	FriendStatusNone     = "none"
)

// FriendListResponse wraps friend / request listings.
type FriendListResponse struct {
	Users []UserSummary `json:"users"`
}

var (
	ErrCannotFriendSelf      = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends        = errors.New("users are already friends")
	ErrRequestAlreadyPending = errors.New("a friend request between these users is already pending")
	ErrNoPendingRequest      = errors.New("no pending friend request from this user")
)
