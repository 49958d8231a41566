package model

import (
	"errors"
	"time"
)

// User represents a registered fan account.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	DisplayName    *string   `db:"display_name" json:"display_name"`
	AvatarURL      *string   `db:"avatar_url" json:"avatar_url"`
	AvatarKey      *string   `db:"avatar_key" json:"-"`
	Bio            *string   `db:"bio" json:"bio"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UserSummary is the compact user shape embedded in comments, friend lists
// and discovery results. FriendStatus is filled in relative to the viewer.
type UserSummary struct {
	ID           int64   `db:"id" json:"id"`
	Username     string  `db:"username" json:"username"`
	DisplayName  *string `db:"display_name" json:"display_name"`
	AvatarURL    *string `db:"avatar_url" json:"avatar_url"`
	FriendStatus string  `json:"friend_status,omitempty"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"-"`
	AvatarKey   *string `json:"-"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserListResponse is the discovery listing returned by GET /users.
type UserListResponse struct {
	Users []UserSummary `json:"users"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
