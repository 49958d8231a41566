package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"huddleup/internal/model"
	"huddleup/internal/repository"
)

// UserService handles business logic for user operations
type UserService struct {
	repo       repository.UserRepository
	friendRepo repository.FriendRepository
}

func NewUserService(repo repository.UserRepository, friendRepo repository.FriendRepository) *UserService {
	return &UserService{
		repo:       repo,
		friendRepo: friendRepo,
	}
}

// Register creates a new user account.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("username is required")
	}

	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}

	// Check if username already exists
	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       req.Username,
		PasswordHashed: string(hashedPassword),
		AvatarURL:      req.AvatarURL,
		AvatarKey:      req.AvatarKey,
	}

	if req.DisplayName != "" {
		user.DisplayName = &req.DisplayName
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user with username and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		// Don't reveal whether username exists or not
		return nil, model.ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUsers returns other users for discovery, each labelled with the
// viewer's relationship to them. The labels come from one batch query to
// avoid an N+1 on the friendships table.
func (s *UserService) ListUsers(ctx context.Context, viewerID int64, limit int) ([]model.UserSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	users, err := s.repo.ListOthers(ctx, viewerID, limit)
	if err != nil {
		return nil, err
	}

	if len(users) > 0 {
		userIDs := make([]int64, len(users))
		for i, u := range users {
			userIDs[i] = u.ID
		}

		statuses, err := s.friendRepo.StatusesFor(ctx, viewerID, userIDs)
		if err != nil {
			// Degrade to unlabelled listing rather than failing discovery.
			log.Printf("[UserService] Failed to resolve friend statuses for user %d: %v", viewerID, err)
		} else {
			for i := range users {
				users[i].FriendStatus = statuses[users[i].ID]
			}
		}
	}

	return users, nil
}

// UpdateAvatar points the user at a new avatar object and returns the old
// object key so the caller can clean it up.
func (s *UserService) UpdateAvatar(ctx context.Context, userID int64, avatarURL, avatarKey string) (oldKey *string, err error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAvatar(ctx, userID, avatarURL, avatarKey); err != nil {
		return nil, err
	}

	return user.AvatarKey, nil
}
