package service

import (
	"context"
	"log"

	"huddleup/internal/model"
	"huddleup/internal/queue"
	"huddleup/internal/repository"
)

// FriendService handles the friend request lifecycle.
type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	publisher  queue.Publisher
}

func NewFriendService(
	friendRepo repository.FriendRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// SendRequest creates a pending friend request from fromID to toID.
func (s *FriendService) SendRequest(ctx context.Context, fromID, toID int64) error {
	if fromID == toID {
		return model.ErrCannotFriendSelf
	}

	// Reject requests to users that don't exist before touching friendships.
	if _, err := s.userRepo.GetByID(ctx, toID); err != nil {
		return err // ErrUserNotFound or wrapped error
	}

	if err := s.friendRepo.SendRequest(ctx, fromID, toID); err != nil {
		return err
	}

	log.Printf("[FriendService] User %d sent friend request to user %d", fromID, toID)

	if s.publisher != nil {
		event := queue.NewFriendRequestedEvent(fromID, toID)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[FriendService] Failed to publish FriendRequested event: %v", err)
		}
	}

	return nil
}

// Accept confirms the pending request from requesterID to userID. The two
// users become friends of each other in the same write.
func (s *FriendService) Accept(ctx context.Context, userID, requesterID int64) error {
	// A stale requester id reads better as a missing user than as a
	// missing request.
	if _, err := s.userRepo.GetByID(ctx, requesterID); err != nil {
		return err
	}

	if err := s.friendRepo.Accept(ctx, userID, requesterID); err != nil {
		return err
	}

	log.Printf("[FriendService] User %d accepted friend request from user %d", userID, requesterID)

	if s.publisher != nil {
		event := queue.NewFriendAcceptedEvent(userID, requesterID)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[FriendService] Failed to publish FriendAccepted event: %v", err)
		}
	}

	return nil
}

// Decline discards the pending request from requesterID to userID.
// Declining a request that does not exist is a no-op, not an error.
func (s *FriendService) Decline(ctx context.Context, userID, requesterID int64) error {
	removed, err := s.friendRepo.Decline(ctx, userID, requesterID)
	if err != nil {
		return err
	}

	if removed {
		log.Printf("[FriendService] User %d declined friend request from user %d", userID, requesterID)
	}
	return nil
}

// GetFriends returns the user's confirmed friends.
func (s *FriendService) GetFriends(ctx context.Context, userID int64) (*model.FriendListResponse, error) {
	users, err := s.friendRepo.GetFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.FriendListResponse{Users: users}, nil
}

// GetIncoming returns pending requests addressed to the user.
func (s *FriendService) GetIncoming(ctx context.Context, userID int64) (*model.FriendListResponse, error) {
	users, err := s.friendRepo.GetIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.FriendListResponse{Users: users}, nil
}

// GetSent returns pending requests the user has sent.
func (s *FriendService) GetSent(ctx context.Context, userID int64) (*model.FriendListResponse, error) {
	users, err := s.friendRepo.GetSent(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.FriendListResponse{Users: users}, nil
}
