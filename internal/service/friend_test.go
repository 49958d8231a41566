package service

import (
	"context"
	"errors"
	"testing"

	"huddleup/internal/model"
	"huddleup/internal/queue"
)

type mockFriendRepository struct {
	sendRequestFn func(ctx context.Context, fromID, toID int64) error
	acceptFn      func(ctx context.Context, userID, requesterID int64) error
	declineFn     func(ctx context.Context, userID, requesterID int64) (bool, error)
	getIncomingFn func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	getSentFn     func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	getFriendsFn  func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	statusesForFn func(ctx context.Context, selfID int64, otherIDs []int64) (map[int64]string, error)

	sendRequestCalls int
}

func (m *mockFriendRepository) SendRequest(ctx context.Context, fromID, toID int64) error {
	m.sendRequestCalls++
	if m.sendRequestFn != nil {
		return m.sendRequestFn(ctx, fromID, toID)
	}
	return nil
}

func (m *mockFriendRepository) Accept(ctx context.Context, userID, requesterID int64) error {
	if m.acceptFn != nil {
		return m.acceptFn(ctx, userID, requesterID)
	}
	return nil
}

func (m *mockFriendRepository) Decline(ctx context.Context, userID, requesterID int64) (bool, error) {
	if m.declineFn != nil {
		return m.declineFn(ctx, userID, requesterID)
	}
	return false, nil
}

func (m *mockFriendRepository) GetIncoming(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	if m.getIncomingFn != nil {
		return m.getIncomingFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFriendRepository) GetSent(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	if m.getSentFn != nil {
		return m.getSentFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFriendRepository) GetFriends(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	if m.getFriendsFn != nil {
		return m.getFriendsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFriendRepository) StatusesFor(ctx context.Context, selfID int64, otherIDs []int64) (map[int64]string, error) {
	if m.statusesForFn != nil {
		return m.statusesForFn(ctx, selfID, otherIDs)
	}
	return map[int64]string{}, nil
}

// mockPublisher records published events instead of touching Redis.
type mockPublisher struct {
	events []queue.ActivityEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.ActivityEvent) (string, error) {
	m.events = append(m.events, event)
	return "1-0", nil
}

func existingUserRepo() *mockUserRepository {
	return &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "someone"}, nil
		},
	}
}

// =============================================================================
// SEND REQUEST TESTS
// =============================================================================

func TestFriendService_SendRequest_Success(t *testing.T) {
	friendRepo := &mockFriendRepository{}
	pub := &mockPublisher{}
	svc := NewFriendService(friendRepo, existingUserRepo(), pub)

	if err := svc.SendRequest(context.Background(), 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if friendRepo.sendRequestCalls != 1 {
		t.Errorf("SendRequest called %d times, want 1", friendRepo.sendRequestCalls)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	event := pub.events[0]
	if event.Type != queue.EventFriendRequested {
		t.Errorf("event type = %q, want %q", event.Type, queue.EventFriendRequested)
	}
	if event.ActorID != 1 || event.RecipientID != 2 {
		t.Errorf("event actor/recipient = %d/%d, want 1/2", event.ActorID, event.RecipientID)
	}
}

func TestFriendService_SendRequest_ToSelf(t *testing.T) {
	friendRepo := &mockFriendRepository{}
	svc := NewFriendService(friendRepo, existingUserRepo(), &mockPublisher{})

	err := svc.SendRequest(context.Background(), 1, 1)
	if !errors.Is(err, model.ErrCannotFriendSelf) {
		t.Errorf("error = %v, want %v", err, model.ErrCannotFriendSelf)
	}
	if friendRepo.sendRequestCalls != 0 {
		t.Error("SendRequest should not reach the repository for self-requests")
	}
}

func TestFriendService_SendRequest_RecipientNotFound(t *testing.T) {
	friendRepo := &mockFriendRepository{}
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, model.ErrUserNotFound
		},
	}
	svc := NewFriendService(friendRepo, userRepo, &mockPublisher{})

	err := svc.SendRequest(context.Background(), 1, 999)
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrUserNotFound)
	}
	if friendRepo.sendRequestCalls != 0 {
		t.Error("SendRequest should not reach the repository when recipient is missing")
	}
}

func TestFriendService_SendRequest_Conflicts(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
	}{
		{name: "already friends", repoErr: model.ErrAlreadyFriends},
		{name: "request already pending", repoErr: model.ErrRequestAlreadyPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			friendRepo := &mockFriendRepository{
				sendRequestFn: func(ctx context.Context, fromID, toID int64) error {
					return tt.repoErr
				},
			}
			pub := &mockPublisher{}
			svc := NewFriendService(friendRepo, existingUserRepo(), pub)

			err := svc.SendRequest(context.Background(), 1, 2)
			if !errors.Is(err, tt.repoErr) {
				t.Errorf("error = %v, want %v", err, tt.repoErr)
			}
			if len(pub.events) != 0 {
				t.Error("no event should be published on conflict")
			}
		})
	}
}

// =============================================================================
// ACCEPT / DECLINE TESTS
// =============================================================================

func TestFriendService_Accept_Success(t *testing.T) {
	var gotUser, gotRequester int64
	friendRepo := &mockFriendRepository{
		acceptFn: func(ctx context.Context, userID, requesterID int64) error {
			gotUser, gotRequester = userID, requesterID
			return nil
		},
	}
	pub := &mockPublisher{}
	svc := NewFriendService(friendRepo, existingUserRepo(), pub)

	if err := svc.Accept(context.Background(), 2, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotUser != 2 || gotRequester != 1 {
		t.Errorf("Accept called with (%d, %d), want (2, 1)", gotUser, gotRequester)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	event := pub.events[0]
	if event.Type != queue.EventFriendAccepted {
		t.Errorf("event type = %q, want %q", event.Type, queue.EventFriendAccepted)
	}
	// The requester is the one who gets notified.
	if event.ActorID != 2 || event.RecipientID != 1 {
		t.Errorf("event actor/recipient = %d/%d, want 2/1", event.ActorID, event.RecipientID)
	}
}

func TestFriendService_Accept_RequesterNotFound(t *testing.T) {
	friendRepo := &mockFriendRepository{
		acceptFn: func(ctx context.Context, userID, requesterID int64) error {
			t.Error("Accept should not reach the repository when requester is missing")
			return nil
		},
	}
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, model.ErrUserNotFound
		},
	}
	pub := &mockPublisher{}
	svc := NewFriendService(friendRepo, userRepo, pub)

	err := svc.Accept(context.Background(), 2, 999)
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrUserNotFound)
	}
	if len(pub.events) != 0 {
		t.Error("no event should be published when requester is missing")
	}
}

func TestFriendService_Accept_NoPendingRequest(t *testing.T) {
	friendRepo := &mockFriendRepository{
		acceptFn: func(ctx context.Context, userID, requesterID int64) error {
			return model.ErrNoPendingRequest
		},
	}
	pub := &mockPublisher{}
	svc := NewFriendService(friendRepo, existingUserRepo(), pub)

	err := svc.Accept(context.Background(), 2, 1)
	if !errors.Is(err, model.ErrNoPendingRequest) {
		t.Errorf("error = %v, want %v", err, model.ErrNoPendingRequest)
	}
	if len(pub.events) != 0 {
		t.Error("no event should be published on failed accept")
	}
}

func TestFriendService_Decline(t *testing.T) {
	tests := []struct {
		name    string
		removed bool
	}{
		{name: "pending request removed", removed: true},
		{name: "nothing pending is a no-op", removed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			friendRepo := &mockFriendRepository{
				declineFn: func(ctx context.Context, userID, requesterID int64) (bool, error) {
					return tt.removed, nil
				},
			}
			svc := NewFriendService(friendRepo, existingUserRepo(), &mockPublisher{})

			if err := svc.Decline(context.Background(), 2, 1); err != nil {
				t.Errorf("decline should succeed, got: %v", err)
			}
		})
	}
}

// =============================================================================
// LISTING TESTS
// =============================================================================

func TestFriendService_GetFriends(t *testing.T) {
	friendRepo := &mockFriendRepository{
		getFriendsFn: func(ctx context.Context, userID int64) ([]model.UserSummary, error) {
			return []model.UserSummary{
				{ID: 2, Username: "alice"},
				{ID: 3, Username: "bob"},
			}, nil
		},
	}
	svc := NewFriendService(friendRepo, existingUserRepo(), &mockPublisher{})

	resp, err := svc.GetFriends(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Users) != 2 {
		t.Errorf("got %d friends, want 2", len(resp.Users))
	}
}
