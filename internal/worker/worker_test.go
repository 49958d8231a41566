package worker_test

import (
	"context"
	"testing"
	"time"

	"huddleup/internal/model"
	"huddleup/internal/queue"
	"huddleup/internal/worker"
)

// =============================================================================
// Mock Implementations
// =============================================================================

// MockCommentProvider simulates the comment repository.
type MockCommentProvider struct {
	comments map[int64]*model.Comment
}

func NewMockCommentProvider() *MockCommentProvider {
	return &MockCommentProvider{comments: make(map[int64]*model.Comment)}
}

func (m *MockCommentProvider) AddComment(c *model.Comment) {
	m.comments[c.ID] = c
}

func (m *MockCommentProvider) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	c, ok := m.comments[commentID]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	return c, nil
}

// MockNotificationCreator records created notifications.
type MockNotificationCreator struct {
	created []createdNotification
}

type createdNotification struct {
	UserID    int64
	ActorID   int64
	Type      string
	CommentID *int64
}

func (m *MockNotificationCreator) CreateNotification(ctx context.Context, userID, actorID int64, notifType string, commentID *int64) error {
	// Mirror the service behavior: self-notifications are dropped.
	if userID == actorID {
		return nil
	}
	m.created = append(m.created, createdNotification{
		UserID:    userID,
		ActorID:   actorID,
		Type:      notifType,
		CommentID: commentID,
	})
	return nil
}

func i64(n int64) *int64 { return &n }

// =============================================================================
// Event Handling Tests
// =============================================================================

func TestHandler_CommentCreated_ReplyNotifiesParentAuthor(t *testing.T) {
	comments := NewMockCommentProvider()
	comments.AddComment(&model.Comment{ID: 5, UserID: 9, PostID: i64(77)})

	notifs := &MockNotificationCreator{}
	h := worker.NewHandler(comments, notifs)

	event := queue.NewCommentCreatedEvent(10, 1, i64(5))
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifs.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(notifs.created))
	}
	n := notifs.created[0]
	if n.UserID != 9 || n.ActorID != 1 {
		t.Errorf("notification user/actor = %d/%d, want 9/1", n.UserID, n.ActorID)
	}
	if n.Type != model.NotificationTypeCommentReply {
		t.Errorf("notification type = %q, want %q", n.Type, model.NotificationTypeCommentReply)
	}
	if n.CommentID == nil || *n.CommentID != 10 {
		t.Errorf("notification comment = %v, want 10", n.CommentID)
	}
}

func TestHandler_CommentCreated_TopLevelIsSilent(t *testing.T) {
	notifs := &MockNotificationCreator{}
	h := worker.NewHandler(NewMockCommentProvider(), notifs)

	// Posts and videos belong to the media platform, nobody to notify.
	event := queue.NewCommentCreatedEvent(10, 1, nil)
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifs.created) != 0 {
		t.Errorf("top-level comments should not create notifications, got %d", len(notifs.created))
	}
}

func TestHandler_CommentCreated_ParentDeletedIsSkipped(t *testing.T) {
	notifs := &MockNotificationCreator{}
	h := worker.NewHandler(NewMockCommentProvider(), notifs)

	// Parent 404 was deleted between publish and processing.
	event := queue.NewCommentCreatedEvent(10, 1, i64(404))
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("missing parent should be skipped, not fail: %v", err)
	}

	if len(notifs.created) != 0 {
		t.Errorf("no notification expected for a deleted parent, got %d", len(notifs.created))
	}
}

func TestHandler_CommentCreated_SelfReplyIsDropped(t *testing.T) {
	comments := NewMockCommentProvider()
	comments.AddComment(&model.Comment{ID: 5, UserID: 1, PostID: i64(77)})

	notifs := &MockNotificationCreator{}
	h := worker.NewHandler(comments, notifs)

	// User 1 replying to their own comment.
	event := queue.NewCommentCreatedEvent(10, 1, i64(5))
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifs.created) != 0 {
		t.Errorf("self-replies should not notify, got %d", len(notifs.created))
	}
}

func TestHandler_CommentLiked_NotifiesCommentAuthor(t *testing.T) {
	comments := NewMockCommentProvider()
	comments.AddComment(&model.Comment{ID: 10, UserID: 9, VideoID: i64(300)})

	notifs := &MockNotificationCreator{}
	h := worker.NewHandler(comments, notifs)

	event := queue.NewCommentLikedEvent(10, 1)
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifs.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(notifs.created))
	}
	n := notifs.created[0]
	if n.UserID != 9 || n.Type != model.NotificationTypeCommentLike {
		t.Errorf("notification = %+v, want comment_like for user 9", n)
	}
}

func TestHandler_FriendEvents(t *testing.T) {
	tests := []struct {
		name     string
		event    queue.ActivityEvent
		wantType string
		wantUser int64
	}{
		{
			name:     "friend requested notifies recipient",
			event:    queue.NewFriendRequestedEvent(1, 2),
			wantType: model.NotificationTypeFriendRequest,
			wantUser: 2,
		},
		{
			name:     "friend accepted notifies requester",
			event:    queue.NewFriendAcceptedEvent(2, 1),
			wantType: model.NotificationTypeFriendAccept,
			wantUser: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifs := &MockNotificationCreator{}
			h := worker.NewHandler(NewMockCommentProvider(), notifs)

			if err := h.HandleEvent(context.Background(), tt.event); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(notifs.created) != 1 {
				t.Fatalf("created %d notifications, want 1", len(notifs.created))
			}
			n := notifs.created[0]
			if n.Type != tt.wantType || n.UserID != tt.wantUser {
				t.Errorf("notification = %+v, want type %q for user %d", n, tt.wantType, tt.wantUser)
			}
			if n.CommentID != nil {
				t.Errorf("friend notifications carry no comment, got %v", n.CommentID)
			}
		})
	}
}

func TestHandler_UnknownEventType(t *testing.T) {
	h := worker.NewHandler(NewMockCommentProvider(), &MockNotificationCreator{})

	event := queue.ActivityEvent{Type: "mystery", Timestamp: time.Now().Unix()}
	if err := h.HandleEvent(context.Background(), event); err == nil {
		t.Error("unknown event types should be reported as errors")
	}
}
