package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"huddleup/internal/model"
	"huddleup/internal/queue"
)

// CommentProvider defines the interface for looking up comments.
// This abstracts the repository layer so workers don't depend on DB directly.
type CommentProvider interface {
	// GetByID returns the comment with the given id.
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
}

// NotificationCreator defines the interface for creating notifications.
// This allows the worker to create notifications without depending on the service directly.
type NotificationCreator interface {
	// CreateNotification records a notification; self-notifications are dropped.
	CreateNotification(ctx context.Context, userID, actorID int64, notifType string, commentID *int64) error
}

// Handler processes activity events from the queue and turns them into
// notifications.
type Handler struct {
	comments     CommentProvider
	notifCreator NotificationCreator
}

// NewHandler creates a new event handler.
func NewHandler(comments CommentProvider, notifCreator NotificationCreator) *Handler {
	return &Handler{
		comments:     comments,
		notifCreator: notifCreator,
	}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ActivityEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventCommentCreated:
		err = h.handleCommentCreated(ctx, event)
	case queue.EventCommentLiked:
		err = h.handleCommentLiked(ctx, event)
	case queue.EventFriendRequested:
		err = h.handleFriendRequested(ctx, event)
	case queue.EventFriendAccepted:
		err = h.handleFriendAccepted(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handleCommentCreated notifies the parent comment's author about a reply.
// Top-level comments target posts and videos owned by the media platform, so
// there is nobody to notify for them.
func (h *Handler) handleCommentCreated(ctx context.Context, event queue.ActivityEvent) error {
	log.Printf("[Worker] CommentCreated: comment=%d actor=%d parent=%d",
		event.CommentID, event.ActorID, event.ParentCommentID)

	if event.ParentCommentID == 0 {
		return nil
	}

	parent, err := h.comments.GetByID(ctx, event.ParentCommentID)
	if err != nil {
		// Parent may have been deleted between publish and processing.
		if errors.Is(err, model.ErrCommentNotFound) {
			log.Printf("[Worker] CommentCreated: parent=%d gone, skipping", event.ParentCommentID)
			return nil
		}
		return fmt.Errorf("get parent comment: %w", err)
	}

	commentID := event.CommentID
	err = h.notifCreator.CreateNotification(ctx, parent.UserID, event.ActorID, model.NotificationTypeCommentReply, &commentID)
	if err != nil {
		return fmt.Errorf("create reply notification: %w", err)
	}

	return nil
}

// handleCommentLiked notifies the comment's author about a new like.
func (h *Handler) handleCommentLiked(ctx context.Context, event queue.ActivityEvent) error {
	log.Printf("[Worker] CommentLiked: comment=%d actor=%d", event.CommentID, event.ActorID)

	comment, err := h.comments.GetByID(ctx, event.CommentID)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			log.Printf("[Worker] CommentLiked: comment=%d gone, skipping", event.CommentID)
			return nil
		}
		return fmt.Errorf("get liked comment: %w", err)
	}

	commentID := event.CommentID
	err = h.notifCreator.CreateNotification(ctx, comment.UserID, event.ActorID, model.NotificationTypeCommentLike, &commentID)
	if err != nil {
		return fmt.Errorf("create like notification: %w", err)
	}

	return nil
}

// handleFriendRequested notifies the recipient of a new friend request.
func (h *Handler) handleFriendRequested(ctx context.Context, event queue.ActivityEvent) error {
	log.Printf("[Worker] FriendRequested: actor=%d recipient=%d", event.ActorID, event.RecipientID)

	err := h.notifCreator.CreateNotification(ctx, event.RecipientID, event.ActorID, model.NotificationTypeFriendRequest, nil)
	if err != nil {
		return fmt.Errorf("create friend request notification: %w", err)
	}
	return nil
}

// handleFriendAccepted notifies the original requester that their request
// was accepted.
func (h *Handler) handleFriendAccepted(ctx context.Context, event queue.ActivityEvent) error {
	log.Printf("[Worker] FriendAccepted: actor=%d recipient=%d", event.ActorID, event.RecipientID)

	err := h.notifCreator.CreateNotification(ctx, event.RecipientID, event.ActorID, model.NotificationTypeFriendAccept, nil)
	if err != nil {
		return fmt.Errorf("create friend accept notification: %w", err)
	}
	return nil
}
