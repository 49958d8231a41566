package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the activity stream
const (
	EventCommentCreated  = "comment_created"
	EventCommentLiked    = "comment_liked"
	EventFriendRequested = "friend_requested"
	EventFriendAccepted  = "friend_accepted"
)

// Stream names
const (
	StreamActivity = "stream:activity"
)

// Consumer group name for activity workers
const (
	ConsumerGroupActivity = "activity_workers"
)

// ActivityEvent represents an event published to the activity stream.
// All activity events share this structure; unused fields are omitted.
type ActivityEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	// ActorID is the user who performed the action.
	ActorID int64 `json:"actor_id"`

	// Comment events (CommentCreated, CommentLiked)
	CommentID       int64 `json:"comment_id,omitempty"`
	ParentCommentID int64 `json:"parent_comment_id,omitempty"`

	// Friend events (FriendRequested, FriendAccepted)
	RecipientID int64 `json:"recipient_id,omitempty"`
}

// NewCommentCreatedEvent creates an event for a freshly posted comment.
// Worker notifies the parent comment's author when this is a reply.
func NewCommentCreatedEvent(commentID, actorID int64, parentID *int64) ActivityEvent {
	e := ActivityEvent{
		Type:      EventCommentCreated,
		Timestamp: time.Now().Unix(),
		ActorID:   actorID,
		CommentID: commentID,
	}
	if parentID != nil {
		e.ParentCommentID = *parentID
	}
	return e
}

// NewCommentLikedEvent creates an event for a like toggled on.
// Worker notifies the comment's author. Unlikes are not published.
func NewCommentLikedEvent(commentID, actorID int64) ActivityEvent {
	return ActivityEvent{
		Type:      EventCommentLiked,
		Timestamp: time.Now().Unix(),
		ActorID:   actorID,
		CommentID: commentID,
	}
}

// NewFriendRequestedEvent creates an event for a sent friend request.
// Worker notifies the recipient.
func NewFriendRequestedEvent(actorID, recipientID int64) ActivityEvent {
	return ActivityEvent{
		Type:        EventFriendRequested,
		Timestamp:   time.Now().Unix(),
		ActorID:     actorID,
		RecipientID: recipientID,
	}
}

// NewFriendAcceptedEvent creates an event for an accepted friend request.
// Worker notifies the original requester.
func NewFriendAcceptedEvent(actorID, recipientID int64) ActivityEvent {
	return ActivityEvent{
		Type:        EventFriendAccepted,
		Timestamp:   time.Now().Unix(),
		ActorID:     actorID,
		RecipientID: recipientID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e ActivityEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseActivityEvent parses an ActivityEvent from Redis stream message values.
func ParseActivityEvent(values map[string]interface{}) (ActivityEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ActivityEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ActivityEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ActivityEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
