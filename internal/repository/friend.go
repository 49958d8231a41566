package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"huddleup/internal/model"
)

type friendRepository struct {
	db *sqlx.DB
}

func NewFriendRepository(db *sqlx.DB) FriendRepository {
	return &friendRepository{db: db}
}

// orderPair maps two user ids onto the (user_lo, user_hi) storage order.
func orderPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

// SendRequest inserts the pending row for the pair. The conditional insert
// means two racing sends cannot create conflicting rows; whichever loses the
// race sees the existing relationship and reports the conflict.
func (r *friendRepository) SendRequest(ctx context.Context, fromID, toID int64) error {
	lo, hi := orderPair(fromID, toID)

	query := `
		INSERT INTO friendships (user_lo, user_hi, requester_id, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_lo, user_hi) DO NOTHING
	`
	// Two passes: when the insert loses the race and the conflicting row is
	// declined before the status read, the pair is free again and one more
	// insert settles it.
	for attempt := 0; attempt < 2; attempt++ {
		result, err := r.db.ExecContext(ctx, query, lo, hi, fromID, model.FriendshipPending)
		if err != nil {
			return fmt.Errorf("insert friend request: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rows > 0 {
			return nil
		}

		var status string
		err = r.db.GetContext(ctx, &status, `
			SELECT status FROM friendships WHERE user_lo = $1 AND user_hi = $2
		`, lo, hi)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("check existing friendship: %w", err)
		}
		if status == model.FriendshipAccepted {
			return model.ErrAlreadyFriends
		}
		return model.ErrRequestAlreadyPending
	}

	return fmt.Errorf("insert friend request: pair row changed concurrently")
}

// Accept promotes the pending row to accepted. The WHERE clause pins the
// pending direction, so only the addressee of that exact request can accept,
// and both users' observable friend/pending sets change in one write.
func (r *friendRepository) Accept(ctx context.Context, userID, requesterID int64) error {
	lo, hi := orderPair(userID, requesterID)

	query := `
		UPDATE friendships
		SET status = $4, updated_at = NOW()
		WHERE user_lo = $1 AND user_hi = $2 AND status = $5 AND requester_id = $3
	`
	result, err := r.db.ExecContext(ctx, query, lo, hi, requesterID, model.FriendshipAccepted, model.FriendshipPending)
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNoPendingRequest
	}
	return nil
}

// Decline removes the pending row for the request requesterID -> userID.
func (r *friendRepository) Decline(ctx context.Context, userID, requesterID int64) (bool, error) {
	lo, hi := orderPair(userID, requesterID)

	query := `
		DELETE FROM friendships
		WHERE user_lo = $1 AND user_hi = $2 AND status = $4 AND requester_id = $3
	`
	result, err := r.db.ExecContext(ctx, query, lo, hi, requesterID, model.FriendshipPending)
	if err != nil {
		return false, fmt.Errorf("decline friend request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// GetIncoming returns users with a pending request toward userID.
func (r *friendRepository) GetIncoming(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.avatar_url
		FROM friendships f
		JOIN users u ON u.id = f.requester_id
		WHERE (f.user_lo = $1 OR f.user_hi = $1) AND f.status = $2 AND f.requester_id <> $1
		ORDER BY f.created_at DESC
	`
	var users []model.UserSummary
	if err := r.db.SelectContext(ctx, &users, query, userID, model.FriendshipPending); err != nil {
		return nil, fmt.Errorf("get incoming requests: %w", err)
	}
	return users, nil
}

// GetSent returns users userID has a pending request toward.
func (r *friendRepository) GetSent(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.avatar_url
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.user_lo = $1 THEN f.user_hi ELSE f.user_lo END
		WHERE (f.user_lo = $1 OR f.user_hi = $1) AND f.status = $2 AND f.requester_id = $1
		ORDER BY f.created_at DESC
	`
	var users []model.UserSummary
	if err := r.db.SelectContext(ctx, &users, query, userID, model.FriendshipPending); err != nil {
		return nil, fmt.Errorf("get sent requests: %w", err)
	}
	return users, nil
}

// GetFriends returns confirmed friends of userID.
func (r *friendRepository) GetFriends(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.avatar_url
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.user_lo = $1 THEN f.user_hi ELSE f.user_lo END
		WHERE (f.user_lo = $1 OR f.user_hi = $1) AND f.status = $2
		ORDER BY f.updated_at DESC
	`
	var users []model.UserSummary
	if err := r.db.SelectContext(ctx, &users, query, userID, model.FriendshipAccepted); err != nil {
		return nil, fmt.Errorf("get friends: %w", err)
	}
	return users, nil
}

// StatusesFor classifies each id in otherIDs relative to selfID with a
// single batch query (ANY over an array, not N+1).
func (r *friendRepository) StatusesFor(ctx context.Context, selfID int64, otherIDs []int64) (map[int64]string, error) {
	statuses := make(map[int64]string, len(otherIDs))
	for _, id := range otherIDs {
		statuses[id] = model.FriendStatusNone
	}
	if len(otherIDs) == 0 {
		return statuses, nil
	}

	query := `
		SELECT CASE WHEN f.user_lo = $1 THEN f.user_hi ELSE f.user_lo END AS other_id,
		       f.status, f.requester_id
		FROM friendships f
		WHERE (f.user_lo = $1 AND f.user_hi = ANY($2))
		   OR (f.user_hi = $1 AND f.user_lo = ANY($2))
	`

	type pairRow struct {
		OtherID     int64  `db:"other_id"`
		Status      string `db:"status"`
		RequesterID int64  `db:"requester_id"`
	}

	var rows []pairRow
	err := r.db.SelectContext(ctx, &rows, query, selfID, pq.Array(otherIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check friend statuses: %w", err)
	}

	for _, row := range rows {
		switch {
		case row.Status == model.FriendshipAccepted:
			statuses[row.OtherID] = model.FriendStatusFriend
		case row.RequesterID == selfID:
			statuses[row.OtherID] = model.FriendStatusPending
		default:
			statuses[row.OtherID] = model.FriendStatusIncoming
		}
	}

	return statuses, nil
}
