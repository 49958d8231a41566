package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"huddleup/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment. The caller has already resolved the target,
// so exactly one of postID/videoID is non-nil (the schema enforces it too).
func (r *commentRepository) Create(ctx context.Context, userID int64, content string, postID, videoID, parentID *int64) (*model.Comment, error) {
	query := `
		INSERT INTO comments (user_id, content, post_id, video_id, parent_comment_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, content, post_id, video_id, parent_comment_id, created_at
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, userID, content, postID, videoID, parentID)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

// GetByID retrieves a single comment without joined fields.
func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	query := `
		SELECT id, user_id, content, post_id, video_id, parent_comment_id, created_at
		FROM comments
		WHERE id = $1
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

// Delete removes the single comment row. Replies are intentionally left in
// place; the tree builder promotes them to top level on the next fetch.
// Returns the target so the caller can invalidate the right cache entry.
func (r *commentRepository) Delete(ctx context.Context, commentID, userID int64) (*int64, *int64, error) {
	var row struct {
		UserID  int64  `db:"user_id"`
		PostID  *int64 `db:"post_id"`
		VideoID *int64 `db:"video_id"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT user_id, post_id, video_id FROM comments WHERE id = $1
	`, commentID)
	if err == sql.ErrNoRows {
		return nil, nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get comment: %w", err)
	}

	if row.UserID != userID {
		return nil, nil, model.ErrNotCommentOwner
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return nil, nil, fmt.Errorf("delete comment: %w", err)
	}

	return row.PostID, row.VideoID, nil
}

// GetFlatByPost returns all comments for a post, newest first.
func (r *commentRepository) GetFlatByPost(ctx context.Context, postID int64, viewerID *int64) ([]model.Comment, error) {
	return r.getFlat(ctx, "c.post_id", postID, viewerID)
}

// GetFlatByVideo returns all comments for a video, newest first.
func (r *commentRepository) GetFlatByVideo(ctx context.Context, videoID int64, viewerID *int64) ([]model.Comment, error) {
	return r.getFlat(ctx, "c.video_id", videoID, viewerID)
}

// getFlat fetches the flat comment set for one target column with author
// and like info joined. Replies are not filtered out; the service layer
// buckets them into a tree.
func (r *commentRepository) getFlat(ctx context.Context, targetColumn string, targetID int64, viewerID *int64) ([]model.Comment, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.user_id, c.content, c.post_id, c.video_id, c.parent_comment_id, c.created_at,
		       u.id AS "author.id", u.username AS "author.username",
		       u.display_name AS "author.display_name", u.avatar_url AS "author.avatar_url",
		       COUNT(cl.user_id) AS like_count,
		       COALESCE(BOOL_OR(cl.user_id = $2), FALSE) AS liked_by_me
		FROM comments c
		JOIN users u ON u.id = c.user_id
		LEFT JOIN comment_likes cl ON cl.comment_id = c.id
		WHERE %s = $1
		GROUP BY c.id, u.id
		ORDER BY c.created_at DESC, c.id DESC
	`, targetColumn)

	type commentRow struct {
		ID             int64     `db:"id"`
		UserID         int64     `db:"user_id"`
		Content        string    `db:"content"`
		PostID         *int64    `db:"post_id"`
		VideoID        *int64    `db:"video_id"`
		ParentID       *int64    `db:"parent_comment_id"`
		CreatedAt      time.Time `db:"created_at"`
		AuthorID       int64     `db:"author.id"`
		AuthorUsername string    `db:"author.username"`
		AuthorDisplay  *string   `db:"author.display_name"`
		AuthorAvatar   *string   `db:"author.avatar_url"`
		LikeCount      int       `db:"like_count"`
		LikedByMe      bool      `db:"liked_by_me"`
	}

	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, query, targetID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = model.Comment{
			ID:        row.ID,
			UserID:    row.UserID,
			Content:   row.Content,
			PostID:    row.PostID,
			VideoID:   row.VideoID,
			ParentID:  row.ParentID,
			CreatedAt: row.CreatedAt,
			LikeCount: row.LikeCount,
			LikedByMe: row.LikedByMe,
			Author: &model.UserSummary{
				ID:          row.AuthorID,
				Username:    row.AuthorUsername,
				DisplayName: row.AuthorDisplay,
				AvatarURL:   row.AuthorAvatar,
			},
		}
	}

	return comments, nil
}

// ToggleLike flips the like state for (commentID, userID) inside one
// transaction: a conditional delete, and an insert when nothing was
// deleted. Two racing toggles from the same user cannot double-add because
// the primary key on (comment_id, user_id) makes the insert conditional.
func (r *commentRepository) ToggleLike(ctx context.Context, commentID, userID int64) (int, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, commentID); err != nil {
		return 0, false, fmt.Errorf("check comment exists: %w", err)
	}
	if !exists {
		return 0, false, model.ErrCommentNotFound
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2
	`, commentID, userID)
	if err != nil {
		return 0, false, fmt.Errorf("delete like: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("get rows affected: %w", err)
	}

	liked := false
	if removed == 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO comment_likes (comment_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (comment_id, user_id) DO NOTHING
		`, commentID, userID)
		if err != nil {
			return 0, false, fmt.Errorf("insert like: %w", err)
		}
		liked = true
	}

	var likes int
	if err := tx.GetContext(ctx, &likes, `SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1`, commentID); err != nil {
		return 0, false, fmt.Errorf("count likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit transaction: %w", err)
	}

	return likes, liked, nil
}
