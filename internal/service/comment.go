package service

import (
	"context"
	"log"
	"strings"

	"huddleup/internal/cache"
	"huddleup/internal/model"
	"huddleup/internal/queue"
	"huddleup/internal/repository"
)

// CommentService handles comments and replies on posts and videos.
type CommentService struct {
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	treeCache   cache.CommentTreeCache
	publisher   queue.Publisher
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	treeCache cache.CommentTreeCache,
	publisher queue.Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		userRepo:    userRepo,
		treeCache:   treeCache,
		publisher:   publisher,
	}
}

// Create adds a comment or reply. Top-level comments must name exactly one
// target (post or video); replies take the target from their parent, and an
// explicit target on a reply must not contradict it.
func (s *CommentService) Create(ctx context.Context, userID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Text)
	if len(content) == 0 {
		return nil, model.ErrContentRequired
	}
	if len(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	if req.PostID != nil && req.VideoID != nil {
		return nil, model.ErrBothTargets
	}

	postID := req.PostID
	videoID := req.VideoID

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err // ErrCommentNotFound or wrapped error
		}

		// Replies always live on the parent's target. An explicit target
		// that names something else is a client bug.
		if postID != nil && (parent.PostID == nil || *parent.PostID != *postID) {
			return nil, model.ErrBothTargets
		}
		if videoID != nil && (parent.VideoID == nil || *parent.VideoID != *videoID) {
			return nil, model.ErrBothTargets
		}
		postID = parent.PostID
		videoID = parent.VideoID
	}

	if postID == nil && videoID == nil {
		return nil, model.ErrTargetRequired
	}

	comment, err := s.commentRepo.Create(ctx, userID, content, postID, videoID, req.ParentID)
	if err != nil {
		return nil, err
	}
	comment.Replies = []*model.Comment{}

	// Fetch author info
	author, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		comment.Author = &model.UserSummary{
			ID:          author.ID,
			Username:    author.Username,
			DisplayName: author.DisplayName,
			AvatarURL:   author.AvatarURL,
		}
	}

	log.Printf("[CommentService] User %d commented (comment=%d)", userID, comment.ID)

	s.invalidateTarget(ctx, postID, videoID)

	// Publish notification event (after commit, best-effort)
	if s.publisher != nil {
		event := queue.NewCommentCreatedEvent(comment.ID, userID, req.ParentID)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[CommentService] Failed to publish CommentCreated event: %v", err)
		}
	}

	return comment, nil
}

// Delete removes a single comment. Replies survive and show up at top level
// on the next fetch.
func (s *CommentService) Delete(ctx context.Context, commentID, userID int64) error {
	postID, videoID, err := s.commentRepo.Delete(ctx, commentID, userID)
	if err != nil {
		return err
	}

	log.Printf("[CommentService] User %d deleted comment %d", userID, commentID)

	s.invalidateTarget(ctx, postID, videoID)
	return nil
}

// ToggleLike flips the caller's like on a comment and returns the new state.
func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID int64) (*model.LikeResponse, error) {
	likes, liked, err := s.commentRepo.ToggleLike(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}

	log.Printf("[CommentService] User %d toggled like on comment %d (liked=%t likes=%d)", userID, commentID, liked, likes)

	// Likes only change counts, not tree shape, but cached trees carry the
	// counts. Cheapest correct move is to drop the entry.
	if comment, err := s.commentRepo.GetByID(ctx, commentID); err == nil {
		s.invalidateTarget(ctx, comment.PostID, comment.VideoID)
	}

	if liked && s.publisher != nil {
		event := queue.NewCommentLikedEvent(commentID, userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[CommentService] Failed to publish CommentLiked event: %v", err)
		}
	}

	return &model.LikeResponse{Likes: likes, Liked: liked}, nil
}

// GetTreeByPost returns the nested comment tree for a post.
func (s *CommentService) GetTreeByPost(ctx context.Context, postID int64, viewerID *int64) (*model.CommentTreeResponse, error) {
	return s.getTree(ctx, cache.KindPost, postID, viewerID, s.commentRepo.GetFlatByPost)
}

// GetTreeByVideo returns the nested comment tree for a video.
func (s *CommentService) GetTreeByVideo(ctx context.Context, videoID int64, viewerID *int64) (*model.CommentTreeResponse, error) {
	return s.getTree(ctx, cache.KindVideo, videoID, viewerID, s.commentRepo.GetFlatByVideo)
}

type flatFetch func(ctx context.Context, targetID int64, viewerID *int64) ([]model.Comment, error)

// getTree fetches the flat comment set and assembles the nested tree.
// Only anonymous reads touch the cache: the liked flag is per-viewer, so a
// cached tree would be wrong for anyone logged in.
func (s *CommentService) getTree(ctx context.Context, kind string, targetID int64, viewerID *int64, fetch flatFetch) (*model.CommentTreeResponse, error) {
	if viewerID == nil && s.treeCache != nil {
		if tree, found, err := s.treeCache.Get(ctx, kind, targetID); err == nil && found {
			return &model.CommentTreeResponse{Comments: tree}, nil
		}
	}

	flat, err := fetch(ctx, targetID, viewerID)
	if err != nil {
		return nil, err
	}

	tree := buildTree(flat)

	if viewerID == nil && s.treeCache != nil {
		if err := s.treeCache.Set(ctx, kind, targetID, tree); err != nil {
			log.Printf("[CommentService] Failed to cache comment tree %s:%d: %v", kind, targetID, err)
		}
	}

	return &model.CommentTreeResponse{Comments: tree}, nil
}

// buildTree buckets a flat comment list into a nested tree, preserving the
// fetch order among siblings. A comment whose parent is not in the set (the
// parent was deleted) is promoted to top level rather than dropped.
func buildTree(flat []model.Comment) []*model.Comment {
	byID := make(map[int64]*model.Comment, len(flat))
	nodes := make([]*model.Comment, len(flat))
	for i := range flat {
		node := &flat[i]
		node.Replies = []*model.Comment{}
		byID[node.ID] = node
		nodes[i] = node
	}

	roots := make([]*model.Comment, 0, len(nodes))
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := byID[*node.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}

// invalidateTarget drops the cached tree for whichever target is set.
func (s *CommentService) invalidateTarget(ctx context.Context, postID, videoID *int64) {
	if s.treeCache == nil {
		return
	}
	var err error
	switch {
	case postID != nil:
		err = s.treeCache.Invalidate(ctx, cache.KindPost, *postID)
	case videoID != nil:
		err = s.treeCache.Invalidate(ctx, cache.KindVideo, *videoID)
	}
	if err != nil {
		log.Printf("[CommentService] Failed to invalidate comment tree cache: %v", err)
	}
}
