package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"huddleup/internal/model"
)

// Target kinds for comment tree cache keys.
const (
	KindPost  = "post"
	KindVideo = "video"
)

const (
	// CommentCachePrefix is the key prefix for cached comment trees
	CommentCachePrefix = "comments:"

	// CommentCacheTTL keeps cached trees short-lived; any write to the
	// target invalidates the entry anyway, the TTL just bounds staleness
	// if an invalidation is lost.
	CommentCacheTTL = 60 * time.Second
)

// CommentTreeCache caches the assembled comment tree for a target.
// Only viewer-independent trees are cached (anonymous reads): liked_by_me
// is per-viewer, so authenticated reads always hit the database.
type CommentTreeCache interface {
	// Get returns the cached tree for a target, or (nil, false) on miss.
	Get(ctx context.Context, kind string, targetID int64) ([]*model.Comment, bool, error)

	// Set stores the tree for a target with the cache TTL.
	Set(ctx context.Context, kind string, targetID int64, tree []*model.Comment) error

	// Invalidate drops the cached tree for a target.
	Invalidate(ctx context.Context, kind string, targetID int64) error
}

// RedisCommentTreeCache implements CommentTreeCache using plain Redis
// string values holding the JSON-encoded tree.
type RedisCommentTreeCache struct {
	client *redis.Client
}

// NewCommentTreeCache creates a new CommentTreeCache backed by Redis.
func NewCommentTreeCache(client *redis.Client) CommentTreeCache {
	return &RedisCommentTreeCache{client: client}
}

// commentKey returns the Redis key for a target's comment tree.
func commentKey(kind string, targetID int64) string {
	return fmt.Sprintf("%s%s:%d", CommentCachePrefix, kind, targetID)
}

// Get returns the cached tree for a target.
func (c *RedisCommentTreeCache) Get(ctx context.Context, kind string, targetID int64) ([]*model.Comment, bool, error) {
	key := commentKey(kind, targetID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		log.Printf("[CommentCache] Get FAILED: key=%s err=%v", key, err)
		return nil, false, fmt.Errorf("get comment tree: %w", err)
	}

	var tree []*model.Comment
	if err := json.Unmarshal(data, &tree); err != nil {
		// Corrupt entry: drop it and fall through to the database.
		log.Printf("[CommentCache] Get decode error: key=%s err=%v", key, err)
		c.client.Del(ctx, key)
		return nil, false, nil
	}

	log.Printf("[CommentCache] Get HIT: key=%s comments=%d", key, len(tree))
	return tree, true, nil
}

// Set stores the tree for a target.
func (c *RedisCommentTreeCache) Set(ctx context.Context, kind string, targetID int64, tree []*model.Comment) error {
	key := commentKey(kind, targetID)

	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("marshal comment tree: %w", err)
	}

	if err := c.client.Set(ctx, key, data, CommentCacheTTL).Err(); err != nil {
		log.Printf("[CommentCache] Set FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("set comment tree: %w", err)
	}

	log.Printf("[CommentCache] Set OK: key=%s comments=%d ttl=%v", key, len(tree), CommentCacheTTL)
	return nil
}

// Invalidate drops the cached tree for a target.
func (c *RedisCommentTreeCache) Invalidate(ctx context.Context, kind string, targetID int64) error {
	key := commentKey(kind, targetID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("[CommentCache] Invalidate FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("invalidate comment tree: %w", err)
	}

	log.Printf("[CommentCache] Invalidate OK: key=%s", key)
	return nil
}
