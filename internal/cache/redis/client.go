package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/scheme-mitra/backend/pkg/logger"
)

// Client caches generated replies so repeated questions do not burn
// model tokens. Replies are keyed by a hash of the query plus the
// profile signature; session-specific history is deliberately not
// part of the key, so only history-independent turns should be
// cached.
type Client struct {
	client *redis.Client
}

// CachedReply is the stored unit: the model's text plus the scheme
// ids it mentioned, so a cache hit still feeds the continuity signal.
type CachedReply struct {
	Reply        string   `json:"reply"`
	MentionedIDs []string `json:"mentioned_ids"`
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) SetReply(ctx context.Context, queryHash string, reply CachedReply, ttl time.Duration) error {
	data, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	if err := c.client.Set(ctx, "reply:"+queryHash, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set reply cache: %w", err)
	}

	logger.Debug("Reply cached", zap.String("query_hash", queryHash), zap.Duration("ttl", ttl))
	return nil
}

func (c *Client) GetReply(ctx context.Context, queryHash string) (CachedReply, bool, error) {
	data, err := c.client.Get(ctx, "reply:"+queryHash).Bytes()
	if err == redis.Nil {
		return CachedReply{}, false, nil
	}
	if err != nil {
		return CachedReply{}, false, fmt.Errorf("failed to get reply cache: %w", err)
	}

	var reply CachedReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return CachedReply{}, false, fmt.Errorf("failed to unmarshal reply: %w", err)
	}

	logger.Debug("Reply cache hit", zap.String("query_hash", queryHash))
	return reply, true, nil
}

// InvalidateReplies drops every cached reply. Called after a forced
// catalog refresh, since cached text may reference stale schemes.
func (c *Client) InvalidateReplies(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "reply:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("Failed to delete cache key", zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Reply cache invalidated")
	return nil
}
