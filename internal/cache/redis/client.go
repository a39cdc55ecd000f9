package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/JoeyRudd/ai-fitness-coach/internal/coach"
	"github.com/JoeyRudd/ai-fitness-coach/pkg/config"
	"github.com/JoeyRudd/ai-fitness-coach/pkg/logger"
)

// Client caches engine replies keyed by a hash of the incoming message and
// transcript. Only general-intent replies are cached; profile-dependent
// answers must always be recomputed.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := time.Duration(cfg.TTLSec) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	logger.Info("Redis cache initialized",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.Duration("ttl", ttl),
	)

	return &Client{rdb: rdb, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetReply returns the cached response for key, or (nil, nil) on a miss.
func (c *Client) GetReply(ctx context.Context, key string) (*coach.Response, error) {
	data, err := c.rdb.Get(ctx, replyKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached reply: %w", err)
	}

	var resp coach.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode cached reply: %w", err)
	}
	return &resp, nil
}

func (c *Client) SetReply(ctx context.Context, key string, resp *coach.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode reply: %w", err)
	}
	if err := c.rdb.Set(ctx, replyKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache reply: %w", err)
	}
	return nil
}

func replyKey(key string) string {
	return "reply:" + key
}
