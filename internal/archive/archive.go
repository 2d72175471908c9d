// Package archive offloads raw prompt text to an external best-effort store.
// Failure is intentionally non-propagating: callers receive false and carry
// on without an archive reference.
package archive

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Archiver stores raw content under a key. Store never returns an error:
// any transport or configuration failure is reported as false.
type Archiver interface {
	Store(ctx context.Context, key, content string) bool
}

// Noop is the archiver used when no external store is configured. Every
// call trivially reports failure.
type Noop struct{}

func (Noop) Store(ctx context.Context, key, content string) bool {
	return false
}

// RedisArchiver keeps raw prompts in Redis with an optional TTL.
type RedisArchiver struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisArchiver(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisArchiver {
	return &RedisArchiver{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (a *RedisArchiver) Store(ctx context.Context, key, content string) bool {
	if err := a.client.Set(ctx, key, content, a.ttl).Err(); err != nil {
		a.logger.Warn("Prompt archival failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	return true
}
