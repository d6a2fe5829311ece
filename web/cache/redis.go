// Package cache connects to the Redis server that backs the access throttle.
// It supports both embedded Redis (miniredis) and an external Redis server.
package cache

import (
	"context"
	"fmt"

	"github.com/sessiontodo/todo/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Redis owns a client and, when embedded, the in-process server behind it.
type Redis struct {
	client    *redis.Client
	miniRedis *miniredis.Miniredis
}

// Open connects to addr. If addr is empty, an embedded Redis is started.
func Open(ctx context.Context, addr string) (*Redis, error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to start embedded Redis: %w", err)
		}
		logger.Info("Embedded Redis started on", mr.Addr())
		return &Redis{
			client:    redis.NewClient(&redis.Options{Addr: mr.Addr()}),
			miniRedis: mr,
		}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	logger.Info("Connected to external Redis at", addr)
	return &Redis{client: client}, nil
}

func (r *Redis) Client() *redis.Client {
	return r.client
}

// IsEmbedded returns true if using embedded Redis.
func (r *Redis) IsEmbedded() bool {
	return r.miniRedis != nil
}

// Close closes the connection and stops embedded Redis if running.
func (r *Redis) Close() error {
	err := r.client.Close()
	if r.miniRedis != nil {
		r.miniRedis.Close()
	}
	return err
}
