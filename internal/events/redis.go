package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisEmitter publishes events as JSON to a Redis channel so external
// consumers (indexers, dashboards) can follow the registry.
type RedisEmitter struct {
	client  *redis.Client
	channel string
}

// NewRedisEmitter connects to Redis and returns an emitter publishing to
// the given channel. Returns nil if the URL is empty (Redis not configured).
func NewRedisEmitter(url, channel string) (*RedisEmitter, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisEmitter{client: client, channel: channel}, nil
}

// Emit publishes the event to the configured channel
func (e *RedisEmitter) Emit(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return e.client.Publish(ctx, e.channel, payload).Err()
}

// Close closes the Redis connection
func (e *RedisEmitter) Close() error {
	return e.client.Close()
}
