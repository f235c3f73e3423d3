package clock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// runLogTTL is how long completed-run records are kept
	runLogTTL = 30 * 24 * time.Hour
)

// Compile-time interface checks.
var (
	_ KVStore     = (*RedisStore)(nil)
	_ RunRecorder = (*RedisStore)(nil)
)

// RedisStore is a KVStore backed by Redis
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis at addr and verifies the connection
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("✅ Connected to Redis at %s", addr)
	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Close closes the Redis connection
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

func (rs *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := rs.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load %s from Redis: %w", key, err)
	}
	return value, nil
}

func (rs *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := rs.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s to Redis: %w", key, err)
	}
	return nil
}

func (rs *RedisStore) Remove(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to remove %s from Redis: %w", key, err)
	}
	return nil
}

// RecordRun saves a completed run under brew_runs:{kind}:{date}:{id}
func (rs *RedisStore) RecordRun(ctx context.Context, record RunRecord) error {
	key := runLogKey(record)

	err := rs.client.HSet(ctx, key, map[string]interface{}{
		"kind":        string(record.Kind),
		"id":          record.ID,
		"stepIndex":   record.StepIndex,
		"duration":    int(record.Duration.Seconds()),
		"completedAt": record.CompletedAt.Format(time.RFC3339),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}

	rs.client.Expire(ctx, key, runLogTTL)

	log.Printf("Saved %s run %s (%v)", record.Kind, record.ID, record.Duration)
	return nil
}

func runLogKey(record RunRecord) string {
	return fmt.Sprintf("brew_runs:%s:%s:%s", record.Kind, record.CompletedAt.Format("2006-01-02"), record.ID)
}
