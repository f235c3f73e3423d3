package clock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redisAddr = "localhost:6379"

// newTestRedisStore skips the test if Redis is not available
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	store, err := NewRedisStore(ctx, redisAddr)
	if err != nil {
		t.Skip("Redis not available, skipping test")
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRedisStoreGetSetRemove(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()
	key := "test-brewday-" + t.Name()
	t.Cleanup(func() { store.Remove(ctx, key) })

	_, err := store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, key, `{"kind":"mash"}`))
	value, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"kind":"mash"}`, value)

	require.NoError(t, store.Remove(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// removing again is fine
	assert.NoError(t, store.Remove(ctx, key))
}

func TestRedisStoreResume(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()
	clk := newFakeClock()

	pm := NewPersistenceManager(store)
	t.Cleanup(func() {
		pm.Remove(KindBoil)
		flush(t, pm)
	})

	timer := NewTimer(KindBoil, clk, pm)
	require.NoError(t, timer.Start(3600, WithRunID("redis-boil")))
	flush(t, pm)

	clk.Advance(15 * time.Minute)
	restored := NewTimer(KindBoil, clk, pm)
	result := NewResumeManager(pm, clk).Restore(ctx, restored)

	assert.Equal(t, StatusRunning, result.Status)
	assert.Equal(t, "redis-boil", restored.Snapshot().ID)
	assert.Equal(t, int64(2700), restored.GetRemainingSeconds())
}

func TestRedisStoreRecordRun(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	record := RunRecord{
		Kind:        KindMash,
		ID:          "test-run-" + t.Name(),
		StepIndex:   1,
		Duration:    45 * time.Minute,
		CompletedAt: time.Date(2024, 5, 18, 10, 30, 0, 0, time.UTC),
	}
	require.NoError(t, store.RecordRun(ctx, record))

	key := runLogKey(record)
	assert.Equal(t, "brew_runs:mash:2024-05-18:"+record.ID, key)

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	t.Cleanup(func() {
		client.Del(ctx, key)
		client.Close()
	})

	fields, err := client.HGetAll(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "mash", fields["kind"])
	assert.Equal(t, "1", fields["stepIndex"])
	assert.Equal(t, "2700", fields["duration"])

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 29*24*time.Hour)
}
