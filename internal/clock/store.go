package clock

import (
	"context"
	"sync"
	"time"
)

// KVStore is the durable key-value store timer state is persisted to.
// Get returns ErrKeyNotFound for a missing key.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// RunRecord describes a timer run that ran to completion
type RunRecord struct {
	Kind        Kind          `json:"kind"`
	ID          string        `json:"id"`
	StepIndex   int           `json:"stepIndex"`
	Duration    time.Duration `json:"duration"`
	CompletedAt time.Time     `json:"completedAt"`
}

// RunRecorder keeps a log of completed runs
type RunRecorder interface {
	RecordRun(ctx context.Context, record RunRecord) error
}

// Compile-time interface checks.
var (
	_ KVStore     = (*MemoryStore)(nil)
	_ RunRecorder = (*MemoryStore)(nil)
)

// MemoryStore is an in-process KVStore, used when Redis is not configured
// and in tests. Safe for concurrent access.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	runs   []RunRecord
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// RecordRun appends a completed run
func (s *MemoryStore) RecordRun(ctx context.Context, record RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, record)
	return nil
}

// Runs returns the recorded runs, oldest first
func (s *MemoryStore) Runs() []RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RunRecord, len(s.runs))
	copy(out, s.runs)
	return out
}
