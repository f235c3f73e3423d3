package clock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

const (
	storageKeyPrefix = "activeTimer-"
	writeTimeout     = 3 * time.Second
)

// StorageKey returns the store key a kind's state lives under
func StorageKey(kind Kind) string {
	return storageKeyPrefix + string(kind)
}

type writeOp struct {
	key    string
	value  string
	remove bool
}

// PersistenceManager writes timer state to a KVStore. Writes are buffered
// per key and applied by a single goroutine, so callers never wait on the
// store. While the store is slow only the latest write for each key is
// kept. Reads are synchronous.
type PersistenceManager struct {
	store KVStore

	mu      sync.Mutex
	closed  bool
	pending map[string]writeOp
	order   []string
	waiters []chan struct{}
	wake    chan struct{}
	done    chan struct{}
}

// NewPersistenceManager starts the writer for store
func NewPersistenceManager(store KVStore) *PersistenceManager {
	pm := &PersistenceManager{
		store:   store,
		pending: make(map[string]writeOp),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go pm.writeLoop()
	return pm
}

// Store returns the underlying store
func (pm *PersistenceManager) Store() KVStore {
	return pm.store
}

// Save queues state for writing. A nil state removes the kind's record.
func (pm *PersistenceManager) Save(kind Kind, state *TimerState) {
	if state == nil {
		pm.Remove(kind)
		return
	}

	data, err := json.Marshal(state)
	if err != nil {
		log.Printf("❌ Failed to encode %s timer state: %v", kind, err)
		return
	}

	log.Printf("💾 Saving %s timer - paused: %v, duration: %ds, alerts: %d",
		kind, state.Paused, state.DurationSeconds, len(state.NotificationIDs))
	pm.enqueue(writeOp{key: StorageKey(kind), value: string(data)})
}

// Remove queues deletion of the kind's record
func (pm *PersistenceManager) Remove(kind Kind) {
	pm.enqueue(writeOp{key: StorageKey(kind), remove: true})
}

// Load reads and decodes the kind's stored state. Missing records return
// ErrKeyNotFound and undecodable ones ErrStateCorrupted.
func (pm *PersistenceManager) Load(ctx context.Context, kind Kind) (*TimerState, error) {
	raw, err := pm.store.Get(ctx, StorageKey(kind))
	if err != nil {
		return nil, err
	}

	var state TimerState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupted, err)
	}
	return &state, nil
}

// Flush blocks until every write queued before the call has been applied
func (pm *PersistenceManager) Flush(ctx context.Context) error {
	flushed := make(chan struct{})

	pm.mu.Lock()
	if pm.closed {
		pm.mu.Unlock()
		return nil
	}
	pm.waiters = append(pm.waiters, flushed)
	pm.signalLocked()
	pm.mu.Unlock()

	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes and closes the store
func (pm *PersistenceManager) Close() error {
	pm.mu.Lock()
	if pm.closed {
		pm.mu.Unlock()
		return nil
	}
	pm.closed = true
	close(pm.wake)
	pm.mu.Unlock()

	<-pm.done
	return pm.store.Close()
}

// enqueue never blocks: a write replaces any pending one for the same key
func (pm *PersistenceManager) enqueue(op writeOp) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.closed {
		log.Printf("⚠️ Persistence closed, dropping write for %q", op.key)
		return
	}
	if _, ok := pm.pending[op.key]; !ok {
		pm.order = append(pm.order, op.key)
	}
	pm.pending[op.key] = op
	pm.signalLocked()
}

func (pm *PersistenceManager) signalLocked() {
	select {
	case pm.wake <- struct{}{}:
	default:
	}
}

func (pm *PersistenceManager) writeLoop() {
	defer close(pm.done)

	for range pm.wake {
		pm.drain()
	}
	pm.drain()
}

// drain applies pending writes until there are none, then releases
// waiting flushes
func (pm *PersistenceManager) drain() {
	for {
		pm.mu.Lock()
		ops := make([]writeOp, 0, len(pm.order))
		for _, key := range pm.order {
			ops = append(ops, pm.pending[key])
		}
		waiters := pm.waiters
		pm.pending = make(map[string]writeOp)
		pm.order = nil
		pm.waiters = nil
		pm.mu.Unlock()

		if len(ops) == 0 && len(waiters) == 0 {
			return
		}

		for _, op := range ops {
			pm.apply(op)
		}
		for _, flushed := range waiters {
			close(flushed)
		}
	}
}

func (pm *PersistenceManager) apply(op writeOp) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var err error
	if op.remove {
		err = pm.store.Remove(ctx, op.key)
	} else {
		err = pm.store.Set(ctx, op.key, op.value)
	}
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		log.Printf("❌ Failed to persist %s: %v", op.key, err)
	}
}
