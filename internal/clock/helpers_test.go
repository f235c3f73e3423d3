package clock

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeClock is a Clock whose time only moves when told to
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 18, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// flush waits for queued writes to reach the store
func flush(t *testing.T, pm *PersistenceManager) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pm.Flush(ctx))
}

// newTestTimer builds a timer persisting into a fresh MemoryStore
func newTestTimer(t *testing.T, kind Kind, clk Clock) (*Timer, *PersistenceManager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	pm := NewPersistenceManager(store)
	t.Cleanup(func() { pm.Close() })
	return NewTimer(kind, clk, pm), pm, store
}

// timeMatcher matches a time.Time argument by instant
type timeMatcher struct {
	want time.Time
}

func at(want time.Time) gomock.Matcher {
	return timeMatcher{want: want}
}

func (m timeMatcher) Matches(x any) bool {
	got, ok := x.(time.Time)
	return ok && got.Equal(m.want)
}

func (m timeMatcher) String() string {
	return fmt.Sprintf("is the instant %s", m.want.Format(time.RFC3339))
}
