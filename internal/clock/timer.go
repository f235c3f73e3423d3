package clock

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StartOption configures a run started with Timer.Start
type StartOption func(*TimerState)

// WithRunID sets the run id. Without it a random id is generated.
func WithRunID(id string) StartOption {
	return func(s *TimerState) {
		if id != "" {
			s.ID = id
		}
	}
}

// WithStepIndex sets which mash rest or boil phase the run belongs to
func WithStepIndex(index int) StartOption {
	return func(s *TimerState) {
		s.StepIndex = index
	}
}

// Timer is the state machine for one timer kind. Remaining time is always
// derived from the wall clock; Tick only publishes it and detects expiry.
// In-memory transitions are applied before the persisted write is queued,
// so callers never wait on storage.
type Timer struct {
	mu sync.RWMutex

	kind        Kind
	state       *TimerState // nil while idle
	remaining   int64       // last published by Tick
	clock       Clock
	persistence *PersistenceManager

	onTick   func(Kind, int64)
	onExpire func(*TimerState)
}

// NewTimer creates an idle timer. persistence may be nil.
func NewTimer(kind Kind, clock Clock, persistence *PersistenceManager) *Timer {
	if clock == nil {
		clock = NewRealClock()
	}
	return &Timer{
		kind:        kind,
		clock:       clock,
		persistence: persistence,
	}
}

// SetCallbacks sets the tick and expiry callbacks. onExpire receives the
// state as it was when the run reached zero, including any alerts still
// recorded against it.
func (t *Timer) SetCallbacks(onTick func(Kind, int64), onExpire func(*TimerState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTick = onTick
	t.onExpire = onExpire
}

// Kind returns the timer kind
func (t *Timer) Kind() Kind {
	return t.kind
}

// Start begins a new run of durationSeconds. It fails without changing
// anything if a run is already counting down.
func (t *Timer) Start(durationSeconds int64, opts ...StartOption) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := Millis(t.clock.Now())
	if t.state != nil && !t.state.Paused && t.state.RemainingAt(now) > 0 {
		return ErrAlreadyRunning
	}

	if durationSeconds < 0 {
		durationSeconds = 0
	}

	state := &TimerState{
		ID:              uuid.New().String(),
		Kind:            t.kind,
		DurationSeconds: durationSeconds,
		TotalSeconds:    durationSeconds,
		StartTimestamp:  &now,
		NotificationIDs: make(map[string]string),
	}
	for _, opt := range opts {
		opt(state)
	}

	t.state = state
	t.remaining = durationSeconds
	t.persistLocked()

	log.Printf("▶️ Started %s timer %s (step %d) for %s", t.kind, state.ID, state.StepIndex, FormatSeconds(durationSeconds))
	return nil
}

// Pause freezes the remaining time, which becomes the duration of the run
// when it resumes. Outstanding alerts are the caller's to cancel.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == nil || t.state.Paused {
		return ErrNotRunning
	}

	remaining := t.state.RemainingAt(Millis(t.clock.Now()))
	t.state.DurationSeconds = remaining
	t.state.StartTimestamp = nil
	t.state.Paused = true
	t.remaining = remaining
	t.persistLocked()

	log.Printf("⏸️ %s timer paused with %s remaining", t.kind, FormatSeconds(remaining))
	return nil
}

// Resume continues a paused run from its frozen remaining time. A run
// that was frozen at zero cannot be resumed.
func (t *Timer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == nil || !t.state.Paused {
		return ErrNotPaused
	}
	if t.state.DurationSeconds <= 0 {
		log.Printf("⚠️ Cannot resume %s timer: no time remaining", t.kind)
		return ErrNoTimeRemaining
	}

	now := Millis(t.clock.Now())
	t.state.StartTimestamp = &now
	t.state.Paused = false
	t.remaining = t.state.DurationSeconds
	t.persistLocked()

	log.Printf("▶️ %s timer resumed with %s remaining", t.kind, FormatSeconds(t.state.DurationSeconds))
	return nil
}

// Reset returns the timer to idle and reports the alerts that were still
// recorded so the caller can cancel them.
func (t *Timer) Reset() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var outstanding map[string]string
	if t.state != nil {
		outstanding = t.state.NotificationIDs
	}
	if outstanding == nil {
		outstanding = make(map[string]string)
	}

	t.state = nil
	t.remaining = 0
	if t.persistence != nil {
		t.persistence.Remove(t.kind)
	}

	log.Printf("🔄 %s timer reset (%d alerts outstanding)", t.kind, len(outstanding))
	return outstanding
}

// Tick recomputes and publishes the remaining time. Alerts whose fire time
// has passed are dropped from the bookkeeping. When a running timer reaches
// zero it is frozen at zero as paused, so it keeps reporting 0:00.
func (t *Timer) Tick() int64 {
	now := Millis(t.clock.Now())

	t.mu.Lock()
	var expired *TimerState
	var remaining int64

	switch {
	case t.state == nil:
		remaining = 0
	case t.state.Paused:
		remaining = t.state.DurationSeconds
	default:
		remaining = t.state.RemainingAt(now)
		changed := t.pruneFiredLocked(now)
		if remaining == 0 {
			expired = t.state.Clone()
			t.state.DurationSeconds = 0
			t.state.StartTimestamp = nil
			t.state.Paused = true
			t.state.NotificationIDs = make(map[string]string)
			t.state.NotificationDue = nil
			changed = true
		}
		if changed {
			t.persistLocked()
		}
	}

	t.remaining = remaining
	onTick, onExpire := t.onTick, t.onExpire
	t.mu.Unlock()

	if onTick != nil {
		onTick(t.kind, remaining)
	}
	if expired != nil {
		log.Printf("✅ %s timer %s finished", t.kind, expired.ID)
		if onExpire != nil {
			onExpire(expired)
		}
	}
	return remaining
}

// Run ticks the timer every interval until ctx is cancelled
func (t *Timer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.Tick()
		case <-ctx.Done():
			return
		}
	}
}

// GetRemainingSeconds returns the live remaining time
func (t *Timer) GetRemainingSeconds() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.RemainingAt(Millis(t.clock.Now()))
}

// GetFormattedTime returns the remaining time as M:SS
func (t *Timer) GetFormattedTime() string {
	return FormatSeconds(t.GetRemainingSeconds())
}

// LastPublished returns the remaining time published by the last Tick
func (t *Timer) LastPublished() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.remaining
}

// Status returns the derived status
func (t *Timer) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Status()
}

// IsRunning returns true while the timer is counting down
func (t *Timer) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Status() == StatusRunning && t.state.RemainingAt(Millis(t.clock.Now())) > 0
}

// IsPaused returns true if the timer is paused, including frozen at zero
func (t *Timer) IsPaused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Status() == StatusPaused
}

// EndTime returns when the current run will finish. ok is false unless
// the timer is running.
func (t *Timer) EndTime() (end time.Time, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.state.Status() != StatusRunning {
		return time.Time{}, false
	}
	return FromMillis(*t.state.StartTimestamp + t.state.DurationSeconds*1000), true
}

// Snapshot returns a copy of the current state, nil while idle
func (t *Timer) Snapshot() *TimerState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Clone()
}

// NotificationIDs returns a copy of the alert key to platform id mapping
func (t *Timer) NotificationIDs() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]string)
	if t.state == nil {
		return out
	}
	for k, v := range t.state.NotificationIDs {
		out[k] = v
	}
	return out
}

// SetNotificationID records the platform id of a scheduled alert. It fails
// with ErrNotRunning if the timer went idle in the meantime.
func (t *Timer) SetNotificationID(key, platformID string, fireAt time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == nil {
		return ErrNotRunning
	}
	if t.state.NotificationIDs == nil {
		t.state.NotificationIDs = make(map[string]string)
	}
	if t.state.NotificationDue == nil {
		t.state.NotificationDue = make(map[string]int64)
	}
	t.state.NotificationIDs[key] = platformID
	t.state.NotificationDue[key] = Millis(fireAt)
	t.persistLocked()
	return nil
}

// RemoveNotificationID drops an alert from the bookkeeping and returns its
// platform id
func (t *Timer) RemoveNotificationID(key string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == nil {
		return "", false
	}
	platformID, ok := t.state.NotificationIDs[key]
	if !ok {
		return "", false
	}
	delete(t.state.NotificationIDs, key)
	delete(t.state.NotificationDue, key)
	t.persistLocked()
	return platformID, true
}

// load installs a restored state without persisting it
func (t *Timer) load(state *TimerState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = state
	t.remaining = state.RemainingAt(Millis(t.clock.Now()))
}

func (t *Timer) pruneFiredLocked(now int64) bool {
	pruned := false
	for key, due := range t.state.NotificationDue {
		if due <= now {
			delete(t.state.NotificationDue, key)
			delete(t.state.NotificationIDs, key)
			pruned = true
		}
	}
	return pruned
}

func (t *Timer) persistLocked() {
	if t.persistence == nil {
		return
	}
	t.persistence.Save(t.kind, t.state.Clone())
}
