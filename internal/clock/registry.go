package clock

import (
	"context"
	"log"
	"sync"
	"time"
)

// Registry owns one Timer per kind and is the single place brew-day
// phases are started and stopped. Starting a timer stops the other one
// first, so at most one run ever has live alerts.
type Registry struct {
	timers    map[Kind]*Timer
	scheduler *Scheduler
	recorder  RunRecorder
	clock     Clock

	// startMu serializes Start and StopAllTimers
	startMu sync.Mutex

	mu       sync.RWMutex
	onTick   func(Kind, int64)
	onExpire func(*TimerState)
}

// NewRegistry wires the mash and boil timers to the scheduler. recorder
// may be nil.
func NewRegistry(mash, boil *Timer, scheduler *Scheduler, recorder RunRecorder) *Registry {
	r := &Registry{
		timers: map[Kind]*Timer{
			KindMash: mash,
			KindBoil: boil,
		},
		scheduler: scheduler,
		recorder:  recorder,
		clock:     scheduler.clock,
	}
	for _, t := range r.timers {
		t.SetCallbacks(r.handleTick, r.handleExpire)
	}
	return r
}

// OnTick sets a subscriber for every published tick
func (r *Registry) OnTick(fn func(Kind, int64)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onTick = fn
}

// OnExpire sets a subscriber notified after a run finishes and its
// residual alerts were cancelled
func (r *Registry) OnExpire(fn func(*TimerState)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpire = fn
}

// Timer returns the timer for kind
func (r *Registry) Timer(kind Kind) (*Timer, error) {
	t, ok := r.timers[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	return t, nil
}

// Mash returns the mash timer
func (r *Registry) Mash() *Timer { return r.timers[KindMash] }

// Boil returns the boil timer
func (r *Registry) Boil() *Timer { return r.timers[KindBoil] }

// Scheduler returns the notification scheduler
func (r *Registry) Scheduler() *Scheduler { return r.scheduler }

// StopAllTimers resets both timers and cancels every alert they held.
// Both timers are idle when it returns; cancellation is best-effort.
func (r *Registry) StopAllTimers(ctx context.Context) {
	r.startMu.Lock()
	defer r.startMu.Unlock()

	r.stopAllLocked(ctx)
	log.Printf("⏹️ All timers stopped")
}

func (r *Registry) stopAllLocked(ctx context.Context) {
	for _, kind := range Kinds {
		ids := r.timers[kind].Reset()
		r.scheduler.CancelIDs(ctx, ids)
	}
}

// Start starts kind for durationSeconds and schedules an alert per offset
// plus the completion alert. It fails with ErrAlreadyRunning, touching
// neither timer, while kind is still counting down. Otherwise both timers
// are stopped first, which replaces a paused or finished run of kind.
func (r *Registry) Start(ctx context.Context, kind Kind, durationSeconds int64, offsets []Offset, opts ...StartOption) error {
	t, err := r.Timer(kind)
	if err != nil {
		return err
	}

	r.startMu.Lock()
	defer r.startMu.Unlock()

	if t.IsRunning() {
		return ErrAlreadyRunning
	}

	r.stopAllLocked(ctx)
	if err := t.Start(durationSeconds, opts...); err != nil {
		return err
	}

	r.scheduler.ScheduleAll(ctx, t, offsets, r.clock.Now(), t.GetRemainingSeconds())
	return nil
}

// Pause pauses kind and cancels its outstanding alerts
func (r *Registry) Pause(ctx context.Context, kind Kind) error {
	t, err := r.Timer(kind)
	if err != nil {
		return err
	}
	if err := t.Pause(); err != nil {
		return err
	}

	r.scheduler.CancelTimer(ctx, t)
	return nil
}

// Resume resumes kind and reschedules the hops still ahead of it along
// with the completion alert. hops may be nil.
func (r *Registry) Resume(ctx context.Context, kind Kind, hops []HopAlert) error {
	t, err := r.Timer(kind)
	if err != nil {
		return err
	}
	if err := t.Resume(); err != nil {
		return err
	}

	var total int64
	if state := t.Snapshot(); state != nil {
		total = state.TotalSeconds
	}
	r.scheduler.ScheduleHops(ctx, t, hops, total, t.GetRemainingSeconds())
	return nil
}

// Reset resets kind and cancels its alerts
func (r *Registry) Reset(ctx context.Context, kind Kind) error {
	t, err := r.Timer(kind)
	if err != nil {
		return err
	}

	ids := t.Reset()
	r.scheduler.CancelIDs(ctx, ids)
	return nil
}

// Restore loads both timers from storage. Alerts left behind by runs
// that finished while the process was down are cancelled.
func (r *Registry) Restore(ctx context.Context, rm *ResumeManager) []RestoreResult {
	results := make([]RestoreResult, 0, len(Kinds))
	for _, kind := range Kinds {
		result := rm.Restore(ctx, r.timers[kind])
		if result.Expired {
			r.scheduler.CancelIDs(ctx, result.Residual)
			if result.Finished != nil {
				r.recordRun(ctx, result.Finished, result.FinishedAt)
			}
		}
		results = append(results, result)
	}
	return results
}

// Run ticks both timers every interval until ctx is cancelled
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	var wg sync.WaitGroup
	for _, t := range r.timers {
		wg.Add(1)
		go func(t *Timer) {
			defer wg.Done()
			t.Run(ctx, interval)
		}(t)
	}
	wg.Wait()
}

func (r *Registry) handleTick(kind Kind, remaining int64) {
	r.mu.RLock()
	fn := r.onTick
	r.mu.RUnlock()

	if fn != nil {
		fn(kind, remaining)
	}
}

// handleExpire cancels what is still scheduled for the finished run and
// records it
func (r *Registry) handleExpire(state *TimerState) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	r.scheduler.CancelIDs(ctx, state.NotificationIDs)

	r.recordRun(ctx, state, r.clock.Now())

	r.mu.RLock()
	fn := r.onExpire
	r.mu.RUnlock()

	if fn != nil {
		fn(state)
	}
}

func (r *Registry) recordRun(ctx context.Context, state *TimerState, completedAt time.Time) {
	if r.recorder == nil {
		return
	}

	record := RunRecord{
		Kind:        state.Kind,
		ID:          state.ID,
		StepIndex:   state.StepIndex,
		Duration:    time.Duration(state.TotalSeconds) * time.Second,
		CompletedAt: completedAt,
	}
	if err := r.recorder.RecordRun(ctx, record); err != nil {
		log.Printf("⚠️ Failed to record %s run %s: %v", state.Kind, state.ID, err)
	}
}
