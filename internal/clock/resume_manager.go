package clock

import (
	"context"
	"errors"
	"log"
	"time"
)

// RestoreResult describes what a restore found for one timer
type RestoreResult struct {
	Kind   Kind
	Status Status
	// Expired is set when a stored running timer finished while the process
	// was suspended.
	Expired bool
	// Residual holds alerts still recorded against an expired run. They
	// should be cancelled.
	Residual map[string]string
	// Finished is the expired run and FinishedAt the moment it reached zero
	Finished   *TimerState
	FinishedAt time.Time
}

// ResumeManager restores timers from persisted state at process start
type ResumeManager struct {
	persistence *PersistenceManager
	clock       Clock
}

// NewResumeManager creates a resume manager reading from persistence
func NewResumeManager(persistence *PersistenceManager, clock Clock) *ResumeManager {
	if clock == nil {
		clock = NewRealClock()
	}
	return &ResumeManager{
		persistence: persistence,
		clock:       clock,
	}
}

// Restore loads the timer's stored state and applies it. Problems with the
// stored record are never returned: the timer falls back to idle.
//
// A running record is re-derived against the wall clock; if its time ran
// out while suspended the record is cleared and the timer stays idle. A
// paused record is restored verbatim.
func (rm *ResumeManager) Restore(ctx context.Context, t *Timer) RestoreResult {
	kind := t.Kind()
	result := RestoreResult{Kind: kind, Status: StatusIdle, Residual: map[string]string{}}

	if rm.persistence == nil {
		log.Printf("⚠️ Persistence not available, %s timer starts idle", kind)
		return result
	}

	state, err := rm.persistence.Load(ctx, kind)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		return result
	case errors.Is(err, ErrStateCorrupted):
		rm.discard(kind, err)
		return result
	case err != nil:
		log.Printf("❌ Failed to load %s timer state: %v", kind, err)
		log.Printf("🔄 Falling back to idle %s timer", kind)
		return result
	}

	if err := state.validateAndRepair(kind); err != nil {
		rm.discard(kind, err)
		return result
	}

	rm.logResumeDebugInfo(state)

	if !state.Paused {
		remaining := state.RemainingAt(Millis(rm.clock.Now()))
		if remaining <= 0 {
			log.Printf("⚡ %s timer %s finished while suspended, clearing it", kind, state.ID)
			rm.persistence.Remove(kind)
			result.Expired = true
			result.Residual = state.NotificationIDs
			result.Finished = state
			result.FinishedAt = rm.clock.Now()
			if state.StartTimestamp != nil {
				result.FinishedAt = FromMillis(*state.StartTimestamp + state.DurationSeconds*1000)
			}
			return result
		}
	}

	t.load(state)
	result.Status = state.Status()
	log.Printf("✅ Restored %s timer %s: %s, %s remaining",
		kind, state.ID, result.Status, t.GetFormattedTime())
	return result
}

func (rm *ResumeManager) discard(kind Kind, reason error) {
	log.Printf("⚠️ Discarding stored %s timer: %v", kind, reason)
	rm.persistence.Remove(kind)
}

func (rm *ResumeManager) logResumeDebugInfo(state *TimerState) {
	start := "none"
	if state.StartTimestamp != nil {
		start = FromMillis(*state.StartTimestamp).Format("2006-01-02 15:04:05")
	}
	log.Printf("Loaded %s timer %s - step: %d, paused: %v, duration: %ds, started: %s, alerts: %d",
		state.Kind, state.ID, state.StepIndex, state.Paused, state.DurationSeconds, start, len(state.NotificationIDs))
}
