package clock

import (
	"errors"
	"fmt"
	"log"
)

// Kind identifies one of the brew-day timers
type Kind string

const (
	KindMash Kind = "mash"
	KindBoil Kind = "boil"
)

// Kinds lists every timer kind in a stable order
var Kinds = []Kind{KindMash, KindBoil}

// ParseKind validates a kind string
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMash, KindBoil:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Status is the observable condition of a timer. It is derived from
// TimerState, never stored.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
)

// Sentinel errors used by the timer engine
var (
	ErrUnknownKind     = errors.New("unknown timer kind")
	ErrAlreadyRunning  = errors.New("timer is already running")
	ErrNotRunning      = errors.New("timer is not running")
	ErrNotPaused       = errors.New("timer is not paused")
	ErrNoTimeRemaining = errors.New("timer has no time remaining")
	ErrStateCorrupted  = errors.New("persisted timer state is corrupted")
	ErrKeyNotFound     = errors.New("key not found")
)

// TimerState is the persisted record of one timer run
type TimerState struct {
	ID              string `json:"id"`
	Kind            Kind   `json:"kind"`
	StepIndex       int    `json:"stepIndex"`
	DurationSeconds int64  `json:"durationSeconds"`
	// TotalSeconds is the length of the run as started, unchanged by pauses
	TotalSeconds int64 `json:"totalSeconds"`
	// StartTimestamp is epoch milliseconds of the last (re)start, nil while paused
	StartTimestamp *int64 `json:"startTimestamp"`
	Paused         bool   `json:"paused"`
	// NotificationIDs maps an alert key ("boil-hop-0") to the platform id
	NotificationIDs map[string]string `json:"notificationIds"`
	// NotificationDue maps an alert key to its fire time in epoch milliseconds
	NotificationDue map[string]int64 `json:"notificationDue,omitempty"`
}

// Status derives the state's status
func (s *TimerState) Status() Status {
	if s == nil {
		return StatusIdle
	}
	if s.Paused {
		return StatusPaused
	}
	return StatusRunning
}

// RemainingAt returns the remaining seconds at nowMs
func (s *TimerState) RemainingAt(nowMs int64) int64 {
	if s == nil {
		return 0
	}
	if s.Paused || s.StartTimestamp == nil {
		if s.DurationSeconds < 0 {
			return 0
		}
		return s.DurationSeconds
	}
	return Remaining(s.DurationSeconds, *s.StartTimestamp, nowMs)
}

// Clone returns a deep copy
func (s *TimerState) Clone() *TimerState {
	if s == nil {
		return nil
	}

	c := *s
	if s.StartTimestamp != nil {
		start := *s.StartTimestamp
		c.StartTimestamp = &start
	}
	c.NotificationIDs = make(map[string]string, len(s.NotificationIDs))
	for k, v := range s.NotificationIDs {
		c.NotificationIDs[k] = v
	}
	if len(s.NotificationDue) > 0 {
		c.NotificationDue = make(map[string]int64, len(s.NotificationDue))
		for k, v := range s.NotificationDue {
			c.NotificationDue[k] = v
		}
	} else {
		c.NotificationDue = nil
	}
	return &c
}

// validateAndRepair checks a loaded state for kind and consistency.
// Recoverable inconsistencies are repaired in place; anything else is
// reported as ErrStateCorrupted.
func (s *TimerState) validateAndRepair(kind Kind) error {
	if s.Kind != kind {
		return fmt.Errorf("%w: kind %q stored under %q", ErrStateCorrupted, s.Kind, kind)
	}

	if !s.Paused && s.StartTimestamp == nil {
		return fmt.Errorf("%w: running state without start timestamp", ErrStateCorrupted)
	}

	repairs := 0

	if s.DurationSeconds < 0 {
		log.Printf("⚠️ Negative duration %d for %s timer, setting to 0", s.DurationSeconds, kind)
		s.DurationSeconds = 0
		repairs++
	}

	if s.TotalSeconds < s.DurationSeconds {
		s.TotalSeconds = s.DurationSeconds
		repairs++
	}

	if s.Paused && s.StartTimestamp != nil {
		log.Printf("⚠️ Paused %s timer carries a start timestamp, dropping it", kind)
		s.StartTimestamp = nil
		repairs++
	}

	if s.NotificationIDs == nil {
		s.NotificationIDs = make(map[string]string)
	}

	for key := range s.NotificationDue {
		if _, ok := s.NotificationIDs[key]; !ok {
			delete(s.NotificationDue, key)
			repairs++
		}
	}

	if repairs > 0 {
		log.Printf("🔧 Repaired %d inconsistencies in stored %s timer", repairs, kind)
	}
	return nil
}
