package clock

import (
	"context"
	"fmt"
	"log"
	"time"
)

const (
	// CompleteLabel tags the alert fired when a run ends
	CompleteLabel = "complete"

	// minAlertDelay is the earliest an alert may be scheduled from now
	minAlertDelay = time.Second
)

// Offset is an alert fired offsetSeconds after a run's base time
type Offset struct {
	Label         string
	OffsetSeconds int64
	Title         string
	Body          string
}

// HopAlert is a hop addition due secondsBeforeEnd before the boil ends
type HopAlert struct {
	Label            string
	SecondsBeforeEnd int64
	Title            string
	Body             string
}

// AlertKey returns the deterministic identifier of a timer's alert
func AlertKey(kind Kind, label string) string {
	return fmt.Sprintf("%s-%s", kind, label)
}

// Channels are created once at startup, one per timer kind
var Channels = map[Kind]Channel{
	KindMash: {ID: "mash-steps", Name: "Mash rest alerts", Importance: ImportanceHigh},
	KindBoil: {ID: "boil-steps", Name: "Boil alerts", Importance: ImportanceHigh},
}

var completionContent = map[Kind]AlertContent{
	KindMash: {Title: "Rest complete", Body: "The next step can begin."},
	KindBoil: {Title: "Boil complete", Body: "Time to chill the wort!"},
}

// Scheduler turns timer offsets into platform alerts. Every notifier call
// is best-effort: failures are logged and never touch timer state beyond
// the alert bookkeeping.
type Scheduler struct {
	notifier Notifier
	clock    Clock
}

// NewScheduler creates a scheduler. A nil notifier behaves as NoopNotifier.
func NewScheduler(notifier Notifier, clock Clock) *Scheduler {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if clock == nil {
		clock = NewRealClock()
	}
	return &Scheduler{
		notifier: notifier,
		clock:    clock,
	}
}

// Setup creates the notification channels
func (s *Scheduler) Setup(ctx context.Context) {
	for _, kind := range Kinds {
		channel := Channels[kind]
		if err := s.notifier.CreateChannel(ctx, channel); err != nil {
			log.Printf("⚠️ Failed to create notification channel %s: %v", channel.ID, err)
		}
	}
}

// ScheduleAll replaces the timer's alerts with one per offset and a final
// completion alert at base+totalSeconds. Offsets at or before the base, or
// at or beyond the total, are skipped. It returns the number of alerts the
// platform accepted.
func (s *Scheduler) ScheduleAll(ctx context.Context, t *Timer, offsets []Offset, base time.Time, totalSeconds int64) int {
	s.CancelTimer(ctx, t)

	if !s.permitted(ctx, t.Kind()) {
		return 0
	}

	scheduled := 0
	for _, offset := range offsets {
		if offset.OffsetSeconds <= 0 || offset.OffsetSeconds >= totalSeconds {
			log.Printf("Skipping %s alert %s at offset %ds of %ds", t.Kind(), offset.Label, offset.OffsetSeconds, totalSeconds)
			continue
		}
		fireAt := base.Add(time.Duration(offset.OffsetSeconds) * time.Second)
		if s.schedule(ctx, t, offset.Label, s.content(t.Kind(), offset.Title, offset.Body), fireAt) {
			scheduled++
		}
	}

	end := base.Add(time.Duration(totalSeconds) * time.Second)
	if s.schedule(ctx, t, CompleteLabel, s.completion(t.Kind()), end) {
		scheduled++
	}
	return scheduled
}

// ScheduleHops replaces the boil timer's alerts for a boil of
// totalBoilSeconds with remainingSeconds left. Each hop fires
// total - secondsBeforeEnd - elapsed seconds from now, but never sooner
// than one second, so a hop that came due before the pause fires right
// after the resume. Hops due at or before the boil starts are skipped.
func (s *Scheduler) ScheduleHops(ctx context.Context, t *Timer, hops []HopAlert, totalBoilSeconds, remainingSeconds int64) int {
	s.CancelTimer(ctx, t)

	if !s.permitted(ctx, t.Kind()) {
		return 0
	}

	now := s.clock.Now()
	elapsed := totalBoilSeconds - remainingSeconds
	if elapsed < 0 {
		elapsed = 0
	}

	scheduled := 0
	for _, hop := range hops {
		if hop.SecondsBeforeEnd >= totalBoilSeconds {
			continue
		}

		delay := totalBoilSeconds - hop.SecondsBeforeEnd - elapsed
		fireAt := now.Add(time.Duration(delay) * time.Second)
		if s.schedule(ctx, t, hop.Label, s.content(t.Kind(), hop.Title, hop.Body), fireAt) {
			scheduled++
		}
	}

	end := now.Add(time.Duration(remainingSeconds) * time.Second)
	if s.schedule(ctx, t, CompleteLabel, s.completion(t.Kind()), end) {
		scheduled++
	}
	return scheduled
}

// CancelAll cancels the timer's alerts for the given offsets and the
// completion alert. Alerts never scheduled are ignored.
func (s *Scheduler) CancelAll(ctx context.Context, t *Timer, offsets []Offset) {
	labels := make([]string, 0, len(offsets)+1)
	for _, offset := range offsets {
		labels = append(labels, offset.Label)
	}
	labels = append(labels, CompleteLabel)

	for _, label := range labels {
		key := AlertKey(t.Kind(), label)
		if platformID, ok := t.RemoveNotificationID(key); ok {
			s.cancel(ctx, key, platformID)
		}
	}
}

// CancelTimer cancels every alert recorded against the timer
func (s *Scheduler) CancelTimer(ctx context.Context, t *Timer) {
	for key := range t.NotificationIDs() {
		if platformID, ok := t.RemoveNotificationID(key); ok {
			s.cancel(ctx, key, platformID)
		}
	}
}

// CancelIDs cancels alerts of a run that is no longer held by a timer
func (s *Scheduler) CancelIDs(ctx context.Context, ids map[string]string) {
	for key, platformID := range ids {
		s.cancel(ctx, key, platformID)
	}
}

func (s *Scheduler) schedule(ctx context.Context, t *Timer, label string, content AlertContent, fireAt time.Time) bool {
	key := AlertKey(t.Kind(), label)

	earliest := s.clock.Now().Add(minAlertDelay)
	if fireAt.Before(earliest) {
		fireAt = earliest
	}

	platformID, err := s.notifier.ScheduleAt(ctx, key, content, fireAt)
	if err != nil {
		log.Printf("⚠️ Failed to schedule alert %s: %v", key, err)
		return false
	}

	if err := t.SetNotificationID(key, platformID, fireAt); err != nil {
		// The timer went idle while scheduling; do not leave the alert behind
		log.Printf("⚠️ %s timer idle, withdrawing alert %s", t.Kind(), key)
		s.cancel(ctx, key, platformID)
		return false
	}

	log.Printf("🔔 Scheduled %s at %s", key, fireAt.Format("15:04:05"))
	return true
}

func (s *Scheduler) cancel(ctx context.Context, key, platformID string) {
	if err := s.notifier.Cancel(ctx, platformID); err != nil {
		log.Printf("⚠️ Failed to cancel alert %s: %v", key, err)
	}
}

// permitted asks for notification permission. Denied or failed requests
// mean the run proceeds without alerts.
func (s *Scheduler) permitted(ctx context.Context, kind Kind) bool {
	status, err := s.notifier.RequestPermission(ctx)
	if err != nil {
		log.Printf("⚠️ Notification permission request failed, %s timer runs without alerts: %v", kind, err)
		return false
	}
	if status == PermissionDenied {
		log.Printf("⚠️ Notifications denied, %s timer runs without alerts", kind)
		return false
	}
	return true
}

func (s *Scheduler) content(kind Kind, title, body string) AlertContent {
	return AlertContent{Title: title, Body: body, ChannelID: Channels[kind].ID}
}

func (s *Scheduler) completion(kind Kind) AlertContent {
	c := completionContent[kind]
	return s.content(kind, c.Title, c.Body)
}
