package clock

//go:generate mockgen -source=notifications.go -destination=mock_notifier.go -package=clock

import (
	"context"
	"log"
	"time"
)

// PermissionStatus is the platform's answer to a notification permission request
type PermissionStatus int

const (
	PermissionDenied PermissionStatus = iota
	PermissionGranted
	PermissionUnavailable
)

// String returns a human-readable permission status.
func (p PermissionStatus) String() string {
	switch p {
	case PermissionDenied:
		return "denied"
	case PermissionGranted:
		return "granted"
	case PermissionUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Channel describes a notification channel alerts are posted to
type Channel struct {
	ID         string
	Name       string
	Importance int
}

// Importance levels for channels
const (
	ImportanceDefault = 3
	ImportanceHigh    = 4
)

// AlertContent is what an alert shows
type AlertContent struct {
	Title     string
	Body      string
	ChannelID string
}

// Notifier is the platform notification service. Implementations may be
// unavailable; the engine treats every call as best-effort.
type Notifier interface {
	RequestPermission(ctx context.Context) (PermissionStatus, error)
	CreateChannel(ctx context.Context, channel Channel) error
	// ScheduleAt schedules an alert tagged id to fire at at and returns the
	// platform's identifier for it.
	ScheduleAt(ctx context.Context, id string, content AlertContent, at time.Time) (string, error)
	Cancel(ctx context.Context, platformID string) error
	CancelAll(ctx context.Context) error
}

// Compile-time interface checks.
var (
	_ Notifier = NoopNotifier{}
	_ Notifier = (*LogNotifier)(nil)
)

// NoopNotifier accepts every call and does nothing. Used when no
// notification backend is present.
type NoopNotifier struct{}

func (NoopNotifier) RequestPermission(ctx context.Context) (PermissionStatus, error) {
	return PermissionUnavailable, nil
}

func (NoopNotifier) CreateChannel(ctx context.Context, channel Channel) error {
	return nil
}

func (NoopNotifier) ScheduleAt(ctx context.Context, id string, content AlertContent, at time.Time) (string, error) {
	return id, nil
}

func (NoopNotifier) Cancel(ctx context.Context, platformID string) error {
	return nil
}

func (NoopNotifier) CancelAll(ctx context.Context) error {
	return nil
}

// LogNotifier grants permission and writes every alert to the log. It
// stands in for a device backend during development.
type LogNotifier struct{}

// NewLogNotifier creates a logging notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) RequestPermission(ctx context.Context) (PermissionStatus, error) {
	log.Printf("🔐 [LogNotifier] requestPermission")
	return PermissionGranted, nil
}

func (n *LogNotifier) CreateChannel(ctx context.Context, channel Channel) error {
	log.Printf("📡 [LogNotifier] createChannel %s (%s)", channel.ID, channel.Name)
	return nil
}

func (n *LogNotifier) ScheduleAt(ctx context.Context, id string, content AlertContent, at time.Time) (string, error) {
	log.Printf("📆 [LogNotifier] schedule %s at %s: %s - %s", id, at.Format("15:04:05"), content.Title, content.Body)
	return "log-" + id, nil
}

func (n *LogNotifier) Cancel(ctx context.Context, platformID string) error {
	log.Printf("❌ [LogNotifier] cancel %s", platformID)
	return nil
}

func (n *LogNotifier) CancelAll(ctx context.Context) error {
	log.Printf("❌ [LogNotifier] cancelAll")
	return nil
}
