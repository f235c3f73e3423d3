package clock

import (
	"fmt"
	"time"
)

// Remaining returns the whole seconds left of a run of durationSeconds that
// (re)started at startTimestamp, observed at nowTimestamp. Timestamps are
// epoch milliseconds. The result is never negative.
func Remaining(durationSeconds, startTimestamp, nowTimestamp int64) int64 {
	if durationSeconds <= 0 {
		return 0
	}

	elapsedMs := nowTimestamp - startTimestamp
	if elapsedMs < 0 {
		// Wall clock moved backwards; count nothing as elapsed
		elapsedMs = 0
	}

	remaining := durationSeconds - elapsedMs/1000
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FormatSeconds formats seconds as M:SS. Minutes are not capped at 59.
func FormatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatDurationLong formats a duration in words, e.g. "1 hour 5 minutes"
func FormatDurationLong(d time.Duration) string {
	if d <= 0 {
		return "0 minutes"
	}

	d = d.Round(time.Minute)

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%s %s", plural(hours, "hour"), plural(minutes, "minute"))
		}
		return plural(hours, "hour")
	}

	return plural(minutes, "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Millis converts t to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds to a time.Time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
