package clock

import "time"

// Clock abstracts wall-clock reads so elapsed-time arithmetic can be driven
// by tests.
type Clock interface {
	Now() time.Time
}

// realClock implements Clock using the standard time package
type realClock struct{}

// NewRealClock creates a Clock backed by time.Now
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}
