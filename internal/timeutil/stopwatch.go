package timeutil

import "time"

// Stopwatch converts clock readings into seconds elapsed since an origin,
// the monotonic "seconds since start" scale used for playback timestamps.
type Stopwatch struct {
	clock  Clock
	origin time.Time
}

// NewStopwatch starts a stopwatch at the clock's current time.
func NewStopwatch(clock Clock) *Stopwatch {
	return &Stopwatch{clock: clock, origin: clock.Now()}
}

// Origin returns the time the stopwatch reads as zero.
func (s *Stopwatch) Origin() time.Time { return s.origin }

// Seconds returns the seconds elapsed on the clock since the origin.
func (s *Stopwatch) Seconds() float64 {
	return s.clock.Since(s.origin).Seconds()
}

// SecondsAt returns the seconds between the origin and t.
func (s *Stopwatch) SecondsAt(t time.Time) float64 {
	return t.Sub(s.origin).Seconds()
}
