package realtime

import "time"

// Backoff is the reconnection policy: exponential delay with a ceiling and
// an attempt cap. It is a pure value type so the attempt/delay relationship
// is testable without timers.
type Backoff struct {
	Base        time.Duration
	Max         time.Duration
	MaxAttempts int
}

// DefaultBackoff returns the standard reconnection policy.
func DefaultBackoff() Backoff {
	return Backoff{
		Base:        time.Second,
		Max:         30 * time.Second,
		MaxAttempts: 5,
	}
}

// Delay returns min(Base * 2^attempt, Max) for the given attempt counter.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// Shifting past 62 bits overflows a Duration long before Max matters.
	if attempt > 30 {
		return b.Max
	}
	d := b.Base << uint(attempt)
	if d > b.Max || d <= 0 {
		return b.Max
	}
	return d
}

// Allowed reports whether another attempt may be scheduled for the given
// attempt counter.
func (b Backoff) Allowed(attempt int) bool {
	return attempt < b.MaxAttempts
}
