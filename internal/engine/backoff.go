package engine

import "time"

// BackoffPolicy is the exponential reconnect schedule for push channels.
// The attempt counter resets on any successful open and on an explicit
// manual reconnect.
type BackoffPolicy struct {
	Base        time.Duration // delay for the first retry
	MaxDelay    time.Duration // upper bound for a single delay
	MaxAttempts int           // failures tolerated before permanent pull fallback
}

// DefaultBackoffPolicy returns the standard schedule.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		Base:        time.Second,
		MaxDelay:    30 * time.Second,
		MaxAttempts: 3,
	}
}

// Delay returns base * 2^n capped at MaxDelay.
func (p BackoffPolicy) Delay(n int) time.Duration {
	if n < 0 {
		n = 0
	}

	d := p.Base
	for i := 0; i < n; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Exhausted reports whether failures has exceeded the attempt cap, which
// signals the orchestrator to stop retrying push and fall back to pull mode
// permanently.
func (p BackoffPolicy) Exhausted(failures int) bool {
	return failures > p.MaxAttempts
}
