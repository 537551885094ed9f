package domain

import "time"

// WaitPolicy bounds the completion poll loop. The values are fixed by the
// step contract but passed explicitly so the waiter has no ambient
// configuration.
type WaitPolicy struct {
	// Interval between task-state queries.
	Interval time.Duration
	// MaxMinutes is the hard upper bound on the requested wait.
	MaxMinutes int
	// DefaultMinutes applies when the input is absent or unparsable.
	DefaultMinutes int
}

func DefaultWaitPolicy() WaitPolicy {
	return WaitPolicy{
		Interval:       5 * time.Second,
		MaxMinutes:     360,
		DefaultMinutes: 30,
	}
}

// ClampMinutes bounds a requested wait to (0, MaxMinutes].
func (p WaitPolicy) ClampMinutes(minutes int) int {
	if minutes <= 0 {
		return p.DefaultMinutes
	}
	if minutes > p.MaxMinutes {
		return p.MaxMinutes
	}
	return minutes
}

// MaxAttempts is the number of polls allowed inside the clamped bound:
// (minutes * 60) / interval-seconds.
func (p WaitPolicy) MaxAttempts(minutes int) int {
	clamped := p.ClampMinutes(minutes)
	return int((time.Duration(clamped) * time.Minute) / p.Interval)
}

// Deadline is the total wall-clock budget handed to the waiter.
func (p WaitPolicy) Deadline(minutes int) time.Duration {
	return time.Duration(p.MaxAttempts(minutes)) * p.Interval
}
