package handlers

import (
	"math"
	"time"
)

// DelayStrategy encapsulates the pause between repeated pipeline traversals.
type DelayStrategy interface {
	// SleepDuration returns how long to wait before the next iteration.
	// The iteration index starts at 0, incrementing after each pass.
	SleepDuration(iteration int) time.Duration
}

// NoDelayStrategy runs all iterations back to back without waiting.
type NoDelayStrategy struct{}

// SleepDuration always returns zero, causing immediate iterations.
func (n NoDelayStrategy) SleepDuration(_ int) time.Duration {
	return 0
}

// FixedDelayStrategy pauses the same duration between every iteration.
type FixedDelayStrategy struct {
	Delay time.Duration
}

// SleepDuration returns the configured fixed delay.
func (f FixedDelayStrategy) SleepDuration(_ int) time.Duration {
	return f.Delay
}

// ExponentialBackoffStrategy implements a backoff strategy.
// Usage example:
//
//	RepeatWithStrategy[*PollContext](ExponentialBackoffStrategy{
//	    Base:   100 * time.Millisecond,
//	    Factor: 2,
//	    Max:    5 * time.Second,
//	})
type ExponentialBackoffStrategy struct {
	// Base is the starting delay (e.g., 100ms)
	Base time.Duration
	// Factor is multiplied each iteration (e.g., 2 => 100ms, 200ms, 400ms, ...)
	Factor float64
	// Max is the maximum delay allowed (caps the exponential growth)
	Max time.Duration
}

// SleepDuration implements an exponential backoff with a cap at Max.
func (e ExponentialBackoffStrategy) SleepDuration(iteration int) time.Duration {
	if iteration < 0 {
		iteration = 0
	}
	delay := float64(e.Base) * math.Pow(e.Factor, float64(iteration))
	if time.Duration(delay) > e.Max && e.Max > 0 {
		return e.Max
	}
	return time.Duration(delay)
}
