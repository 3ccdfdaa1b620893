package agent

import (
	"fmt"
	"sync"
)

// StepLimiter enforces a maximum number of model calls for one user message.
type StepLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewStepLimiter creates a limiter allowing max calls. If max == 0, unlimited
// calls are allowed.
func NewStepLimiter(max int) *StepLimiter {
	return &StepLimiter{max: max}
}

// Increment counts a call and returns an error wrapping ErrMaxSteps once
// the limit is exceeded.
func (l *StepLimiter) Increment() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max > 0 && l.count >= l.max {
		return fmt.Errorf("%w: %d", ErrMaxSteps, l.max)
	}
	l.count++

	return nil
}

// Count returns the number of calls made.
func (l *StepLimiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}

// Remaining returns how many calls are left, or -1 when unlimited.
func (l *StepLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max == 0 {
		return -1
	}

	return l.max - l.count
}
