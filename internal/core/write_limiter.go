package core

// write_limiter.go bounds the number of state-changing operations (publish,
// reload) running at once. Reads never take a slot.
//
// A request that finds every slot busy waits up to maxWait and then fails
// with ErrTooManyWrites. WaitForDrain lets shutdown wait for in-flight
// writes.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyWrites is returned when no write slot frees up within the wait
// time. Clients should retry after a short delay.
var ErrTooManyWrites = errors.New("too many concurrent writes")

// Defaults used when NewWriteLimiter gets non-positive values.
const (
	DefaultMaxConcurrentWrites = 4
	DefaultWriteWait           = 10 * time.Second
)

// WriteLimiter is a counting semaphore with a bounded wait.
type WriteLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int32
}

// WriteLimiterStatus is a snapshot for health output.
type WriteLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// NewWriteLimiter allows at most maxConcurrent writes at a time.
func NewWriteLimiter(maxConcurrent int, maxWait time.Duration) *WriteLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentWrites
	}
	if maxWait <= 0 {
		maxWait = DefaultWriteWait
	}
	return &WriteLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must Release it exactly once.
func (l *WriteLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyWrites
	}
}

// TryAcquire takes a slot only if one is free.
func (l *WriteLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *WriteLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Active returns the number of writes in flight.
func (l *WriteLimiter) Active() int {
	return int(l.active.Load())
}

// Status reports the current occupancy.
func (l *WriteLimiter) Status() WriteLimiterStatus {
	return WriteLimiterStatus{
		Active:        l.Active(),
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}

// WaitForDrain blocks until no write is in flight or ctx is done.
func (l *WriteLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.Active() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
