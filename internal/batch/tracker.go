// Package batch implements the concurrency-safe accumulation core of
// the output engine: an ordered record buffer with atomic swap-and-clear
// drain semantics, and the pending-byte counter that drives the
// byte-size flush trigger.
package batch

import "sync"

// SizeTracker is the owned, lock-protected counter of bytes currently
// pending in the live batch. It is never exposed as a raw shared
// variable; all access goes through Increment and Decrement.
//
// Lock order: the accumulator's mutex is always acquired before the
// tracker's. Both methods are called while the accumulator lock is
// held, which keeps the counter equal to the live batch's byte total
// at every instant observable outside the accumulator.
type SizeTracker struct {
	mu      sync.Mutex
	pending int
}

// NewSizeTracker creates a tracker with a zero pending count.
func NewSizeTracker() *SizeTracker {
	return &SizeTracker{}
}

// Increment adds n bytes to the pending count and returns the new
// total. The caller compares the total against the byte threshold and
// forces a flush before its own operation returns.
func (t *SizeTracker) Increment(n int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending += n
	return t.pending
}

// Decrement subtracts n bytes from the pending count. Invoked when a
// batch is detached, before its send completes. The subtraction is
// never rolled back: a batch dropped after a failed send stays
// subtracted.
func (t *SizeTracker) Decrement(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending -= n
}

// Pending returns the current pending byte count.
func (t *SizeTracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}
