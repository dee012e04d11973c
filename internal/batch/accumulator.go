package batch

import (
	"sync"

	"github.com/tilteng/logstash-output-sqs/internal/domain"
)

// Accumulator holds the live batch under a single exclusion domain.
// Append and Drain are mutually exclusive, so no record is ever
// duplicated across two drains and no drain observes a half-applied
// append. The flush triggers race on Drain: whichever fires first takes
// the pending records, and a losing trigger receives an empty batch.
type Accumulator struct {
	mu      sync.Mutex
	live    *domain.Batch
	tracker *SizeTracker
}

// NewAccumulator creates an accumulator with an empty live batch.
func NewAccumulator(tracker *SizeTracker) *Accumulator {
	return &Accumulator{
		live:    domain.NewBatch(),
		tracker: tracker,
	}
}

// Append adds a record to the tail of the live batch and returns the
// new record count and the new pending byte total. The count and total
// are computed under the lock, so the caller's trigger evaluation sees
// a consistent snapshot.
func (a *Accumulator) Append(r domain.Record) (count, pendingBytes int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.live.Append(r)
	pendingBytes = a.tracker.Increment(r.Size())
	return a.live.Len(), pendingBytes
}

// Drain atomically swaps the live batch for a fresh empty one and
// returns the detached batch; ownership transfers to the caller. The
// pending counter is decremented in the same critical section, before
// any send is attempted, so it only ever reflects records still live.
func (a *Accumulator) Drain() *domain.Batch {
	a.mu.Lock()
	defer a.mu.Unlock()
	detached := a.live
	a.live = domain.NewBatch()
	a.tracker.Decrement(detached.TotalBytes())
	return detached
}
