package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tilteng/logstash-output-sqs/internal/batch"
	"github.com/tilteng/logstash-output-sqs/internal/domain"
	"github.com/tilteng/logstash-output-sqs/internal/ports"
	"github.com/tilteng/logstash-output-sqs/pkg/log"
)

// Stats is a snapshot of the shipper's delivery counters.
type Stats struct {
	BatchesSent    int64
	RecordsSent    int64
	BytesSent      int64
	BatchesDropped int64
}

// Shipper is the flush engine. It accumulates records and flushes the
// pending batch to the sink when one of three triggers fires:
//
//   - count: the batch reaches the configured record count
//   - bytesize: the pending byte total exceeds the configured limit
//   - time: the background timer tick elapses
//
// Count- and size-triggered flushes run synchronously inside Submit,
// downstream send included, so a producer that crosses a threshold
// absorbs the send latency (deliberate back-pressure). Time-triggered
// flushes run in the timer goroutine; the send happens outside the
// accumulator lock, so producers are never blocked by a timer flush in
// progress.
//
// Delivery is at-most-once: a batch whose send fails is logged and
// dropped, never retried or re-queued.
type Shipper struct {
	mu       sync.RWMutex
	maxCount int
	maxBytes int
	timeout  time.Duration

	acc     *batch.Accumulator
	tracker *batch.SizeTracker
	sink    ports.Sink
	logger  log.Logger

	batchesSent    atomic.Int64
	recordsSent    atomic.Int64
	bytesSent      atomic.Int64
	batchesDropped atomic.Int64
}

// NewShipper creates a shipper with an empty pending batch.
func NewShipper(maxCount, maxBytes int, timeout time.Duration, sink ports.Sink, logger log.Logger) *Shipper {
	tracker := batch.NewSizeTracker()
	return &Shipper{
		maxCount: maxCount,
		maxBytes: maxBytes,
		timeout:  timeout,
		acc:      batch.NewAccumulator(tracker),
		tracker:  tracker,
		sink:     sink,
		logger:   logger,
	}
}

// Submit appends a record to the pending batch and evaluates the count
// and byte-size triggers. If either fires, the flush (including the
// downstream send) completes before Submit returns.
func (s *Shipper) Submit(ctx context.Context, r domain.Record) {
	s.mu.RLock()
	maxCount, maxBytes := s.maxCount, s.maxBytes
	s.mu.RUnlock()

	count, pendingBytes := s.acc.Append(r)
	if count >= maxCount || pendingBytes > maxBytes {
		s.Flush(ctx)
	}
}

// Flush detaches the pending batch and sends it as one composite
// payload. An empty batch is a no-op, which is how a trigger that lost
// the race for the same records resolves: it drains nothing and
// returns. On send failure the batch is logged and dropped.
func (s *Shipper) Flush(ctx context.Context) {
	detached := s.acc.Drain()
	if detached.Empty() {
		return
	}

	payload := detached.Payload()
	if err := s.sink.Send(ctx, payload); err != nil {
		s.batchesDropped.Add(1)

		fields := []log.Field{
			log.Int("records", detached.Len()),
			log.Int("bytes", detached.TotalBytes()),
		}
		var se *ports.SinkError
		if errors.As(err, &se) {
			fields = append(fields,
				log.String("kind", se.Kind),
				log.String("message", se.Message),
			)
			if se.TraceID != "" {
				fields = append(fields, log.String("trace_id", se.TraceID))
			}
		} else {
			fields = append(fields, log.Err(err))
		}
		s.logger.Error("batch send failed, dropping batch", fields...)
		return
	}

	s.batchesSent.Add(1)
	s.recordsSent.Add(int64(detached.Len()))
	s.bytesSent.Add(int64(detached.TotalBytes()))
	s.logger.Debug("batch sent",
		log.Int("records", detached.Len()),
		log.Int("bytes", len(payload)),
	)
}

// RunTimer drives the time trigger: it flushes whatever is pending
// every timeout period until the context is cancelled. Threshold
// updates are picked up on the next cycle.
func (s *Shipper) RunTimer(ctx context.Context) {
	for {
		s.mu.RLock()
		timeout := s.timeout
		s.mu.RUnlock()

		timer := time.NewTimer(timeout)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.Flush(ctx)
		}
	}
}

// UpdateThresholds replaces the trigger thresholds. Safe to call while
// producers are submitting; in-flight Submit calls may still evaluate
// the previous values.
func (s *Shipper) UpdateThresholds(maxCount, maxBytes int, timeout time.Duration) {
	s.mu.Lock()
	s.maxCount = maxCount
	s.maxBytes = maxBytes
	s.timeout = timeout
	s.mu.Unlock()

	s.logger.Info("batch thresholds updated",
		log.Int("batch_size", maxCount),
		log.Int("batch_bytesize", maxBytes),
		log.Duration("batch_timeout", timeout),
	)
}

// PendingBytes returns the byte total of the live batch.
func (s *Shipper) PendingBytes() int {
	return s.tracker.Pending()
}

// Stats returns a snapshot of the delivery counters.
func (s *Shipper) Stats() Stats {
	return Stats{
		BatchesSent:    s.batchesSent.Load(),
		RecordsSent:    s.recordsSent.Load(),
		BytesSent:      s.bytesSent.Load(),
		BatchesDropped: s.batchesDropped.Load(),
	}
}
