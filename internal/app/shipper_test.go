package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tilteng/logstash-output-sqs/internal/domain"
	"github.com/tilteng/logstash-output-sqs/internal/ports"
	"github.com/tilteng/logstash-output-sqs/pkg/log"
)

// captureSink records every payload it receives.
type captureSink struct {
	mu       sync.Mutex
	payloads []string
	err      error
}

func (c *captureSink) Send(ctx context.Context, payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *captureSink) sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.payloads...)
}

func newTestShipper(maxCount, maxBytes int, timeout time.Duration, sink ports.Sink) *Shipper {
	return NewShipper(maxCount, maxBytes, timeout, sink, log.NewNopLogger())
}

func TestShipper_NoFlushBelowThresholds(t *testing.T) {
	sink := &captureSink{}
	s := newTestShipper(10, 61440, time.Hour, sink)

	ctx := context.Background()
	for i := 0; i < 9; i++ {
		s.Submit(ctx, domain.Record(`{"msg":"msg"}`))
	}

	if got := sink.sent(); len(got) != 0 {
		t.Errorf("got %d sends below all thresholds, want 0", len(got))
	}
	if got := s.PendingBytes(); got != 9*13 {
		t.Errorf("PendingBytes = %d, want %d", got, 9*13)
	}
}

func TestShipper_CountTrigger(t *testing.T) {
	sink := &captureSink{}
	s := newTestShipper(2, 61440, time.Hour, sink)

	ctx := context.Background()
	s.Submit(ctx, domain.Record(`{"msg":"msg"}`))
	s.Submit(ctx, domain.Record(`{"msg":"msg"}`))

	got := sink.sent()
	if len(got) != 1 {
		t.Fatalf("got %d sends, want exactly 1", len(got))
	}
	if want := `[{"msg":"msg"},{"msg":"msg"}]`; got[0] != want {
		t.Errorf("payload = %q, want %q", got[0], want)
	}
	if s.PendingBytes() != 0 {
		t.Errorf("PendingBytes = %d, want 0 after flush", s.PendingBytes())
	}
}

func TestShipper_CountTriggerExactOrder(t *testing.T) {
	sink := &captureSink{}
	s := newTestShipper(3, 61440, time.Hour, sink)

	ctx := context.Background()
	s.Submit(ctx, domain.Record("a"))
	s.Submit(ctx, domain.Record("b"))
	s.Submit(ctx, domain.Record("c"))
	s.Submit(ctx, domain.Record("d"))

	got := sink.sent()
	if len(got) != 1 {
		t.Fatalf("got %d sends, want 1", len(got))
	}
	if got[0] != "[a,b,c]" {
		t.Errorf("payload = %q, want [a,b,c] in submission order", got[0])
	}
	if s.PendingBytes() != 1 {
		t.Errorf("PendingBytes = %d, want 1 (record d still live)", s.PendingBytes())
	}
}

func TestShipper_SizeTriggerSynchronous(t *testing.T) {
	sink := &captureSink{}
	s := newTestShipper(100, 10, time.Hour, sink)

	ctx := context.Background()
	s.Submit(ctx, domain.Record("12345678"))
	if len(sink.sent()) != 0 {
		t.Fatal("flush before byte threshold crossed")
	}

	// This submission pushes pending bytes to 16 > 10 and must flush
	// before Submit returns.
	s.Submit(ctx, domain.Record("abcdefgh"))

	got := sink.sent()
	if len(got) != 1 {
		t.Fatalf("got %d sends, want 1", len(got))
	}
	if got[0] != "[12345678,abcdefgh]" {
		t.Errorf("payload = %q, want both records", got[0])
	}
}

func TestShipper_OversizeSingleRecord(t *testing.T) {
	sink := &captureSink{}
	s := newTestShipper(100, 100, time.Hour, sink)

	big := strings.Repeat("x", 150)
	s.Submit(context.Background(), domain.Record(big))

	got := sink.sent()
	if len(got) != 1 {
		t.Fatalf("got %d sends, want 1 immediate send", len(got))
	}
	if got[0] != "["+big+"]" {
		t.Errorf("payload does not contain only the oversize record")
	}
	if s.PendingBytes() != 0 {
		t.Errorf("PendingBytes = %d, want 0", s.PendingBytes())
	}
}

func TestShipper_TimeTrigger(t *testing.T) {
	sink := &captureSink{}
	s := newTestShipper(100, 61440, 20*time.Millisecond, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.RunTimer(ctx)

	s.Submit(ctx, domain.Record("tick"))

	deadline := time.After(2 * time.Second)
	for len(sink.sent()) == 0 {
		select {
		case <-deadline:
			t.Fatal("timer flush never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if got := sink.sent(); got[0] != "[tick]" {
		t.Errorf("payload = %q, want [tick]", got[0])
	}
}

func TestShipper_FlushEmptyIsNoop(t *testing.T) {
	sink := &captureSink{}
	s := newTestShipper(10, 61440, time.Hour, sink)

	s.Flush(context.Background())

	if len(sink.sent()) != 0 {
		t.Error("empty flush produced a send")
	}
}

func TestShipper_SendFailureDropsBatch(t *testing.T) {
	sink := &captureSink{err: &ports.SinkError{
		Kind:    "AWS.SimpleQueueService.NonExistentQueue",
		Message: "queue does not exist",
		TraceID: "req-123",
	}}
	s := newTestShipper(2, 61440, time.Hour, sink)

	ctx := context.Background()
	s.Submit(ctx, domain.Record("a"))
	s.Submit(ctx, domain.Record("b"))

	// Batch dropped, pending reset, nothing retried.
	if s.PendingBytes() != 0 {
		t.Errorf("PendingBytes = %d, want 0 after dropped batch", s.PendingBytes())
	}
	stats := s.Stats()
	if stats.BatchesDropped != 1 {
		t.Errorf("BatchesDropped = %d, want 1", stats.BatchesDropped)
	}
	if stats.BatchesSent != 0 {
		t.Errorf("BatchesSent = %d, want 0", stats.BatchesSent)
	}

	// The failed records are gone for good; the next submission starts
	// a fresh batch.
	s.Submit(ctx, domain.Record("c"))
	s.Submit(ctx, domain.Record("d"))
	if got := s.Stats().BatchesDropped; got != 2 {
		t.Errorf("BatchesDropped = %d, want 2", got)
	}
}

func TestShipper_Stats(t *testing.T) {
	sink := &captureSink{}
	s := newTestShipper(2, 61440, time.Hour, sink)

	ctx := context.Background()
	s.Submit(ctx, domain.Record("aa"))
	s.Submit(ctx, domain.Record("bb"))

	stats := s.Stats()
	if stats.BatchesSent != 1 {
		t.Errorf("BatchesSent = %d, want 1", stats.BatchesSent)
	}
	if stats.RecordsSent != 2 {
		t.Errorf("RecordsSent = %d, want 2", stats.RecordsSent)
	}
	if stats.BytesSent != 4 {
		t.Errorf("BytesSent = %d, want 4", stats.BytesSent)
	}
}

func TestShipper_UpdateThresholds(t *testing.T) {
	sink := &captureSink{}
	s := newTestShipper(10, 61440, time.Hour, sink)

	ctx := context.Background()
	s.Submit(ctx, domain.Record("a"))
	s.UpdateThresholds(2, 61440, time.Hour)
	s.Submit(ctx, domain.Record("b"))

	if got := sink.sent(); len(got) != 1 {
		t.Fatalf("got %d sends after lowering batch_size, want 1", len(got))
	}
}

func TestShipper_ConcurrentSubmit(t *testing.T) {
	sink := &captureSink{}
	s := newTestShipper(5, 1<<20, time.Hour, sink)

	const (
		producers = 4
		perWorker = 250
	)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.Submit(context.Background(), domain.Record("x"))
			}
		}()
	}
	wg.Wait()
	s.Flush(context.Background())

	var total int
	for _, p := range sink.sent() {
		// Payload is [x,x,...,x]; count the records.
		total += strings.Count(p, "x")
	}
	if want := producers * perWorker; total != want {
		t.Errorf("sent %d records total, want %d (no loss, no duplication)", total, want)
	}
	if s.PendingBytes() != 0 {
		t.Errorf("PendingBytes = %d, want 0", s.PendingBytes())
	}
}
