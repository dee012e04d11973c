package sqsout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSink struct {
	mu       sync.Mutex
	payloads []string
	pingErr  error
	sendErr  error
}

func (f *fakeSink) Send(ctx context.Context, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeSink) Ping(ctx context.Context) error {
	return f.pingErr
}

func (f *fakeSink) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.payloads...)
}

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.QueueURL = "https://sqs.us-east-1.amazonaws.com/123456789/events"
	return cfg
}

func TestNew_DefaultsApplied(t *testing.T) {
	out, err := New(Config{QueueURL: "https://example.com/q"}, WithSink(&fakeSink{}))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if out.config.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", out.config.BatchSize, DefaultBatchSize)
	}
	if out.config.BatchTimeout != DefaultBatchTimeout {
		t.Errorf("BatchTimeout = %v, want %v", out.config.BatchTimeout, DefaultBatchTimeout)
	}
	if out.config.BatchBytesize != DefaultBatchBytesize {
		t.Errorf("BatchBytesize = %d, want %d", out.config.BatchBytesize, DefaultBatchBytesize)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing queue url", cfg: Config{}},
		{name: "malformed queue url", cfg: Config{QueueURL: "not a url"}},
		{
			name: "negative batch size",
			cfg:  Config{QueueURL: "https://example.com/q", BatchSize: -1},
		},
		{
			name: "negative batch timeout",
			cfg:  Config{QueueURL: "https://example.com/q", BatchTimeout: -time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestOutput_StartSubmitClose(t *testing.T) {
	sink := &fakeSink{}
	cfg := validConfig()
	cfg.BatchSize = 2

	out, err := New(cfg, WithSink(sink))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if err := out.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	if err := out.Submit(`{"msg":"msg"}`); err != nil {
		t.Fatalf("Submit error = %v", err)
	}
	if err := out.Submit(`{"msg":"msg"}`); err != nil {
		t.Fatalf("Submit error = %v", err)
	}

	got := sink.sent()
	if len(got) != 1 {
		t.Fatalf("got %d sends, want 1", len(got))
	}
	if want := `[{"msg":"msg"},{"msg":"msg"}]`; got[0] != want {
		t.Errorf("payload = %q, want %q", got[0], want)
	}

	if err := out.Close(); err != nil {
		t.Errorf("Close error = %v", err)
	}
}

func TestOutput_CloseFlushesRemainder(t *testing.T) {
	sink := &fakeSink{}
	out, err := New(validConfig(), WithSink(sink))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if err := out.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	out.Submit("a")
	out.Submit("b")

	if err := out.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}

	got := sink.sent()
	if len(got) != 1 {
		t.Fatalf("got %d sends, want exactly 1 final flush", len(got))
	}
	if got[0] != "[a,b]" {
		t.Errorf("payload = %q, want [a,b]", got[0])
	}
	if out.PendingBytes() != 0 {
		t.Errorf("PendingBytes = %d, want 0 after close", out.PendingBytes())
	}
}

func TestOutput_CloseEmptyNoSend(t *testing.T) {
	sink := &fakeSink{}
	out, err := New(validConfig(), WithSink(sink))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if err := out.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}

	if len(sink.sent()) != 0 {
		t.Error("close with empty batch produced a send")
	}
}

func TestOutput_LifecycleErrors(t *testing.T) {
	out, err := New(validConfig(), WithSink(&fakeSink{}))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	if err := out.Submit("x"); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Submit before start error = %v, want ErrNotRunning", err)
	}
	if err := out.Close(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Close before start error = %v, want ErrNotRunning", err)
	}

	if err := out.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	if err := out.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start error = %v, want ErrAlreadyRunning", err)
	}

	if err := out.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := out.Submit("x"); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Submit after close error = %v, want ErrNotRunning", err)
	}
}

func TestOutput_StartProbeFailure(t *testing.T) {
	sink := &fakeSink{pingErr: errors.New("no such queue")}
	out, err := New(validConfig(), WithSink(sink))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	if err := out.Start(context.Background()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Start error = %v, want ErrInvalidConfig", err)
	}

	// Startup failure leaves the output stopped and restartable.
	sink.pingErr = nil
	if err := out.Start(context.Background()); err != nil {
		t.Errorf("restart after probe failure error = %v", err)
	}
	out.Close()
}

func TestOutput_TimeTrigger(t *testing.T) {
	sink := &fakeSink{}
	cfg := validConfig()
	cfg.BatchTimeout = 20 * time.Millisecond

	out, err := New(cfg, WithSink(sink))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if err := out.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	defer out.Close()

	out.Submit("tick")

	deadline := time.After(2 * time.Second)
	for len(sink.sent()) == 0 {
		select {
		case <-deadline:
			t.Fatal("time trigger never flushed")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if got := sink.sent()[0]; got != "[tick]" {
		t.Errorf("payload = %q, want [tick]", got)
	}
}

func TestOutput_SendFailureDoesNotPropagate(t *testing.T) {
	sink := &fakeSink{sendErr: errors.New("boom")}
	cfg := validConfig()
	cfg.BatchSize = 1

	out, err := New(cfg, WithSink(sink))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if err := out.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	if err := out.Submit("x"); err != nil {
		t.Errorf("Submit error = %v, want nil despite send failure", err)
	}
	if got := out.Stats().BatchesDropped; got != 1 {
		t.Errorf("BatchesDropped = %d, want 1", got)
	}
	if err := out.Close(); err != nil {
		t.Errorf("Close error = %v", err)
	}
}

func TestOutput_UpdateThresholds(t *testing.T) {
	sink := &fakeSink{}
	out, err := New(validConfig(), WithSink(sink))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if err := out.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	defer out.Close()

	if err := out.UpdateThresholds(0, 100, time.Second); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("UpdateThresholds(0,...) error = %v, want ErrInvalidConfig", err)
	}

	if err := out.UpdateThresholds(2, 61440, time.Hour); err != nil {
		t.Fatalf("UpdateThresholds error = %v", err)
	}
	out.Submit("a")
	out.Submit("b")
	if got := sink.sent(); len(got) != 1 || got[0] != "[a,b]" {
		t.Errorf("sends after threshold update = %v, want one [a,b]", got)
	}
}
