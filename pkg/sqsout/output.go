package sqsout

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tilteng/logstash-output-sqs/internal/adapters/sqs"
	"github.com/tilteng/logstash-output-sqs/internal/app"
	"github.com/tilteng/logstash-output-sqs/internal/domain"
	"github.com/tilteng/logstash-output-sqs/pkg/log"
)

// Errors returned by Output methods. Check with errors.Is.
var (
	ErrAlreadyRunning = domain.ErrAlreadyRunning
	ErrNotRunning     = domain.ErrNotRunning
	ErrInvalidConfig  = domain.ErrInvalidConfig
)

// Stats is a snapshot of the engine's delivery counters.
type Stats = app.Stats

// pinger is implemented by sinks that can probe the queue target.
type pinger interface {
	Ping(ctx context.Context) error
}

// Output is the batching SQS output engine. Create with New(), then
// Start() to launch the flush timer; Submit() from any number of
// goroutines; Close() for a final flush and shutdown.
type Output struct {
	config    Config
	lifecycle *app.Lifecycle
	shipper   *app.Shipper
	sink      Sink
	logger    log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates an Output with the given configuration. Zero thresholds
// take defaults; validation failures wrap ErrInvalidConfig.
func New(cfg Config, opts ...Option) (*Output, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	sink := o.sink
	if sink == nil {
		httpClient := o.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
		}
		var senderOpts []sqs.Option
		if o.sign != nil {
			senderOpts = append(senderOpts, sqs.WithSigner(sqs.SignFunc(o.sign)))
		}
		sink = sqs.NewSender(cfg.QueueURL, resty.NewWithClient(httpClient), o.logger, senderOpts...)
	}

	return &Output{
		config:    cfg,
		lifecycle: app.NewLifecycle(o.logger),
		shipper:   app.NewShipper(cfg.BatchSize, cfg.BatchBytesize, cfg.BatchTimeout, sink, o.logger),
		sink:      sink,
		logger:    o.logger,
	}, nil
}

// Start probes the queue target when the sink supports it, then
// launches the flush timer. An unreachable queue is a configuration
// error and prevents startup. Returns ErrAlreadyRunning on a running
// output.
func (out *Output) Start(ctx context.Context) error {
	out.mu.Lock()
	defer out.mu.Unlock()

	if !out.lifecycle.CanStart() {
		return ErrAlreadyRunning
	}
	if err := out.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	if p, ok := out.sink.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			_ = out.lifecycle.TransitionTo(app.StateStopped, "queue probe failed")
			return fmt.Errorf("%w: queue unreachable: %v", ErrInvalidConfig, err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	out.cancel = cancel
	out.lifecycle.SetCancel(cancel)

	out.lifecycle.AddWorker()
	go func() {
		defer out.lifecycle.WorkerDone()
		out.shipper.RunTimer(runCtx)
	}()

	if err := out.lifecycle.TransitionTo(app.StateRunning, "startup complete"); err != nil {
		cancel()
		return err
	}

	out.logger.Info("sqs output started",
		log.String("queue", out.config.QueueURL),
		log.Int("batch_size", out.config.BatchSize),
		log.Int("batch_bytesize", out.config.BatchBytesize),
		log.Duration("batch_timeout", out.config.BatchTimeout),
	)
	return nil
}

// Submit appends one pre-serialized record to the pending batch. The
// record bytes are trusted verbatim. If this submission fills the batch
// or crosses the byte threshold, the flush, downstream send included,
// completes before Submit returns. Returns ErrNotRunning on a stopped
// output.
func (out *Output) Submit(record string) error {
	if out.lifecycle.State() != app.StateRunning {
		return ErrNotRunning
	}
	out.shipper.Submit(context.Background(), domain.Record(record))
	return nil
}

// Close stops the flush timer and performs exactly one more flush,
// unconditionally, so nothing pending is silently lost on normal
// termination. The final batch is still subject to the
// drop-on-send-failure policy. Returns ErrNotRunning on a stopped
// output.
func (out *Output) Close() error {
	out.mu.Lock()
	defer out.mu.Unlock()

	if !out.lifecycle.CanStop() {
		return ErrNotRunning
	}
	if err := out.lifecycle.TransitionTo(app.StateStopping, "Close() called"); err != nil {
		return err
	}

	out.lifecycle.Cancel()
	if err := out.lifecycle.WaitWithTimeout(app.ShutdownTimeout); err != nil {
		out.logger.Warn("timer goroutine did not stop cleanly", log.Err(err))
	}

	out.shipper.Flush(context.Background())

	if err := out.lifecycle.TransitionTo(app.StateStopped, "shutdown complete"); err != nil {
		return err
	}

	stats := out.shipper.Stats()
	out.logger.Info("sqs output stopped",
		log.Int64("batches_sent", stats.BatchesSent),
		log.Int64("records_sent", stats.RecordsSent),
		log.Int64("bytes_sent", stats.BytesSent),
		log.Int64("batches_dropped", stats.BatchesDropped),
	)
	return nil
}

// UpdateThresholds replaces the flush thresholds on a live output.
// Invalid values wrap ErrInvalidConfig and leave the current thresholds
// in place.
func (out *Output) UpdateThresholds(batchSize, batchBytesize int, batchTimeout time.Duration) error {
	if batchSize < 1 || batchBytesize < 1 || batchTimeout <= 0 {
		return fmt.Errorf("%w: thresholds must be positive", ErrInvalidConfig)
	}
	out.shipper.UpdateThresholds(batchSize, batchBytesize, batchTimeout)
	return nil
}

// Stats returns a snapshot of the delivery counters.
func (out *Output) Stats() Stats {
	return out.shipper.Stats()
}

// PendingBytes returns the byte total of the live, unflushed batch.
func (out *Output) PendingBytes() int {
	return out.shipper.PendingBytes()
}
