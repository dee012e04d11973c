// Package sqsout re-exports the batching SQS output engine for
// convenient import from the module root.
//
// Example usage:
//
//	cfg := sqsout.DefaultConfig()
//	cfg.QueueURL = "https://sqs.us-east-1.amazonaws.com/123456789/events"
//	out, err := sqsout.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := out.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	defer out.Close()
//	out.Submit(`{"msg":"hello"}`)
package sqsout

import (
	"net/http"

	"github.com/tilteng/logstash-output-sqs/pkg/log"
	output "github.com/tilteng/logstash-output-sqs/pkg/sqsout"
)

// Core types of the engine. See pkg/sqsout for the full API.
type (
	Config = output.Config
	Output = output.Output
	Option = output.Option
	Sink   = output.Sink
	Stats  = output.Stats
)

// Errors returned by Output methods. Check with errors.Is.
var (
	ErrAlreadyRunning = output.ErrAlreadyRunning
	ErrNotRunning     = output.ErrNotRunning
	ErrInvalidConfig  = output.ErrInvalidConfig
)

// New creates an Output with the given configuration.
func New(cfg Config, opts ...Option) (*Output, error) {
	return output.New(cfg, opts...)
}

// DefaultConfig returns a Config with default thresholds.
func DefaultConfig() Config {
	return output.DefaultConfig()
}

// WithLogger sets the structured logger.
func WithLogger(logger log.Logger) Option {
	return output.WithLogger(logger)
}

// WithSink replaces the default SQS sink.
func WithSink(sink Sink) Option {
	return output.WithSink(sink)
}

// WithHTTPClient sets a custom HTTP client for the default SQS sink.
func WithHTTPClient(client *http.Client) Option {
	return output.WithHTTPClient(client)
}
