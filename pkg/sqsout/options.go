package sqsout

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/tilteng/logstash-output-sqs/pkg/log"
)

// Sink delivers one composite payload per call to the downstream queue.
// The default sink targets the SQS query API; tests and embedders may
// substitute their own.
type Sink interface {
	Send(ctx context.Context, payload string) error
}

// SignFunc decorates an outgoing SQS request with authentication.
// Credential resolution and signing live outside the engine.
type SignFunc func(req *resty.Request)

// Option configures optional behavior of an Output.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     log.Logger
	sink       Sink
	sign       SignFunc
}

func defaultOptions() options {
	return options{
		logger: log.NewNopLogger(),
	}
}

// WithHTTPClient sets a custom HTTP client for the default SQS sink.
// Ignored when WithSink is also given.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets the structured logger. Without it, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSink replaces the default SQS sink entirely.
func WithSink(sink Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithSigner sets the request signing hook on the default SQS sink.
// Ignored when WithSink is also given.
func WithSigner(sign SignFunc) Option {
	return func(o *options) {
		o.sign = sign
	}
}
