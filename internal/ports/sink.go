package ports

import (
	"context"
	"fmt"
)

// Sink delivers one composite payload per call to the downstream
// message queue. Implementations handle transport, authentication, and
// their own timeouts. The engine never retries a failed send; any
// reliability layer belongs to the sink or to code wrapping the engine.
type Sink interface {
	// Send transmits a full batch payload as a single message.
	Send(ctx context.Context, payload string) error
}

// SinkFunc adapts an ordinary function to a Sink.
type SinkFunc func(ctx context.Context, payload string) error

// Send implements Sink.
func (f SinkFunc) Send(ctx context.Context, payload string) error {
	return f(ctx, payload)
}

// SinkError is the classified failure a sink reports for a send.
// The flush executor logs the fields and drops the batch.
type SinkError struct {
	// Kind is the error class, e.g. an SQS error code or "RequestFailure".
	Kind string

	// Message is the human-readable failure description.
	Message string

	// TraceID identifies the failed request downstream, when available.
	TraceID string
}

// Error implements error.
func (e *SinkError) Error() string {
	if e.TraceID != "" {
		return fmt.Sprintf("%s: %s (trace %s)", e.Kind, e.Message, e.TraceID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
