// Package sqs implements the queue sink against the Amazon SQS query
// API. Each composite batch payload becomes the MessageBody of a single
// SendMessage call on the configured queue URL.
//
// The adapter performs no retries of its own; a failed send surfaces as
// a classified *ports.SinkError and the engine drops the batch.
// Request signing is injected by the caller, since credential
// resolution is outside the engine's scope.
package sqs

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/tilteng/logstash-output-sqs/internal/ports"
	"github.com/tilteng/logstash-output-sqs/pkg/log"
)

const apiVersion = "2012-11-05"

// Error kinds the adapter produces for failures that never reached a
// well-formed SQS response.
const (
	ErrKindRequestFailure = "RequestFailure"
	ErrKindHTTPError      = "HTTPError"
)

// SignFunc decorates an outgoing request with authentication, for
// example SigV4 headers or a pre-signed token.
type SignFunc func(req *resty.Request)

// Sender sends composite payloads to one SQS queue.
type Sender struct {
	client   *resty.Client
	queueURL string
	sign     SignFunc
	logger   log.Logger
}

// Option configures optional Sender behavior.
type Option func(*Sender)

// WithSigner sets the request signing hook.
func WithSigner(sign SignFunc) Option {
	return func(s *Sender) {
		s.sign = sign
	}
}

// NewSender creates a sender for the given queue URL. A nil client
// gets a default resty client; retries stay disabled either way to
// keep delivery at-most-once.
func NewSender(queueURL string, client *resty.Client, logger log.Logger, opts ...Option) *Sender {
	if client == nil {
		client = resty.New()
	}
	client.SetRetryCount(0)

	s := &Sender{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send implements ports.Sink. The payload is trusted verbatim and
// becomes the message body of exactly one SendMessage call.
func (s *Sender) Send(ctx context.Context, payload string) error {
	if err := s.post(ctx, map[string]string{
		"Action":      "SendMessage",
		"Version":     apiVersion,
		"MessageBody": payload,
	}); err != nil {
		return err
	}

	s.logger.Debug("message sent",
		log.String("queue", s.queueURL),
		log.Int("payload_bytes", len(payload)),
	)
	return nil
}

// Ping checks that the queue target is reachable and answers the query
// API. Used at startup so a bad queue URL fails fast instead of
// silently dropping every batch.
func (s *Sender) Ping(ctx context.Context) error {
	return s.post(ctx, map[string]string{
		"Action":          "GetQueueAttributes",
		"Version":         apiVersion,
		"AttributeName.1": "QueueArn",
	})
}

func (s *Sender) post(ctx context.Context, form map[string]string) error {
	req := s.client.R().SetContext(ctx).SetFormData(form)
	if s.sign != nil {
		s.sign(req)
	}

	resp, err := req.Post(s.queueURL)
	if err != nil {
		return &ports.SinkError{
			Kind:    ErrKindRequestFailure,
			Message: err.Error(),
		}
	}
	if resp.IsError() {
		return classify(resp)
	}
	return nil
}

// errorResponse mirrors the SQS query API error envelope.
type errorResponse struct {
	XMLName xml.Name `xml:"ErrorResponse"`
	Error   struct {
		Type    string `xml:"Type"`
		Code    string `xml:"Code"`
		Message string `xml:"Message"`
	} `xml:"Error"`
	RequestID string `xml:"RequestId"`
}

// classify turns a non-2xx response into a SinkError, preferring the
// structured SQS error code over the bare HTTP status.
func classify(resp *resty.Response) *ports.SinkError {
	var er errorResponse
	if err := xml.Unmarshal(resp.Body(), &er); err == nil && er.Error.Code != "" {
		return &ports.SinkError{
			Kind:    er.Error.Code,
			Message: er.Error.Message,
			TraceID: er.RequestID,
		}
	}
	return &ports.SinkError{
		Kind:    ErrKindHTTPError,
		Message: fmt.Sprintf("server returned %d: %s", resp.StatusCode(), resp.String()),
	}
}
