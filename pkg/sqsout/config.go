package sqsout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/tilteng/logstash-output-sqs/internal/domain"
)

// Default threshold values. The byte-size default keeps composite
// payloads comfortably under the SQS message size ceiling.
const (
	DefaultBatchSize     = 10
	DefaultBatchTimeout  = 10 * time.Second
	DefaultBatchBytesize = 61440
	DefaultHTTPTimeout   = 60 * time.Second
)

// Config holds the engine configuration. Use DefaultConfig() and set
// QueueURL, or fill the struct directly; zero thresholds are replaced
// by defaults in New().
type Config struct {
	// QueueURL is the full URL of the destination SQS queue. The engine
	// treats it as opaque; resolving and authenticating the queue is
	// the sink's concern.
	QueueURL string `validate:"required,url"`

	// BatchSize is the record count that triggers a flush.
	BatchSize int `validate:"min=1"`

	// BatchTimeout is the period of the time trigger. Whatever is
	// pending when it elapses gets flushed.
	BatchTimeout time.Duration `validate:"gt=0"`

	// BatchBytesize is the pending-byte threshold. The submission that
	// pushes the pending total past it flushes synchronously.
	BatchBytesize int `validate:"min=1"`

	// HTTPTimeout bounds each downstream send.
	HTTPTimeout time.Duration
}

// DefaultConfig returns a Config with default thresholds. QueueURL must
// still be set before use.
func DefaultConfig() Config {
	return Config{
		BatchSize:     DefaultBatchSize,
		BatchTimeout:  DefaultBatchTimeout,
		BatchBytesize: DefaultBatchBytesize,
		HTTPTimeout:   DefaultHTTPTimeout,
	}
}

// SetDefaults replaces zero-valued thresholds with defaults.
func (c *Config) SetDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchTimeout == 0 {
		c.BatchTimeout = DefaultBatchTimeout
	}
	if c.BatchBytesize == 0 {
		c.BatchBytesize = DefaultBatchBytesize
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
}

var validate = validator.New()

// Validate checks the configuration. Failures wrap ErrInvalidConfig and
// are fatal: they prevent the output from starting.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}
