// Package cliconfig is the configuration surface of the sqsout CLI:
// defaults, TOML file, environment, and flag layering with explicit
// precedence (flags > env > file > defaults), plus handling of the
// deprecated option aliases the original output accepted.
package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tilteng/logstash-output-sqs/pkg/log"
	"github.com/tilteng/logstash-output-sqs/pkg/sqsout"
)

// Config is the CLI-facing configuration. Thresholds here use the
// original option names and units (batch_timeout in whole seconds);
// ToOutput converts to the engine's Config.
type Config struct {
	// Queue is the destination SQS queue URL.
	Queue string

	// BatchSize is the record count flush threshold.
	BatchSize int

	// BatchTimeout is the flush interval in seconds.
	BatchTimeout int

	// BatchBytesize is the pending-byte flush threshold.
	BatchBytesize int

	// HTTPTimeout bounds each downstream send.
	HTTPTimeout time.Duration

	// WatchConfig enables live reload of thresholds from the config file.
	WatchConfig bool

	// Batch is deprecated: batching is always on. Accepted and ignored
	// with a warning.
	Batch *bool

	// BatchEvents is the deprecated alias for BatchSize. When nonzero
	// it overrides BatchSize, with a warning.
	BatchEvents int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BatchSize:     sqsout.DefaultBatchSize,
		BatchTimeout:  int(sqsout.DefaultBatchTimeout / time.Second),
		BatchBytesize: sqsout.DefaultBatchBytesize,
		HTTPTimeout:   sqsout.DefaultHTTPTimeout,
	}
}

// ApplyDeprecated resolves the deprecated option aliases, logging a
// warning for each one that was set.
func (c *Config) ApplyDeprecated(logger log.Logger) {
	if c.Batch != nil {
		logger.Warn("the batch option is deprecated and ignored; batching is always enabled")
		c.Batch = nil
	}
	if c.BatchEvents != 0 {
		logger.Warn("batch_events is deprecated, use batch_size instead",
			log.Int("batch_events", c.BatchEvents),
		)
		c.BatchSize = c.BatchEvents
		c.BatchEvents = 0
	}
}

// ToOutput converts the CLI configuration to the engine configuration.
// Call ApplyDeprecated first so alias overrides are in effect.
func (c Config) ToOutput() sqsout.Config {
	return sqsout.Config{
		QueueURL:      c.Queue,
		BatchSize:     c.BatchSize,
		BatchTimeout:  time.Duration(c.BatchTimeout) * time.Second,
		BatchBytesize: c.BatchBytesize,
		HTTPTimeout:   c.HTTPTimeout,
	}
}

// configSetter applies configuration values while respecting flag
// precedence: a value is skipped when its flag was explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setBoolPtr(flag string, value *bool, dst **bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

func (s *configSetter) setBoolPtrFromString(flag, value string, dst **bool) {
	if value == "" || s.changed[flag] {
		return
	}
	b := value == "true" || value == "1"
	*dst = &b
}
