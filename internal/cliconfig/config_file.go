package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors Config with TOML-friendly field types. Option
// names match the original output's configuration surface.
type fileConfig struct {
	Queue         string `toml:"queue"`
	BatchSize     int    `toml:"batch_size"`
	BatchTimeout  int    `toml:"batch_timeout"`
	BatchBytesize int    `toml:"batch_bytesize"`
	HTTPTimeout   string `toml:"http_timeout"`
	WatchConfig   *bool  `toml:"watch_config"`
	Batch         *bool  `toml:"batch"`
	BatchEvents   int    `toml:"batch_events"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.sqsout/config.toml when the user home
// directory is accessible, otherwise "".
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".sqsout", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies file values to cfg, skipping any option whose
// flag was explicitly set.
func ApplyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("queue", fc.Queue, &cfg.Queue)
	s.setInt("batch-size", fc.BatchSize, &cfg.BatchSize)
	s.setInt("batch-timeout", fc.BatchTimeout, &cfg.BatchTimeout)
	s.setInt("batch-bytesize", fc.BatchBytesize, &cfg.BatchBytesize)
	s.setInt("batch-events", fc.BatchEvents, &cfg.BatchEvents)

	if err := s.setDuration("http-timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)
	s.setBoolPtr("batch", fc.Batch, &cfg.Batch)

	return nil
}

// FileExists checks whether a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
