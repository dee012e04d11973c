package cliconfig

import "os"

// ApplyEnvConfig applies configuration from SQSOUT_* environment
// variables. Values override file config but lose to explicitly set
// flags. Returns an error if a variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("queue", os.Getenv("SQSOUT_QUEUE"), &cfg.Queue)

	if err := s.setIntFromString("batch-size", os.Getenv("SQSOUT_BATCH_SIZE"), &cfg.BatchSize); err != nil {
		return err
	}
	if err := s.setIntFromString("batch-timeout", os.Getenv("SQSOUT_BATCH_TIMEOUT"), &cfg.BatchTimeout); err != nil {
		return err
	}
	if err := s.setIntFromString("batch-bytesize", os.Getenv("SQSOUT_BATCH_BYTESIZE"), &cfg.BatchBytesize); err != nil {
		return err
	}
	if err := s.setIntFromString("batch-events", os.Getenv("SQSOUT_BATCH_EVENTS"), &cfg.BatchEvents); err != nil {
		return err
	}
	if err := s.setDuration("http-timeout", os.Getenv("SQSOUT_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setBoolFromString("watch-config", os.Getenv("SQSOUT_WATCH_CONFIG"), &cfg.WatchConfig)
	s.setBoolPtrFromString("batch", os.Getenv("SQSOUT_BATCH"), &cfg.Batch)

	return nil
}
