package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger = zerolog.New(out).With().Timestamp().Logger()
}

// Logger returns the package logger used by the CLI.
func Logger() zerolog.Logger {
	return logger
}
