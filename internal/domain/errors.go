package domain

import "errors"

// Domain errors returned by the public API. Check with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running output.
	ErrAlreadyRunning = errors.New("sqsout: already running")

	// ErrNotRunning is returned when Submit() or Close() is called on a
	// stopped output.
	ErrNotRunning = errors.New("sqsout: not running")

	// ErrInvalidConfig is returned when configuration validation fails.
	// Configuration errors are fatal and prevent startup.
	ErrInvalidConfig = errors.New("sqsout: invalid configuration")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("sqsout: shutdown timeout")
)
