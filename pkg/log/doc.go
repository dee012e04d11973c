// Package log provides the structured logging abstraction used across
// the output engine. The engine logs through [Logger]; the default
// production implementation wraps zerolog, and [NopLogger] is available
// for embedding and tests.
package log
