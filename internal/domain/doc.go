// Package domain contains the core entities of the SQS output engine.
//
// This is the innermost layer: it knows nothing about SQS, HTTP, logging,
// or configuration files. It holds the two value types the engine
// accumulates and flushes:
//
//   - [Record]: a single pre-serialized event payload
//   - [Batch]: an ordered set of records destined for one composite send
//
// Entities here are testable without mocks and carry the wire-format
// rule for composite payloads (comma join inside one pair of brackets).
package domain
