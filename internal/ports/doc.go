// Package ports defines the interfaces between the batching engine and
// its collaborators. The engine depends only on these interfaces;
// concrete implementations live in internal/adapters and in callers.
package ports
