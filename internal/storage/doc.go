// Package storage holds pet profiles keyed by owner identity.
//
// Drivers:
//   - "memory": default; process-local, lost on restart
//   - "sqlite": modernc.org/sqlite, ":memory:" unless a path is configured
//
// Both drivers copy profiles on write and on read, so callers never share
// memory with stored data, and ForEach never observes a half-written entry.
package storage
