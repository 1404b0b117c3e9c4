// Package cmap provides a concurrent map implementation.
//
// Features:
//
//   - Sharding: Configurable power-of-two shard count
//   - Fine-grained Locking: Per-shard RWMutex
//   - Atomic insert-if-absent via GetOrSet
//   - Iteration: Safe iteration while holding read locks
//
// Usage:
//
//	m := cmap.New[string, hclog.Logger]()
//	l, _ := m.GetOrSet("app.store", candidate)
//
// All operations are safe for concurrent use.
package cmap
