// Package storage contains storage-agnostic contracts and utilities: the
// Repository interface implemented by concrete backends, a factory registry
// keyed by storage kind, and the generic batch loader.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Repository is the minimal surface the pipeline needs from a relational
// store. One Repository (one connection handle) is shared by all concurrent
// per-file pipelines and released exactly once by the orchestrator.
type Repository interface {
	// CopyFrom bulk-inserts rows (aligned to 'columns' order) into table and
	// returns the number of rows inserted.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Exec runs an arbitrary SQL statement, typically DDL.
	Exec(ctx context.Context, sql string) error

	// Close releases the underlying connection. Safe to call once.
	Close()
}

// Config selects and configures a storage backend.
type Config struct {
	// Kind is the registered backend name (e.g. "sqlite").
	Kind string

	// DSN is the backend connection string.
	DSN string
}

// Factory constructs a Repository for a Config. Backends register their
// factory at init time.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for the given storage kind.
// It is typically called from backend packages' init() functions.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository of the configured kind. Callers remain fully
// backend-agnostic; wiring a backend in is a blank import of its package.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: no backend registered for kind=%q", cfg.Kind)
	}
	return fn(ctx, cfg)
}
