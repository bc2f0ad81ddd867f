// Package storage defines the sink contract for cleaned tables and a
// kind-keyed factory. Backends register themselves in init; import
// csvclean/internal/storage/all to enable every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository receives the cleaned table.
type Repository interface {
	// CopyFrom writes rows aligned to columns and returns the number written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs a backend statement (DDL for databases).
	Exec(ctx context.Context, sql string) error

	Close()
}

// Config carries the settings every backend may need.
type Config struct {
	// Kind selects the backend: "csv", "sqlite" or "postgres".
	Kind string

	// Path is the output file for the csv backend.
	Path string

	// Comma is the csv backend's field delimiter; zero means ','.
	Comma rune

	// DSN and Table address the database backends.
	DSN   string
	Table string
}

// Factory constructs a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// Kinds lists registered backend kinds.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens the backend selected by cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: no backend registered for kind %q", cfg.Kind)
	}
	return f(ctx, cfg)
}
