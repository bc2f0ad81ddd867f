package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// DDLBootstrapper creates the destination table for columns if it does not
// exist, using repo.Exec.
type DDLBootstrapper func(ctx context.Context, repo Repository, table string, columns []string) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the bootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable runs the bootstrapper registered for cfg.Kind. Kinds without
// one (such as csv) are an error.
func EnsureTable(ctx context.Context, cfg Config, repo Repository, columns []string) error {
	ddlMu.RLock()
	fn, ok := ddlFns[cfg.Kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("storage: no DDL bootstrapper registered for kind %q", cfg.Kind)
	}
	if len(columns) == 0 {
		return fmt.Errorf("storage: cannot create %s with no columns", cfg.Table)
	}
	return fn(ctx, repo, cfg.Table, columns)
}

// CreateTextTableSQL renders CREATE TABLE IF NOT EXISTS with every column as
// TEXT. quote quotes one identifier segment; dotted table names are quoted
// per segment.
func CreateTextTableSQL(table string, columns []string, quote func(string) string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = quote(c) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", QuoteFQN(table, quote), strings.Join(cols, ", "))
}

// QuoteFQN quotes each non-empty dot-separated segment of name, e.g.
// "public.users" becomes "public"."users".
func QuoteFQN(name string, quote func(string) string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

// QuoteIdent double-quotes id, doubling embedded quotes. Postgres and SQLite
// share this form.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
