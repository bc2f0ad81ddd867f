package builtin

import (
	"context"
	"log/slog"

	"csvclean/internal/table"
)

// Drop removes the listed columns when present. Absent names are ignored.
type Drop struct {
	Columns []string

	// Dropped records what the last Apply removed.
	Dropped []string
}

func (*Drop) Name() string { return "drop" }

func (d *Drop) Apply(ctx context.Context, t *table.Table) error {
	d.Dropped = t.Drop(d.Columns...)
	slog.DebugContext(ctx, "drop columns", "requested", len(d.Columns), "dropped", d.Dropped)
	return nil
}

// Keep projects the table onto the listed columns that exist.
type Keep struct {
	Columns []string
}

func (Keep) Name() string { return "keep" }

func (k Keep) Apply(ctx context.Context, t *table.Table) error {
	removed := t.Keep(k.Columns...)
	slog.DebugContext(ctx, "keep columns", "kept", len(t.Columns), "removed", removed)
	return nil
}
