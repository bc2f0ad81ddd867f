package builtin

import (
	"context"
	"log/slog"

	"csvclean/internal/split"
	"csvclean/internal/table"
)

// Split replaces Column with two columns produced by Rule.
type Split struct {
	Kind    string
	Column  string
	Rule    split.Rule
	First   string
	Second  string
	Workers int
}

func (s Split) Name() string { return s.Kind }

// Apply fails with table.ErrColumnNotFound when Column is absent.
func (s Split) Apply(ctx context.Context, t *table.Table) error {
	if err := t.SplitColumn(ctx, s.Column, s.Rule, s.First, s.Second, s.Workers); err != nil {
		return err
	}
	slog.DebugContext(ctx, "split column",
		"kind", s.Kind, "column", s.Column, "into", []string{s.First, s.Second}, "rows", t.Len())
	return nil
}
