// Package builtin contains the table steps a pipeline config can name.
package builtin

import (
	"context"
	"strings"

	"csvclean/internal/slug"
	"csvclean/internal/table"
)

const nbsp = "\u00a0"

// NormalizeHeaders renames every column to its slug.
type NormalizeHeaders struct {
	Normalizer slug.Normalizer
}

func (NormalizeHeaders) Name() string { return "normalize_headers" }

// Apply fails with table.ErrDuplicateColumn if two headers share a slug.
func (n NormalizeHeaders) Apply(_ context.Context, t *table.Table) error {
	return t.RenameColumns(n.Normalizer.Normalize)
}

// Trim replaces no-break spaces with ASCII spaces and trims edge whitespace
// in every string cell. Cells that become empty turn into missing values.
type Trim struct{}

func (Trim) Name() string { return "trim" }

func (Trim) Apply(_ context.Context, t *table.Table) error {
	for _, row := range t.Rows {
		for i, v := range row {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if strings.Contains(s, nbsp) {
				s = strings.ReplaceAll(s, nbsp, " ")
			}
			if HasEdgeSpace(s) {
				s = strings.TrimSpace(s)
			}
			if s == "" {
				row[i] = nil
				continue
			}
			row[i] = s
		}
	}
	return nil
}

// HasEdgeSpace reports whether s starts or ends with ASCII whitespace.
func HasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	return isSpace(s[0]) || isSpace(s[len(s)-1])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}
