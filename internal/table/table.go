// Package table holds an in-memory CSV table and the column operations the
// cleaning pipeline applies to it: rename, drop-if-present, keep and split.
//
// Cells are either a string or nil (missing). Column names are unique.
package table

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"csvclean/internal/split"
)

var (
	// ErrColumnNotFound is returned when an operation requires a column that
	// the table does not have.
	ErrColumnNotFound = errors.New("column not found")

	// ErrDuplicateColumn is returned when two columns would share a name.
	ErrDuplicateColumn = errors.New("duplicate column")
)

// Table is an ordered set of named columns and rows aligned to them.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New returns an empty table with the given columns. Duplicate names are
// rejected.
func New(columns []string) (*Table, error) {
	if err := checkUnique(columns); err != nil {
		return nil, err
	}
	return &Table{Columns: slices.Clone(columns)}, nil
}

// Index returns the position of column name.
func (t *Table) Index(name string) (int, bool) {
	i := slices.Index(t.Columns, name)
	return i, i >= 0
}

// Has reports whether the table has column name.
func (t *Table) Has(name string) bool {
	_, ok := t.Index(name)
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// AppendRow adds a row; its width must match the column count.
func (t *Table) AppendRow(row []any) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row width %d does not match %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// RenameColumns replaces every column name with fn(name). If two resulting
// names collide the table is left unchanged and ErrDuplicateColumn is
// returned.
func (t *Table) RenameColumns(fn func(string) string) error {
	renamed := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		renamed[i] = fn(c)
	}
	if err := checkUnique(renamed); err != nil {
		return err
	}
	t.Columns = renamed
	return nil
}

// Drop removes every listed column that exists. Names the table does not
// have are ignored. It returns the names actually removed, in table order.
func (t *Table) Drop(names ...string) []string {
	if len(names) == 0 {
		return nil
	}
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}

	var dropped []string
	keep := make([]int, 0, len(t.Columns))
	for i, c := range t.Columns {
		if _, ok := drop[c]; ok {
			dropped = append(dropped, c)
			continue
		}
		keep = append(keep, i)
	}
	if len(dropped) > 0 {
		t.project(keep)
	}
	return dropped
}

// Keep retains only the listed columns that exist, in their current table
// order. It returns the names removed.
func (t *Table) Keep(names ...string) []string {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	var removed []string
	for _, c := range t.Columns {
		if _, ok := want[c]; !ok {
			removed = append(removed, c)
		}
	}
	t.Drop(removed...)
	return removed
}

func (t *Table) project(keep []int) {
	cols := make([]string, len(keep))
	for j, i := range keep {
		cols[j] = t.Columns[i]
	}
	for r, row := range t.Rows {
		nr := make([]any, len(keep))
		for j, i := range keep {
			nr[j] = row[i]
		}
		t.Rows[r] = nr
	}
	t.Columns = cols
}

// SplitColumn applies rule to every cell of src and stores the two results in
// columns first and second. A target that already exists is overwritten in
// place; otherwise it is appended. src is removed afterwards unless it is one
// of the targets. Missing cells produce missing outputs.
//
// With workers > 1 rows are processed concurrently in contiguous chunks; the
// result is identical to the serial run.
func (t *Table) SplitColumn(ctx context.Context, src string, rule split.Rule, first, second string, workers int) error {
	si, ok := t.Index(src)
	if !ok {
		return fmt.Errorf("split %q: %w", src, ErrColumnNotFound)
	}
	if first == "" || second == "" || first == second {
		return fmt.Errorf("split %q: target columns must be two distinct non-empty names, got %q and %q", src, first, second)
	}

	firstVals := make([]any, len(t.Rows))
	secondVals := make([]any, len(t.Rows))

	apply := func(lo, hi int) error {
		for r := lo; r < hi; r++ {
			if r%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			firstVals[r], secondVals[r] = split.Nullable(rule, t.Rows[r][si])
		}
		return nil
	}

	if err := forEachChunk(len(t.Rows), workers, apply); err != nil {
		return fmt.Errorf("split %q: %w", src, err)
	}

	t.setColumn(first, firstVals)
	t.setColumn(second, secondVals)
	if src != first && src != second {
		t.Drop(src)
	}
	return nil
}

// setColumn overwrites name in place or appends it as the last column.
func (t *Table) setColumn(name string, vals []any) {
	if i, ok := t.Index(name); ok {
		for r := range t.Rows {
			t.Rows[r][i] = vals[r]
		}
		return
	}
	t.Columns = append(t.Columns, name)
	for r := range t.Rows {
		t.Rows[r] = append(t.Rows[r], vals[r])
	}
}

// forEachChunk runs fn over [0,n) split into at most workers contiguous
// ranges.
func forEachChunk(n, workers int, fn func(lo, hi int) error) error {
	if workers <= 1 || n < 2*workers {
		return fn(0, n)
	}
	var g errgroup.Group
	size := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += size {
		lo, hi := lo, min(lo+size, n)
		g.Go(func() error { return fn(lo, hi) })
	}
	return g.Wait()
}

func checkUnique(names []string) error {
	seen := make(map[string]int, len(names))
	for i, n := range names {
		if j, ok := seen[n]; ok {
			return fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateColumn, n, j, i)
		}
		seen[n] = i
	}
	return nil
}

// String returns the cell as a string; nil becomes "".
func String(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
