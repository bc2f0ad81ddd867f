// Package csvfile writes the cleaned table to a CSV file. The file is
// replaced atomically: readers see either the previous file or the complete
// new one.
package csvfile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	csvparser "csvclean/internal/parser/csv"
	"csvclean/internal/storage"
)

// Repository writes rows to Path.
type Repository struct {
	path  string
	comma rune
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository returns a Repository for path. The parent directory must
// exist.
func NewRepository(path string, comma rune) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("csvfile: path must not be empty")
	}
	dir := filepath.Dir(path)
	if fi, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("csvfile: output directory: %w", err)
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("csvfile: output directory %s is not a directory", dir)
	}
	return &Repository{path: path, comma: comma}, nil
}

// CopyFrom writes the header and all rows, replacing any existing file. Each
// call rewrites the whole file.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	if err := csvparser.WriteRows(&buf, columns, rows, csvparser.Options{Comma: r.comma}); err != nil {
		return 0, fmt.Errorf("csvfile: encode: %w", err)
	}
	if err := atomic.WriteFile(r.path, &buf); err != nil {
		return 0, fmt.Errorf("csvfile: write %s: %w", r.path, err)
	}
	return int64(len(rows)), nil
}

// Exec is not supported for files; an empty statement is a no-op.
func (r *Repository) Exec(_ context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	return fmt.Errorf("csvfile: exec not supported")
}

// Close implements storage.Repository.
func (r *Repository) Close() {}

func init() {
	storage.Register("csv", func(_ context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(cfg.Path, cfg.Comma)
	})
}
