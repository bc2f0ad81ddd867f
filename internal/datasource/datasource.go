// Package datasource abstracts where input bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens the raw input for one run.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
