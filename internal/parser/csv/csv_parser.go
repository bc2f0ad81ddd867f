// Package csv reads a CSV file into a table.Table and writes one back out.
//
// The first record is the header row. Empty cells are read as missing (nil)
// and written back as empty fields. A UTF-8 BOM on the first header cell is
// removed. Known bad byte sequences can be rewritten on the fly before the
// bytes reach encoding/csv (see Options.Scrub).
package csv

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"csvclean/internal/datasource"
	"csvclean/internal/table"
)

// ErrEmptyInput is returned when the input has no header row.
var ErrEmptyInput = errors.New("csv: input has no header row")

// Replacement is a literal byte substitution applied to the raw input.
type Replacement struct {
	From string
	To   string
}

// Options configures reading and writing. The zero value reads and writes
// standard comma-separated files.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// LazyQuotes relaxes quote handling in encoding/csv.
	LazyQuotes bool

	// Scrub lists byte sequences rewritten before parsing.
	Scrub []Replacement
}

func (o Options) comma() rune {
	if o.Comma == 0 {
		return ','
	}
	return o.Comma
}

// ReadSource opens src and reads it with Read.
func ReadSource(ctx context.Context, src datasource.Source, opt Options) (*table.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Read(rc, opt)
}

// Read parses all of r. Rows whose width differs from the header are an
// error; the whole input is rejected.
func Read(r io.Reader, opt Options) (*table.Table, error) {
	for _, s := range opt.Scrub {
		if s.From == "" {
			continue
		}
		r = newStreamingRewriter(r, []byte(s.From), []byte(s.To))
	}

	cr := csv.NewReader(r)
	cr.Comma = opt.comma()
	cr.LazyQuotes = opt.LazyQuotes

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	t, err := table.New(StripHeaderBOM(header))
	if err != nil {
		return nil, fmt.Errorf("csv: header: %w", err)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}
		row := make([]any, len(rec))
		for i, v := range rec {
			row[i] = emptyToNil(v)
		}
		if err := t.AppendRow(row); err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
	}
}

// Write emits the header row and every row of t to w.
func Write(w io.Writer, t *table.Table, opt Options) error {
	return WriteRows(w, t.Columns, t.Rows, opt)
}

// WriteRows emits columns then rows to w. Missing cells become empty fields.
func WriteRows(w io.Writer, columns []string, rows [][]any, opt Options) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	cw.Comma = opt.comma()

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	rec := make([]string, len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("csv: row %d has %d cells, want %d", i+1, len(row), len(columns))
		}
		for j, cell := range row {
			rec[j] = table.String(cell)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("csv: write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return bw.Flush()
}

// Encode renders t as CSV bytes.
func Encode(t *table.Table, opt Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, t, opt); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// streamingRewriter replaces pat with repl without buffering the whole
// stream. Up to len(pat)-1 unreplaced bytes of each block are carried into
// the next read so matches spanning chunk boundaries are still rewritten.
type streamingRewriter struct {
	br    *bufio.Reader
	pat   []byte
	repl  []byte
	carry []byte
	buf   bytes.Buffer
	eof   bool
}

func newStreamingRewriter(r io.Reader, pat, repl []byte) *streamingRewriter {
	return &streamingRewriter{
		br:    bufio.NewReaderSize(r, 64*1024),
		pat:   pat,
		repl:  repl,
		carry: make([]byte, 0, max(len(pat)-1, 0)),
	}
}

// Read implements io.Reader.
func (sr *streamingRewriter) Read(p []byte) (int, error) {
	for sr.buf.Len() == 0 {
		if sr.eof {
			return 0, io.EOF
		}
		if err := sr.fill(); err != nil {
			return 0, err
		}
	}
	return sr.buf.Read(p)
}

func (sr *streamingRewriter) fill() error {
	tmp := make([]byte, 64*1024)
	n, rerr := sr.br.Read(tmp)
	if n > 0 {
		block := append(sr.carry[:len(sr.carry):len(sr.carry)], tmp[:n]...)
		sr.carry = sr.carry[:0]
		if len(sr.pat) == 0 {
			sr.buf.Write(block)
		} else {
			sr.rewrite(block)
		}
	}
	switch {
	case rerr == io.EOF:
		sr.buf.Write(sr.carry)
		sr.carry = sr.carry[:0]
		sr.eof = true
	case rerr != nil:
		return rerr
	}
	return nil
}

// rewrite emits block with every complete match replaced and keeps the raw
// bytes after the last match that could still start one, at most
// len(pat)-1 of them, as the carry.
func (sr *streamingRewriter) rewrite(block []byte) {
	pos := 0
	for {
		i := bytes.Index(block[pos:], sr.pat)
		if i < 0 {
			break
		}
		sr.buf.Write(block[pos : pos+i])
		sr.buf.Write(sr.repl)
		pos += i + len(sr.pat)
	}
	cut := max(len(block)-(len(sr.pat)-1), pos)
	sr.buf.Write(block[pos:cut])
	sr.carry = append(sr.carry, block[cut:]...)
}
