// Package clean runs one pipeline end to end: read the input CSV, apply the
// transform chain, and hand the result to the configured sink.
package clean

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"csvclean/internal/config"
	"csvclean/internal/datasource"
	"csvclean/internal/datasource/file"
	"csvclean/internal/datasource/httpds"
	"csvclean/internal/logging"
	"csvclean/internal/metrics"
	csvparser "csvclean/internal/parser/csv"
	"csvclean/internal/storage"
	"csvclean/internal/table"
	"csvclean/internal/transformer/builtin"
)

// ErrInvalidConfig is matched by errors.Is for every *ConfigError.
var ErrInvalidConfig = errors.New("invalid pipeline config")

// ConfigError carries the blocking validation issues of a pipeline.
type ConfigError struct {
	Issues []config.Issue
}

func (e *ConfigError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, iss := range e.Issues {
		msgs = append(msgs, iss.Error())
	}
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// Report summarizes a completed run.
type Report struct {
	Job        string
	InputRows  int
	OutputRows int
	Columns    []string
	Dropped    []string

	// Sink is the storage kind; Output is the file path (csv) or table name.
	Sink   string
	Output string

	// Digest is the hex xxh3-128 of the table encoded as comma-separated
	// CSV, independent of the sink. Equal digests mean equal output.
	Digest string

	Elapsed time.Duration
}

// Run executes p once. A missing input wraps fs.ErrNotExist, an absent split
// column wraps table.ErrColumnNotFound and blocking config issues wrap
// ErrInvalidConfig. Nothing is written unless every step succeeds.
func Run(ctx context.Context, p config.Pipeline) (Report, error) {
	start := time.Now()
	rep := Report{Job: p.Job, Sink: p.Storage.Kind}

	issues := config.ValidatePipeline(p)
	ctx = logging.WithJob(ctx, p.Job)
	log := logging.FromContext(ctx)
	for _, iss := range issues {
		if iss.Severity == config.SeverityWarning {
			log.Warn("config warning", "path", iss.Path, "message", iss.Message)
		}
	}
	if config.HasErrors(issues) {
		return rep, &ConfigError{Issues: blocking(issues)}
	}

	opt, err := ParserOptions(p.Parser)
	if err != nil {
		return rep, err
	}
	chain, err := builtin.Build(p)
	if err != nil {
		return rep, err
	}

	t, err := read(ctx, p, opt)
	if err != nil {
		return rep, err
	}
	rep.InputRows = t.Len()
	log.Info("input loaded", "source", p.Source.Kind, "location", p.Source.Location(), "rows", t.Len(), "columns", len(t.Columns))

	err = chain.ApplyObserved(ctx, t, func(step string, err error, d time.Duration) {
		metrics.RecordStep(p.Job, step, err, d)
		log.Debug("step done", "step", step, "elapsed", d, "columns", len(t.Columns))
	})
	if err != nil {
		return rep, err
	}
	for _, s := range chain {
		if d, ok := s.(*builtin.Drop); ok {
			rep.Dropped = append(rep.Dropped, d.Dropped...)
		}
	}
	metrics.RecordDroppedColumns(p.Job, len(rep.Dropped))

	encoded, err := csvparser.Encode(t, csvparser.Options{})
	if err != nil {
		return rep, err
	}
	sum := xxh3.Hash128(encoded).Bytes()
	rep.Digest = hex.EncodeToString(sum[:])

	n, err := write(ctx, p, t)
	if err != nil {
		return rep, err
	}

	rep.OutputRows = int(n)
	rep.Columns = append([]string(nil), t.Columns...)
	rep.Output = outputName(p.Storage)
	rep.Elapsed = time.Since(start)
	metrics.RecordRows(p.Job, "written", n)

	log.Info("run complete",
		"sink", rep.Sink,
		"output", rep.Output,
		"rows", rep.OutputRows,
		"dropped", rep.Dropped,
		"digest", rep.Digest,
		"elapsed", rep.Elapsed.Truncate(time.Millisecond),
	)
	return rep, nil
}

// ParserOptions maps parser options onto the CSV reader: comma (one
// character), lazy_quotes, and scrub (object of literal from -> to
// replacements, applied in key order).
func ParserOptions(p config.Parser) (csvparser.Options, error) {
	opt := csvparser.Options{
		Comma:      p.Options.Rune("comma", ','),
		LazyQuotes: p.Options.Bool("lazy_quotes", false),
	}
	scrub := p.Options.StringMap("scrub")
	keys := make([]string, 0, len(scrub))
	for k := range scrub {
		if k == "" {
			return opt, fmt.Errorf("parser.options.scrub: empty pattern")
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		opt.Scrub = append(opt.Scrub, csvparser.Replacement{From: k, To: scrub[k]})
	}
	return opt, nil
}

func read(ctx context.Context, p config.Pipeline, opt csvparser.Options) (*table.Table, error) {
	start := time.Now()
	t, err := csvparser.ReadSource(ctx, NewSource(p.Source), opt)
	metrics.RecordStep(p.Job, "read", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.Source.Location(), err)
	}
	metrics.RecordRows(p.Job, "read", int64(t.Len()))
	return t, nil
}

func write(ctx context.Context, p config.Pipeline, t *table.Table) (n int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordStep(p.Job, "write", err, time.Since(start)) }()

	cfg := StorageConfig(p.Storage)
	repo, err := storage.New(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer repo.Close()

	log := logging.WithFields(ctx, "sink", cfg.Kind, "output", outputName(p.Storage))
	if cfg.Kind != "csv" && p.Storage.DB.AutoCreateTable {
		if err := storage.EnsureTable(ctx, cfg, repo, t.Columns); err != nil {
			return 0, err
		}
		log.Debug("table ensured", "columns", len(t.Columns))
	}
	n, err = repo.CopyFrom(ctx, t.Columns, t.Rows)
	if err != nil {
		return n, err
	}
	log.Debug("rows copied", "rows", n)
	return n, nil
}

// NewSource builds the datasource for a validated source section.
func NewSource(s config.Source) datasource.Source {
	if s.Kind != "http" {
		return file.NewLocal(s.File.Path)
	}
	retries := s.HTTP.MaxRetries
	switch {
	case retries == 0:
		retries = 3
	case retries < 0:
		retries = 0
	}
	hdr := make(http.Header, len(s.HTTP.Headers))
	for k, v := range s.HTTP.Headers {
		hdr.Set(k, v)
	}
	c := httpds.NewClient(httpds.Config{
		Timeout:    time.Duration(s.HTTP.TimeoutSeconds) * time.Second,
		MaxRetries: retries,
		Headers:    hdr,
	})
	return httpds.NewSource(c, s.HTTP.URL)
}

// StorageConfig converts the pipeline's storage section for storage.New.
func StorageConfig(s config.Storage) storage.Config {
	cfg := storage.Config{
		Kind:  s.Kind,
		Path:  s.File.Path,
		DSN:   s.DB.DSN,
		Table: s.DB.Table,
	}
	if r := []rune(s.File.Comma); len(r) > 0 {
		cfg.Comma = r[0]
	}
	return cfg
}

func outputName(s config.Storage) string {
	if s.Kind == "csv" {
		return s.File.Path
	}
	return s.DB.Table
}

func blocking(issues []config.Issue) []config.Issue {
	var out []config.Issue
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			out = append(out, iss)
		}
	}
	return out
}
