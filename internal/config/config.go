// Package config defines the pipeline model for a cleaning run and helpers to
// load it from disk.
//
// A pipeline names one input file, the CSV dialect, an ordered list of
// transforms and one output sink. The same model decodes from JSON, YAML or
// TOML; field names match across the three.
//
// Example (trimmed):
//
//	{
//	  "job":       "customer",
//	  "source":    { "kind": "file", "file": { "path": "in/customers.csv" } },
//	  "parser":    { "kind": "csv", "options": { "comma": "," } },
//	  "transform": [
//	    { "kind": "normalize_headers" },
//	    { "kind": "drop", "options": { "columns": ["id", "tags"] } },
//	    { "kind": "split_pattern", "options": { "column": "street", "into": ["location_street", "unit"] } }
//	  ],
//	  "storage":   { "kind": "csv", "file": { "path": "in/Updated_Customer.csv" } }
//	}
package config

import "encoding/json"

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run in logs.
	Job string `json:"job" yaml:"job" toml:"job"`

	Source    Source        `json:"source" yaml:"source" toml:"source"`
	Parser    Parser        `json:"parser" yaml:"parser" toml:"parser"`
	Transform []Transform   `json:"transform" yaml:"transform" toml:"transform"`
	Storage   Storage       `json:"storage" yaml:"storage" toml:"storage"`
	Runtime   RuntimeConfig `json:"runtime" yaml:"runtime" toml:"runtime"`
}

// RuntimeConfig holds execution tuning.
type RuntimeConfig struct {
	// SplitWorkers is the number of goroutines used by split transforms.
	// Zero or one splits serially.
	SplitWorkers int `json:"split_workers" yaml:"split_workers" toml:"split_workers"`
}

// Source identifies the input: "file" or "http".
type Source struct {
	Kind string     `json:"kind" yaml:"kind" toml:"kind"`
	File SourceFile `json:"file" yaml:"file" toml:"file"`
	HTTP SourceHTTP `json:"http" yaml:"http" toml:"http"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path" yaml:"path" toml:"path"`
}

// SourceHTTP holds configuration for the "http" source kind. Transient
// failures (network errors, 429, 5xx) are retried with backoff.
type SourceHTTP struct {
	URL string `json:"url" yaml:"url" toml:"url"`

	// TimeoutSeconds bounds each request; zero means 30s.
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`

	// MaxRetries is the number of retries after the first attempt; zero
	// means the default of 3, negative disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries" toml:"max_retries"`

	// Headers are sent with every request.
	Headers map[string]string `json:"headers" yaml:"headers" toml:"headers"`
}

// Location returns the file path or URL the source reads from.
func (s Source) Location() string {
	if s.Kind == "http" {
		return s.HTTP.URL
	}
	return s.File.Path
}

// Parser selects the input format. Current kind: "csv". CSV options:
//
//	comma (string), lazy_quotes (bool), scrub (object: from -> to)
type Parser struct {
	Kind    string  `json:"kind" yaml:"kind" toml:"kind"`
	Options Options `json:"options" yaml:"options" toml:"options"`
}

// Transform is one step of the chain. Options are interpreted by the step.
type Transform struct {
	Kind    string  `json:"kind" yaml:"kind" toml:"kind"`
	Options Options `json:"options" yaml:"options" toml:"options"`
}

// Storage selects the sink: "csv", "sqlite" or "postgres".
type Storage struct {
	Kind string      `json:"kind" yaml:"kind" toml:"kind"`
	File StorageFile `json:"file" yaml:"file" toml:"file"`
	DB   DBConfig    `json:"db" yaml:"db" toml:"db"`
}

// StorageFile configures the "csv" sink.
type StorageFile struct {
	// Path is the output file. An existing file is replaced.
	Path string `json:"path" yaml:"path" toml:"path"`

	// Comma is the output delimiter, one character. Empty means ','.
	Comma string `json:"comma" yaml:"comma" toml:"comma"`
}

// DBConfig configures the database sinks.
type DBConfig struct {
	// DSN is the connection string (pgx for postgres, a file path or URI for
	// sqlite).
	DSN string `json:"dsn" yaml:"dsn" toml:"dsn"`

	// Table is the destination table, optionally schema-qualified.
	Table string `json:"table" yaml:"table" toml:"table"`

	// AutoCreateTable creates the table with TEXT columns when missing.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table" toml:"auto_create_table"`
}

// Options fetches typed values from a decoded options object. Numbers arrive
// as float64 from JSON, int64 from TOML and int from YAML; all are accepted.
// A missing key or a value of another type yields the provided default.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}
	return def
}

// Int returns the integer value for key or def.
func (o Options) Int(key string, def int) int {
	switch n := o[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	}
	return def
}

// Rune returns the first rune of the string value for key, or def.
func (o Options) Rune(key string, def rune) rune {
	if s, ok := o[key].(string); ok && len(s) > 0 {
		return []rune(s)[0]
	}
	return def
}

// StringMap returns the string entries of an object value. Non-string values
// are ignored. Missing keys yield an empty map.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if m, ok := o[key].(map[string]any); ok {
		for k, vv := range m {
			if s, ok := vv.(string); ok {
				res[k] = s
			}
		}
	}
	return res
}

// StringSlice returns the string elements of an array value, or nil when the
// key is missing or not an array.
func (o Options) StringSlice(key string) []string {
	switch vv := o[key].(type) {
	case []any:
		out := make([]string, 0, len(vv))
		for _, x := range vv {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return vv
	}
	return nil
}

// Has reports whether key is present.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// UnmarshalJSON makes a missing or null options object decode to an empty,
// non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
