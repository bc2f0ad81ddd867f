package config

import (
	"fmt"
	"net/url"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is a dotted path into the
// config, e.g. "transform[2].options.column".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static checks on p without mutating it. Rule
// construction (regex compilation and the like) is checked later when the
// transform chain is built.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue
	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; runs will be logged without a name",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateTransforms(p.Transform)...)
	issues = append(issues, validateStorage(p.Storage, p.Source)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	return issues
}

func validateSource(s Source) []Issue {
	switch s.Kind {
	case "":
		return []Issue{{Severity: SeverityError, Path: "source.kind", Message: "source.kind must not be empty"}}
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			return []Issue{{Severity: SeverityError, Path: "source.file.path", Message: "file source requires a non-empty path"}}
		}
	case "http":
		u, err := url.Parse(s.HTTP.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return []Issue{{Severity: SeverityError, Path: "source.http.url", Message: fmt.Sprintf("http source requires an absolute http(s) URL, got %q", s.HTTP.URL)}}
		}
		if s.HTTP.TimeoutSeconds < 0 {
			return []Issue{{Severity: SeverityError, Path: "source.http.timeout_seconds", Message: "timeout_seconds must not be negative"}}
		}
	default:
		return []Issue{{Severity: SeverityError, Path: "source.kind", Message: fmt.Sprintf("unknown source kind %q", s.Kind)}}
	}
	return nil
}

func validateParser(p Parser) []Issue {
	var issues []Issue
	if p.Kind != "" && p.Kind != "csv" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unknown parser kind %q; only csv is supported", p.Kind),
		})
	}
	if c := p.Options.String("comma", ","); len([]rune(c)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", c),
		})
	}
	return issues
}

var knownTransforms = map[string]struct{}{
	"normalize_headers": {},
	"drop":              {},
	"keep":              {},
	"split_pattern":     {},
	"split_delimiter":   {},
	"trim":              {},
}

func validateTransforms(ts []Transform) []Issue {
	var issues []Issue
	if len(ts) == 0 {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "transform",
			Message:  "no transforms configured; the input will be copied as-is",
		}}
	}

	for i, t := range ts {
		base := fmt.Sprintf("transform[%d]", i)
		if strings.TrimSpace(t.Kind) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: base + ".kind", Message: "transform kind must not be empty"})
			continue
		}
		if _, ok := knownTransforms[t.Kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".kind",
				Message:  fmt.Sprintf("unknown transform kind %q", t.Kind),
			})
			continue
		}

		switch t.Kind {
		case "drop", "keep":
			if len(t.Options.StringSlice("columns")) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     base + ".options.columns",
					Message:  t.Kind + " has no columns; it will not change the table",
				})
			}
		case "split_pattern", "split_delimiter":
			if strings.TrimSpace(t.Options.String("column", "")) == "" {
				issues = append(issues, Issue{Severity: SeverityError, Path: base + ".options.column", Message: "split column must not be empty"})
			}
			into := t.Options.StringSlice("into")
			if len(into) != 2 || into[0] == "" || into[1] == "" || into[0] == into[1] {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     base + ".options.into",
					Message:  fmt.Sprintf("into must name two distinct columns, got %v", into),
				})
			}
			if t.Kind == "split_delimiter" && t.Options.Has("delimiter") && t.Options.String("delimiter", "") == "" {
				issues = append(issues, Issue{Severity: SeverityError, Path: base + ".options.delimiter", Message: "delimiter must not be empty"})
			}
			if t.Kind == "split_pattern" && t.Options.Has("pattern") && t.Options.Has("designators") {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     base + ".options",
					Message:  "both pattern and designators set; pattern wins",
				})
			}
		}
	}
	return issues
}

func validateStorage(s Storage, src Source) []Issue {
	var issues []Issue
	switch s.Kind {
	case "":
		issues = append(issues, Issue{Severity: SeverityError, Path: "storage.kind", Message: "storage.kind must not be empty"})
	case "csv":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "storage.file.path", Message: "csv storage requires a non-empty path"})
		} else if src.Kind == "file" && s.File.Path == src.File.Path {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "storage.file.path",
				Message:  "output path equals input path; the input will be overwritten",
			})
		}
		if s.File.Comma != "" && len([]rune(s.File.Comma)) != 1 {
			issues = append(issues, Issue{Severity: SeverityError, Path: "storage.file.comma", Message: "storage.file.comma must be a single character"})
		}
	case "sqlite", "postgres":
		if strings.TrimSpace(s.DB.DSN) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "storage.db.dsn", Message: "storage.db.dsn must not be empty"})
		}
		if strings.TrimSpace(s.DB.Table) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "storage.db.table", Message: "storage.db.table must not be empty"})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q", s.Kind),
		})
	}
	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	if r.SplitWorkers < 0 {
		return []Issue{{Severity: SeverityError, Path: "runtime.split_workers", Message: "split_workers must not be negative"}}
	}
	return nil
}
