package builtin

import (
	"fmt"

	"csvclean/internal/config"
	"csvclean/internal/slug"
	"csvclean/internal/split"
	"csvclean/internal/transformer"
)

// FromConfig builds the step described by tc. workers is passed to split
// steps.
func FromConfig(tc config.Transform, workers int) (transformer.Step, error) {
	o := tc.Options
	switch tc.Kind {
	case "normalize_headers":
		return NormalizeHeaders{Normalizer: slug.Normalizer{FoldAccents: o.Bool("fold_accents", false)}}, nil
	case "drop":
		return &Drop{Columns: o.StringSlice("columns")}, nil
	case "keep":
		return Keep{Columns: o.StringSlice("columns")}, nil
	case "trim":
		return Trim{}, nil
	case "split_pattern":
		rule, err := patternRule(o)
		if err != nil {
			return nil, err
		}
		return newSplit(tc.Kind, o, rule, workers)
	case "split_delimiter":
		rule, err := split.NewDelimiterRule(o.String("delimiter", " "), o.Int("max_splits", 1))
		if err != nil {
			return nil, err
		}
		return newSplit(tc.Kind, o, rule, workers)
	}
	return nil, fmt.Errorf("unknown transform kind %q", tc.Kind)
}

// Build turns a pipeline's transform list into a chain.
func Build(p config.Pipeline) (transformer.Chain, error) {
	chain := make(transformer.Chain, 0, len(p.Transform))
	for i, tc := range p.Transform {
		step, err := FromConfig(tc, p.Runtime.SplitWorkers)
		if err != nil {
			return nil, fmt.Errorf("transform[%d]: %w", i, err)
		}
		chain = append(chain, step)
	}
	return chain, nil
}

func patternRule(o config.Options) (split.Rule, error) {
	policy := split.KeepWhole
	if o.Has("no_match") {
		nm := o.StringMap("no_match")
		first, err := split.ParseFallback(valueOr(nm["first"], "original"))
		if err != nil {
			return nil, err
		}
		second, err := split.ParseFallback(valueOr(nm["second"], "empty"))
		if err != nil {
			return nil, err
		}
		policy = split.NoMatchPolicy{First: first, Second: second}
	}

	expr := o.String("pattern", "")
	if expr == "" {
		expr = split.UnitPattern(o.StringSlice("designators")...)
	}
	return split.NewPatternRule(expr, policy)
}

func newSplit(kind string, o config.Options, rule split.Rule, workers int) (transformer.Step, error) {
	column := o.String("column", "")
	if column == "" {
		return nil, fmt.Errorf("%s: column must not be empty", kind)
	}
	into := o.StringSlice("into")
	if len(into) != 2 {
		return nil, fmt.Errorf("%s: into must name exactly two columns, got %v", kind, into)
	}
	return Split{
		Kind:    kind,
		Column:  column,
		Rule:    rule,
		First:   into[0],
		Second:  into[1],
		Workers: workers,
	}, nil
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
