// Package split divides a single free-text field into two output fields.
//
// Two rule variants exist:
//
//   - PatternRule extracts two capture groups from an anchored regular
//     expression (street address → street + unit).
//   - DelimiterRule cuts at the first delimiter (catalog line → code +
//     description).
//
// Every input produces a well-formed pair; values that do not match fall back
// according to the rule's NoMatchPolicy instead of failing.
package split

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidRule is returned when a rule cannot be constructed.
var ErrInvalidRule = errors.New("invalid split rule")

// Rule splits one value into two.
type Rule interface {
	Split(value string) (string, string)
}

// Fallback selects what an output field receives when a rule does not match.
type Fallback int

const (
	// FallbackOriginal uses the full, unmodified input value.
	FallbackOriginal Fallback = iota
	// FallbackEmpty uses the empty string.
	FallbackEmpty
)

// ParseFallback maps "original" or "empty" to a Fallback.
func ParseFallback(s string) (Fallback, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "original":
		return FallbackOriginal, nil
	case "empty", "":
		return FallbackEmpty, nil
	}
	return 0, fmt.Errorf("%w: unknown fallback %q (want original or empty)", ErrInvalidRule, s)
}

func (f Fallback) String() string {
	if f == FallbackOriginal {
		return "original"
	}
	return "empty"
}

func (f Fallback) apply(value string) string {
	if f == FallbackOriginal {
		return value
	}
	return ""
}

// NoMatchPolicy names the fallback for each output field.
type NoMatchPolicy struct {
	First  Fallback
	Second Fallback
}

// KeepWhole is the default policy: the whole value stays in the first field
// and the second field is empty.
var KeepWhole = NoMatchPolicy{First: FallbackOriginal, Second: FallbackEmpty}

func (p NoMatchPolicy) apply(value string) (string, string) {
	return p.First.apply(value), p.Second.apply(value)
}

// DefaultUnitDesignators are the case-sensitive keywords that start the unit
// part of a street address. "#" matches any token beginning with '#'.
var DefaultUnitDesignators = []string{"Suite", "Unit", "Apt", "#", "Apartment"}

// PatternRule splits a value using a regular expression with exactly two
// capture groups.
type PatternRule struct {
	re      *regexp.Regexp
	noMatch NoMatchPolicy
}

// NewPatternRule compiles expr and checks it has two capture groups. The
// expression is used as given; callers wanting a full-string match anchor it
// with ^ and $.
func NewPatternRule(expr string, noMatch NoMatchPolicy) (*PatternRule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: compile pattern: %v", ErrInvalidRule, err)
	}
	if n := re.NumSubexp(); n != 2 {
		return nil, fmt.Errorf("%w: pattern %q has %d capture groups, want 2", ErrInvalidRule, expr, n)
	}
	return &PatternRule{re: re, noMatch: noMatch}, nil
}

// unicodeSpace matches Unicode whitespace; RE2's \s is ASCII-only and
// misses NBSP and \v.
const unicodeSpace = `[\s\v\p{Z}\x{85}\x{1c}-\x{1f}]+`

// UnitPattern returns the anchored address expression for the designators:
// a non-greedy street part, whitespace, then a designator and the rest. A
// single trailing newline is allowed before the end and left out of the unit.
func UnitPattern(designators ...string) string {
	if len(designators) == 0 {
		designators = DefaultUnitDesignators
	}
	quoted := make([]string, len(designators))
	for i, d := range designators {
		quoted[i] = regexp.QuoteMeta(d)
	}
	return `^(.*?)` + unicodeSpace + `((?:` + strings.Join(quoted, "|") + `).*)\n?$`
}

// NewUnitPattern builds the street/unit PatternRule with the KeepWhole policy.
func NewUnitPattern(designators ...string) (*PatternRule, error) {
	for _, d := range designators {
		if d == "" {
			return nil, fmt.Errorf("%w: empty unit designator", ErrInvalidRule)
		}
	}
	return NewPatternRule(UnitPattern(designators...), KeepWhole)
}

// Split returns the two capture groups, or the NoMatchPolicy fallbacks when
// the pattern does not match.
func (r *PatternRule) Split(value string) (string, string) {
	m := r.re.FindStringSubmatch(value)
	if m == nil {
		return r.noMatch.apply(value)
	}
	return m[1], m[2]
}

// String returns the source expression.
func (r *PatternRule) String() string { return r.re.String() }

// DelimiterRule cuts a value at the first occurrence of Delimiter.
type DelimiterRule struct {
	delim   string
	noMatch NoMatchPolicy
}

// NewDelimiterRule validates the delimiter and split count. Only one split is
// supported since the rule always yields two fields.
func NewDelimiterRule(delim string, maxSplits int) (*DelimiterRule, error) {
	if delim == "" {
		return nil, fmt.Errorf("%w: delimiter must not be empty", ErrInvalidRule)
	}
	if maxSplits != 1 {
		return nil, fmt.Errorf("%w: max splits must be 1, got %d", ErrInvalidRule, maxSplits)
	}
	return &DelimiterRule{delim: delim, noMatch: KeepWhole}, nil
}

// Split returns the text before and after the first delimiter. When the
// delimiter is absent the whole value goes to the first field.
func (r *DelimiterRule) Split(value string) (string, string) {
	before, after, found := strings.Cut(value, r.delim)
	if !found {
		return r.noMatch.apply(value)
	}
	return before, after
}

// SplitByPattern is a convenience wrapper around NewPatternRule.
func SplitByPattern(value, expr string, noMatch NoMatchPolicy) (string, string, error) {
	r, err := NewPatternRule(expr, noMatch)
	if err != nil {
		return "", "", err
	}
	a, b := r.Split(value)
	return a, b, nil
}

// SplitByDelimiter is a convenience wrapper around NewDelimiterRule.
func SplitByDelimiter(value, delim string, maxSplits int) (string, string, error) {
	r, err := NewDelimiterRule(delim, maxSplits)
	if err != nil {
		return "", "", err
	}
	a, b := r.Split(value)
	return a, b, nil
}

// Nullable applies r to a cell that may be missing. A nil cell yields nil for
// both outputs; strings are split by r. Any other type is formatted first.
func Nullable(r Rule, cell any) (any, any) {
	switch v := cell.(type) {
	case nil:
		return nil, nil
	case string:
		a, b := r.Split(v)
		return a, b
	default:
		a, b := r.Split(fmt.Sprint(v))
		return a, b
	}
}
