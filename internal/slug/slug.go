// Package slug turns free-form column headers into canonical identifiers:
// lowercase ASCII letters and digits joined by single underscores.
//
// Example:
//
//	slug.Normalize("Flat Rate (Non-Contract)") // "flat_rate_non_contract"
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer converts header text into a slug. The zero value applies the
// plain ASCII rules; FoldAccents additionally strips diacritics first so that
// "Café" keeps its letters as "cafe" instead of "caf".
type Normalizer struct {
	FoldAccents bool
}

// Normalize slugs name with the default Normalizer.
func Normalize(name string) string {
	return Normalizer{}.Normalize(name)
}

// NormalizeAll slugs every name, preserving order and length.
func NormalizeAll(names []string) []string {
	return Normalizer{}.NormalizeAll(names)
}

// Normalize lowercases and trims name, replaces every run of characters
// outside [a-z0-9] with a single underscore, and strips edge underscores.
// The result may be empty when name has no ASCII letters or digits.
func (n Normalizer) Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if n.FoldAccents {
		s = foldAccents(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// NormalizeAll slugs every name, preserving order and length.
func (n Normalizer) NormalizeAll(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = n.Normalize(name)
	}
	return out
}

// foldAccents decomposes s, removes nonspacing marks and recomposes it.
func foldAccents(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
