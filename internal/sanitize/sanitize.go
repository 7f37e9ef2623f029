// Package sanitize turns arbitrary strings into safe PostgreSQL identifiers.
//
// Two policies exist:
//   - ColumnName: substitution and lowercasing only, applied to raw CSV
//     headers. A leading digit is left alone because the identifier is
//     always quoted at the SQL layer.
//   - TableName: the same substitution applied to an already lowercased,
//     extension-stripped base name.
//
// Both are total functions: any input, including the empty string, produces
// a deterministic output. Ordered header sanitization additionally resolves
// duplicate and empty results so the column set stays collision-free.
package sanitize

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// Sanitizer maps raw strings to identifier-safe strings. The zero value
// permits ASCII word characters only; Allow extends the permitted set with
// an additional script (e.g. unicode.Hangul for Korean headers).
type Sanitizer struct {
	allowed []*unicode.RangeTable
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// Allow permits runes from the given Unicode range tables in addition to
// ASCII word characters.
func Allow(tables ...*unicode.RangeTable) Option {
	return func(s *Sanitizer) {
		s.allowed = append(s.allowed, tables...)
	}
}

// New creates a Sanitizer with the given options.
func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ColumnName sanitizes a single raw header name: every rune outside the
// permitted set becomes '_', and the result is lowercased. The result is
// truncated to the PostgreSQL identifier limit.
func (s *Sanitizer) ColumnName(raw string) string {
	return truncateIdentifier(strings.ToLower(s.substitute(raw)))
}

// TableName sanitizes a table name candidate. The substitution is identical
// to ColumnName; callers strip the file extension and apply any prefix
// before sanitizing.
func (s *Sanitizer) TableName(raw string) string {
	return truncateIdentifier(s.substitute(strings.ToLower(raw)))
}

// ColumnNames sanitizes an ordered header row, preserving order and
// cardinality: exactly one output name per input name.
//
// Two raw headers may sanitize to the same identifier, and a header made
// entirely of substituted runes may sanitize to underscores or nothing.
// Both would make the staging DDL invalid, so:
//   - a name that is empty or all underscores becomes col_<position> (1-based)
//   - later duplicates get a numeric suffix: name, name_2, name_3, ...
func (s *Sanitizer) ColumnNames(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))

	for i, r := range raw {
		name := s.ColumnName(r)
		if strings.Trim(name, "_") == "" {
			name = fmt.Sprintf("col_%d", i+1)
		}

		if seen[name] > 0 {
			base := name
			for n := seen[base] + 1; ; n++ {
				candidate := disambiguate(base, n)
				if seen[candidate] == 0 {
					seen[base] = n
					name = candidate
					break
				}
			}
		}
		seen[name]++
		out[i] = name
	}

	return out
}

// substitute replaces every rune outside the permitted set with '_'.
func (s *Sanitizer) substitute(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if s.permitted(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (s *Sanitizer) permitted(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	}
	for _, table := range s.allowed {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}

// disambiguate appends a numeric suffix while keeping the identifier within
// the PostgreSQL length limit.
func disambiguate(name string, n int) string {
	suffix := fmt.Sprintf("_%d", n)
	if len(name)+len(suffix) > pgingest.MaxIdentifierLength {
		name = name[:pgingest.MaxIdentifierLength-len(suffix)]
		for len(name) > 0 && !utf8.ValidString(name) {
			name = name[:len(name)-1]
		}
	}
	return name + suffix
}

func truncateIdentifier(name string) string {
	if len(name) <= pgingest.MaxIdentifierLength {
		return name
	}
	// Cut at a rune boundary; permitted multi-byte runes must not be split.
	b := name[:pgingest.MaxIdentifierLength]
	for len(b) > 0 && !utf8.ValidString(b) {
		b = b[:len(b)-1]
	}
	return b
}

var defaultSanitizer = New()

// ColumnName sanitizes a raw header name with the default (ASCII) Sanitizer.
func ColumnName(raw string) string {
	return defaultSanitizer.ColumnName(raw)
}

// ColumnNames sanitizes an ordered header row with the default Sanitizer.
func ColumnNames(raw []string) []string {
	return defaultSanitizer.ColumnNames(raw)
}

// TableName sanitizes a table name candidate with the default Sanitizer.
func TableName(raw string) string {
	return defaultSanitizer.TableName(raw)
}
