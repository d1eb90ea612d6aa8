package cbcr

import (
	"strings"
	"unicode"
)

// NormalizeCellText normalizes text cells coming out of spreadsheet
// exports before coercion. Exported workbooks routinely carry
// non-breaking spaces, zero-width characters and stray whitespace that
// would otherwise defeat header matching and value parsing.
//
// Normalizations performed:
// - Unicode whitespace variants (NBSP, thin spaces, etc.) → regular space
// - Zero-width and other invisible format characters → removed
// - Consecutive whitespace → single space
// - Leading/trailing whitespace → trimmed
func NormalizeCellText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := false
	for _, r := range s {
		switch r {
		case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u180E':
			continue // zero-width characters
		}
		if unicode.Is(unicode.Cf, r) {
			continue // other invisible format characters
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}

	return strings.TrimSpace(b.String())
}

// normalizeNumberText prepares a numeric cell string for parsing.
// Spreadsheet exports format amounts with thousands separators and
// occasionally wrap negatives in parentheses.
func normalizeNumberText(s string) string {
	s = NormalizeCellText(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")

	// Accounting-style negatives: (1234) -> -1234
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		s = "-" + s[1:len(s)-1]
	}

	return s
}

// equalLabel compares header/row labels the way uploaders type them:
// case-insensitive on normalized text, with a containment fallback so
// "Tax Jurisdiction (name)" still matches "Tax Jurisdiction".
func equalLabel(have, want string) bool {
	h := strings.ToLower(NormalizeCellText(have))
	w := strings.ToLower(NormalizeCellText(want))
	if h == w {
		return true
	}
	return w != "" && strings.Contains(h, w)
}
