package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeKey canonicalizes a column label: trimmed, uppercased, accents removed.
// "  Orden Electrónica " becomes "ORDEN ELECTRONICA".
func NormalizeKey(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ""
	}

	// transform.Chain keeps state, so each call builds its own chain.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	stripped, _, err := transform.String(stripMarks, trimmed)
	if err != nil {
		stripped = trimmed
	}

	return strings.ToUpper(stripped)
}

// FoldSeparators replaces '_', '-' and '.' with spaces and collapses runs of whitespace.
func FoldSeparators(s string) string {
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.':
			return ' '
		}

		return r
	}, s)

	return NormalizeWhitespace(replaced)
}

// NormalizeWhitespace replaces multiple whitespace with single space.
func NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// Truncate cuts str to at most maxRunes runes. It never splits a UTF-8 sequence.
func Truncate(str string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}

	if utf8.RuneCountInString(str) <= maxRunes {
		return str
	}

	count := 0
	for i := range str {
		if count == maxRunes {
			return str[:i]
		}
		count++
	}

	return str
}

// Excerpt returns the leading part of s for diagnostics, with whitespace collapsed.
func Excerpt(s string, maxRunes int) string {
	clean := NormalizeWhitespace(s)
	if utf8.RuneCountInString(clean) <= maxRunes {
		return clean
	}

	return Truncate(clean, maxRunes) + "..."
}
