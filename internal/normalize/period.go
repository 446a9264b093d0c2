package normalize

import (
	"strings"
	"unicode"
)

// periodDelimiter separates the label prefix from the period in headers such
// as "Total Fee in Mar24".
const periodDelimiter = "in"

// DerivePeriodLabel extracts a display label such as "Mar'24" from a resolved
// header of the form "<prefix> in <period>".
//
// The text after the last "in", matched in any case and also inside a word,
// loses its whitespace and every apostrophe. Then an apostrophe is placed before a trailing 2- or 4-digit year. A header
// without "in", or with nothing after it, is returned verbatim.
func DerivePeriodLabel(header string) string {
	idx := lastIndexFold(header, periodDelimiter)
	if idx < 0 {
		return header
	}

	fragment := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' || r == '’' {
			return -1
		}
		return r
	}, header[idx+len(periodDelimiter):])
	if fragment == "" {
		return header
	}

	return markYear(fragment)
}

// lastIndexFold is strings.LastIndex with ASCII case folding of substr.
func lastIndexFold(s, substr string) int {
	for i := len(s) - len(substr); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

// markYear inserts an apostrophe before the trailing year digits of fragment.
// Fragments that do not end in exactly 2 or 4 digits are left alone.
func markYear(fragment string) string {
	runes := []rune(fragment)
	if len(runes) <= 2 {
		return fragment
	}

	digits := 0
	for i := len(runes) - 1; i >= 0 && unicode.IsDigit(runes[i]); i-- {
		digits++
	}
	if digits != 2 && digits != 4 {
		return fragment
	}

	cut := len(runes) - digits
	if cut == 0 {
		return fragment
	}
	if runes[cut-1] == '\'' || runes[cut-1] == '’' {
		return fragment
	}

	return string(runes[:cut]) + "'" + string(runes[cut:])
}

// BundleSlug turns a period label into a file-name friendly token.
func BundleSlug(label string) string {
	return strings.ReplaceAll(strings.TrimSpace(label), " ", "_")
}
