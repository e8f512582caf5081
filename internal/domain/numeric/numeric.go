// Package numeric provides locale-tolerant decimal parsing for user-submitted
// stat fields. Submissions arrive with either comma or dot decimal separators
// and sometimes carry emphasis markup copied from chat messages.
package numeric

import (
	"strconv"
	"strings"
)

// SortSentinel is returned by SafeSortKey for unparseable input so malformed
// rows sort last under ascending order instead of aborting the aggregation.
const SortSentinel = 9999

// ParseDecimal parses a decimal string accepting either ',' or '.' as the
// separator. Emphasis markup (literal "**") and surrounding whitespace are
// stripped first. The second return value is false when the input does not
// parse; callers choose their own fallback.
func ParseDecimal(s string) (float64, bool) {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SafeSortKey parses like ParseDecimal but returns SortSentinel on failure.
func SafeSortKey(s string) float64 {
	if v, ok := ParseDecimal(s); ok {
		return v
	}
	return SortSentinel
}

// Normalize rewrites a decimal string into canonical dot-separated form,
// returning the input unchanged when it does not parse. Used at the input
// boundary so stored envelopes always carry dot-separated decimals.
func Normalize(s string) string {
	if v, ok := ParseDecimal(s); ok {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return s
}
