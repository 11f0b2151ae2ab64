package parser

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultQuoteChar is the quote character used by the tabular parser.
const DefaultQuoteChar = `"`

// commentLineBreak splits on LF and CRLF.
var commentLineBreak = regexp.MustCompile(`\r?\n`)

// FilterCommentRows drops every line that starts with one of markers,
// optionally preceded by a single quote character. Markers are literal
// strings. With no usable marker the text is returned unchanged; otherwise
// surviving lines are joined with CRLF.
func FilterCommentRows(text string, markers []string) string {
	var matchers []*regexp.Regexp
	for _, m := range markers {
		if m == "" {
			continue
		}
		matchers = append(matchers, regexp.MustCompile(`^"?`+regexp.QuoteMeta(m)))
	}
	if len(matchers) == 0 {
		return text
	}

	lines := commentLineBreak.Split(text, -1)
	kept := lines[:0]
	for _, line := range lines {
		if !matchesAny(matchers, line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\r\n")
}

func matchesAny(matchers []*regexp.Regexp, s string) bool {
	for _, re := range matchers {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// IsEmptyCell reports whether a cell value is effectively empty: the empty
// string, or a doubled quote character standing for an escaped empty cell.
func IsEmptyCell(v string) bool {
	return IsEmptyCellQuote(v, DefaultQuoteChar)
}

// IsEmptyCellQuote is IsEmptyCell with a custom quote character.
func IsEmptyCellQuote(v, quote string) bool {
	if v == "" {
		return true
	}
	return quote != "" && v == quote+quote
}

// FilterRowsWithEmptyKeys removes rows whose key column is empty and
// returns the survivors with the number of removed rows.
func FilterRowsWithEmptyKeys(rows []Row, keyColumn, logName string) ([]Row, int) {
	filtered := make([]Row, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if IsEmptyCell(row.Get(keyColumn)) {
			skipped++
			continue
		}
		filtered = append(filtered, row)
	}

	if skipped > 0 {
		log.Info().Str("file", logName).Int("skipped", skipped).Msg("Rows with empty key skipped")
	}
	return filtered, skipped
}

// DetectLocales returns the header fields matched by matcher, in order.
func DetectLocales(fields []string, matcher *regexp.Regexp) []string {
	var locales []string
	if matcher == nil {
		return locales
	}
	for _, f := range fields {
		if matcher.MatchString(f) {
			locales = append(locales, f)
		}
	}
	return locales
}
