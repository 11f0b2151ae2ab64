package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const (
	// RecordSeparator is the ASCII record separator, used as delimiter for
	// text converted from workbooks.
	RecordSeparator = "\x1e"
	// UnitSeparator is the ASCII unit separator.
	UnitSeparator = "\x1f"
)

// delimiterCandidates are tried in order when no delimiter is configured.
var delimiterCandidates = []rune{',', '\t', '|', ';', rune(RecordSeparator[0]), rune(UnitSeparator[0])}

// detectSampleSize is the number of records inspected by detectDelimiter.
const detectSampleSize = 10

// Parse reads delimited text in header mode: the first record names the
// columns, blank lines are skipped, and rows with a wrong number of fields
// are kept but reported. An empty delimiter triggers auto-detection.
func Parse(text, delimiter, logName string) Table {
	table := Table{}

	comma, err := resolveDelimiter(text, delimiter)
	if err != nil {
		table.Errors = append(table.Errors, ParseError{
			Type:    "Delimiter",
			Code:    "UndetectableDelimiter",
			Message: err.Error(),
			Row:     -1,
		})
	}
	table.Delimiter = string(comma)

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header := true
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				table.Errors = append(table.Errors, ParseError{
					Type: "Quotes", Code: "ReadFailure", Message: err.Error(), Row: len(table.Rows),
				})
				break
			}
			table.Errors = append(table.Errors, ParseError{
				Type: "Quotes", Code: "InvalidQuotes", Message: perr.Error(), Row: len(table.Rows), Line: perr.StartLine,
			})
			continue
		}

		if len(record) == 1 && record[0] == "" {
			continue
		}
		line, _ := r.FieldPos(0)

		if header {
			table.Fields = uniqueFields(record)
			header = false
			continue
		}

		idx := len(table.Rows)
		row := make(Row, len(table.Fields))
		for i, f := range table.Fields {
			if i < len(record) {
				row[f] = record[i]
			}
		}
		switch {
		case len(record) < len(table.Fields):
			table.Errors = append(table.Errors, ParseError{
				Type:    "FieldMismatch",
				Code:    "TooFewFields",
				Message: fmt.Sprintf("Too few fields: expected %d fields but parsed %d", len(table.Fields), len(record)),
				Row:     idx,
				Line:    line,
			})
		case len(record) > len(table.Fields):
			table.Errors = append(table.Errors, ParseError{
				Type:    "FieldMismatch",
				Code:    "TooManyFields",
				Message: fmt.Sprintf("Too many fields: expected %d fields but parsed %d", len(table.Fields), len(record)),
				Row:     idx,
				Line:    line,
			})
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Errors) > 0 {
		msgs := make([]string, 0, len(table.Errors))
		for _, e := range table.Errors {
			msgs = append(msgs, e.Message)
		}
		log.Error().
			Str("file", logName).
			Int("errors", len(table.Errors)).
			Msgf("Parsing errors: %s", strings.Join(msgs, ", "))
	}

	return table
}

// uniqueFields renames repeated header names to name_1, name_2, ...
func uniqueFields(record []string) []string {
	fields := make([]string, len(record))
	seen := make(map[string]int, len(record))
	for i, name := range record {
		n, dup := seen[name]
		seen[name] = n + 1
		if dup {
			candidate := fmt.Sprintf("%s_%d", name, n)
			for seen[candidate] > 0 {
				n++
				candidate = fmt.Sprintf("%s_%d", name, n)
			}
			seen[candidate] = 1
			name = candidate
		}
		fields[i] = name
	}
	return fields
}

func resolveDelimiter(text, delimiter string) (rune, error) {
	if delimiter == "" {
		return detectDelimiter(text)
	}
	r, size := utf8.DecodeRuneInString(delimiter)
	if size != len(delimiter) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		d, _ := detectDelimiter(text)
		return d, fmt.Errorf("unsupported delimiter %q, falling back to %q", delimiter, string(d))
	}
	return r, nil
}

// detectDelimiter picks the candidate giving the most consistent field
// count (lowest line-to-line variation) over the first records, preferring
// more fields on ties. Falls back to comma.
func detectDelimiter(text string) (rune, error) {
	var (
		best      rune
		bestDelta = -1
		bestAvg   float64
	)
	records := len(sampleFieldCounts(text, ',', detectSampleSize))

	for _, d := range delimiterCandidates {
		counts := sampleFieldCounts(text, d, detectSampleSize)
		if len(counts) == 0 {
			continue
		}

		total, delta := 0, 0
		for i, c := range counts {
			total += c
			if i > 0 {
				delta += abs(c - counts[i-1])
			}
		}
		avg := float64(total) / float64(len(counts))
		if avg <= 1.99 {
			continue
		}

		if bestDelta < 0 || delta < bestDelta || (delta == bestDelta && avg > bestAvg) {
			best, bestDelta, bestAvg = d, delta, avg
		}
	}

	if bestDelta < 0 {
		if records <= 1 {
			return ',', nil
		}
		return ',', fmt.Errorf("unable to auto-detect delimiting character; defaulted to ','")
	}
	return best, nil
}

// sampleFieldCounts counts fields per record for the first n non-empty
// records, honouring double-quoted fields.
func sampleFieldCounts(text string, delim rune, n int) []int {
	var counts []int
	fields, inQuotes, empty := 1, false, true

	flush := func() {
		if !empty {
			counts = append(counts, fields)
		}
		fields, empty = 1, true
	}

	for _, r := range text {
		if len(counts) >= n {
			break
		}
		switch {
		case r == '"':
			inQuotes = !inQuotes
			empty = false
		case inQuotes:
			empty = false
		case r == '\n':
			flush()
		case r == '\r':
		case r == delim:
			fields++
			empty = false
		default:
			empty = false
		}
	}
	if len(counts) < n {
		flush()
	}
	return counts
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
