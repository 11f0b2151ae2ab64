package parser

// Row maps a column name to its cell value. A column missing from the
// source line is absent from the map.
type Row map[string]string

// Get returns the cell value for column, or "" when absent.
func (r Row) Get(column string) string {
	return r[column]
}

// ParseError describes a structural problem with one source row. Parsing
// continues past it.
type ParseError struct {
	// Type is the error family (Quotes, Delimiter, FieldMismatch).
	Type string
	// Code identifies the specific problem, e.g. TooFewFields.
	Code string
	// Message is a human readable description.
	Message string
	// Row is the 0-based data row index (-1 when not tied to a row).
	Row int
	// Line is the 1-based source line where the record starts (0 if unknown).
	Line int
}

func (e ParseError) Error() string {
	return e.Message
}

// Table is the result of parsing delimited text in header mode.
type Table struct {
	// Rows holds one entry per non-empty data line.
	Rows []Row
	// Fields are the header names, in column order.
	Fields []string
	// Delimiter is the delimiter used, whether given or detected.
	Delimiter string
	// Errors lists recoverable structural problems.
	Errors []ParseError
}

// Source is the textual form of an input file, ready for parsing.
type Source struct {
	// Text is the delimited text content.
	Text string
	// Delimiter, when set, overrides the configured delimiter.
	Delimiter string
}
