package convert

// SheetData is one standard dictionary produced from a source file.
type SheetData struct {
	// Locale is the locale column name, or the source base name in
	// value-column mode.
	Locale string
	// Data maps keys to translated strings. Under nested key style values
	// may be nested maps whose leaves are strings.
	Data map[string]any
	// OutputPath is the absolute path the dictionary is written to.
	OutputPath string
}

// OutputType tells how a SpecialOutput is serialised.
type OutputType string

const (
	OutputJSON OutputType = "json"
	OutputFile OutputType = "file"
)

// SpecialOutput is an artifact produced by a diverted row.
type SpecialOutput struct {
	OutputPath string
	// Content is a []map[string]any for OutputJSON and a string for OutputFile.
	Content any
	Type    OutputType
}

// Result groups everything produced from one source file's content.
type Result struct {
	I18n    []SheetData
	Special []SpecialOutput
	// Locales are the detected locale columns.
	Locales []string
}

// Report counts what happened while converting one or more files.
type Report struct {
	// Processed is the number of source files read and converted.
	Processed int
	// Written is the number of artifacts written to disk.
	Written int
	// Skipped counts files rejected by the filter and empty artifacts.
	Skipped int
	// Failed counts unreadable or unsupported files and failed writes.
	Failed int
}

// Add accumulates other into r.
func (r *Report) Add(other Report) {
	r.Processed += other.Processed
	r.Written += other.Written
	r.Skipped += other.Skipped
	r.Failed += other.Failed
}
