package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrUnsupportedExtension is returned for files no reader handles.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	// ErrSpreadsheetDisabled is returned for workbooks when spreadsheet support is off.
	ErrSpreadsheetDisabled = errors.New("spreadsheet support is not enabled")
)

// TextExtensions lists delimiter-separated text formats.
var TextExtensions = []string{".csv", ".dsv", ".tsv"}

// SpreadsheetExtensions lists workbook formats accepted when spreadsheet
// support is enabled.
var SpreadsheetExtensions = []string{".xls", ".xlsx", ".xlsm", ".xlsb", ".ods", ".fods"}

// Reader turns a source file into delimited text.
type Reader interface {
	// CanParse returns true if this reader handles the given file extension.
	CanParse(ext string) bool
	// Read loads the file at path.
	Read(path string) (Source, error)
}

// ReaderFor returns the reader for path, honouring the spreadsheet toggle.
func ReaderFor(path string, spreadsheets bool) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(path))

	text := NewDSVReader()
	if text.CanParse(ext) {
		return text, nil
	}

	book := NewWorkbookReader()
	if book.CanParse(ext) {
		if !spreadsheets {
			return nil, fmt.Errorf("%w: %s", ErrSpreadsheetDisabled, ext)
		}
		return book, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
}

// DSVReader reads delimiter-separated text files.
type DSVReader struct{}

func NewDSVReader() *DSVReader { return &DSVReader{} }

func (r *DSVReader) CanParse(ext string) bool {
	return slices.Contains(TextExtensions, ext)
}

// Read loads the file as UTF-8 text. A leading byte order mark is removed;
// UTF-16 files with a BOM are transcoded.
func (r *DSVReader) Read(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("read text file: %w", err)
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return Source{}, fmt.Errorf("decode text file: %w", err)
	}

	return Source{Text: string(decoded)}, nil
}

// WorkbookReader reads spreadsheet workbooks. Every sheet is read with its
// first row as header, all rows are concatenated, and the result is
// rendered as record-separator delimited text.
type WorkbookReader struct{}

func NewWorkbookReader() *WorkbookReader { return &WorkbookReader{} }

func (r *WorkbookReader) CanParse(ext string) bool {
	return slices.Contains(SpreadsheetExtensions, ext)
}

func (r *WorkbookReader) Read(path string) (Source, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var (
		header  []string
		known   = make(map[string]bool)
		records []Row
	)

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return Source{}, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		fields := sheetFields(rows[0])
		for _, name := range fields {
			if name != "" && !known[name] {
				known[name] = true
				header = append(header, name)
			}
		}

		for _, cells := range rows[1:] {
			row := make(Row)
			for i, v := range cells {
				if i < len(fields) && fields[i] != "" && v != "" {
					row[fields[i]] = v
				}
			}
			if len(row) > 0 {
				records = append(records, row)
			}
		}
	}

	text, err := renderRecords(header, records)
	if err != nil {
		return Source{}, fmt.Errorf("render workbook %s: %w", filepath.Base(path), err)
	}
	return Source{Text: text, Delimiter: RecordSeparator}, nil
}

// sheetFields names the columns of one sheet; blank header cells leave
// their column unnamed and repeated names get a numeric suffix.
func sheetFields(headerRow []string) []string {
	named := make([]string, 0, len(headerRow))
	for _, h := range headerRow {
		if h != "" {
			named = append(named, h)
		}
	}
	unique := uniqueFields(named)

	fields := make([]string, len(headerRow))
	j := 0
	for i, h := range headerRow {
		if h == "" {
			continue
		}
		fields[i] = unique[j]
		j++
	}
	return fields
}

func renderRecords(header []string, records []Row) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = []rune(RecordSeparator)[0]
	w.UseCRLF = true

	if err := w.Write(header); err != nil {
		return "", err
	}
	line := make([]string, len(header))
	for _, rec := range records {
		for i, name := range header {
			line[i] = rec[name]
		}
		if err := w.Write(line); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\r\n"), nil
}
