package convert

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sheet-i18n/internal/config"
	"sheet-i18n/internal/filewalker"
	"sheet-i18n/internal/output"
	"sheet-i18n/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

type fakeFinder struct {
	calls int
	files []string
	err   error
}

func (f *fakeFinder) Glob(cwd string, globs, ignore []string) ([]string, error) {
	f.calls++
	return f.files, f.err
}

func writeSource(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readJSON(t *testing.T, path string) gjson.Result {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(data), string(data))
	return gjson.ParseBytes(data)
}

func newConverter(t *testing.T, opts config.Options, cwd string) *Converter {
	t.Helper()
	c, err := NewConverter(config.Resolve(opts), cwd, nil)
	require.NoError(t, err)
	return c
}

func TestScanConvert(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "app/i18n.csv", "KEY,en,fr\nhello,Hello,Bonjour\nbye,Bye,Au revoir")
	writeSource(t, root, "app/other.csv", "KEY,en\nignored,Ignored")

	c := newConverter(t, config.Options{}, root)
	report, err := c.ScanConvert()
	require.NoError(t, err)

	assert.Equal(t, Report{Processed: 1, Written: 2}, report)
	en := readJSON(t, filepath.Join(root, "app", "en.json"))
	assert.Equal(t, "Hello", en.Get("hello").String())
	assert.Equal(t, "Au revoir", readJSON(t, filepath.Join(root, "app", "fr.json")).Get("bye").String())
}

func TestScanConvertMergesAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "a/i18n.csv", "KEY,en\nhello,Hello\nshared,From A")
	writeSource(t, root, "b/i18n.csv", "KEY,en\nbye,Bye\nshared,From B")

	stale := writeSource(t, root, "dist/en.json", `{"stale":"yes"}`)

	c := newConverter(t, config.Options{OutDir: config.String("dist")}, root)
	report, err := c.ScanConvert()
	require.NoError(t, err)
	assert.Equal(t, 2, report.Written)

	en := readJSON(t, stale)
	assert.False(t, en.Get("stale").Exists())
	assert.Equal(t, "Hello", en.Get("hello").String())
	assert.Equal(t, "Bye", en.Get("bye").String())
	assert.Equal(t, "From B", en.Get("shared").String())
}

func TestScanConvertWithoutMergeOverwrites(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "a/i18n.csv", "KEY,en\nhello,Hello")
	writeSource(t, root, "b/i18n.csv", "KEY,en\nbye,Bye")

	c := newConverter(t, config.Options{OutDir: config.String("dist"), MergeOutput: config.Bool(false)}, root)
	_, err := c.ScanConvert()
	require.NoError(t, err)

	en := readJSON(t, filepath.Join(root, "dist", "en.json"))
	assert.False(t, en.Get("hello").Exists())
	assert.Equal(t, "Bye", en.Get("bye").String())
}

func TestScanConvertEmptyIncludeDoesNothing(t *testing.T) {
	finder := &fakeFinder{files: []string{"/never/i18n.csv"}}
	reads := 0

	c := newConverter(t, config.Options{Include: &[]config.Pattern{}}, t.TempDir())
	c.finder = finder
	c.readerFor = func(path string, spreadsheets bool) (parser.Reader, error) {
		reads++
		return parser.ReaderFor(path, spreadsheets)
	}

	report, err := c.ScanConvert()
	require.NoError(t, err)
	assert.Equal(t, Report{}, report)
	assert.Zero(t, finder.calls)
	assert.Zero(t, reads)
}

func TestScanConvertGlobFailure(t *testing.T) {
	c := newConverter(t, config.Options{}, t.TempDir())
	c.finder = &fakeFinder{err: errors.New("boom")}

	_, err := c.ScanConvert()
	assert.ErrorContains(t, err, "boom")
}

func TestScanConvertGlobPatterns(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "locales/app.tsv", "KEY\ten\nhello\tHello")
	writeSource(t, root, "locales/skip.tsv", "KEY\ten\nhello\tSkipped")

	include, err := config.ParsePatterns([]string{"locales/*.tsv"})
	require.NoError(t, err)
	exclude, err := config.ParsePatterns([]string{"/skip/"})
	require.NoError(t, err)

	c := newConverter(t, config.Options{
		Include:           &include,
		Exclude:           &exclude,
		OutDir:            config.String("out"),
		PreserveStructure: ptrStructure(config.StructurePrefixed),
	}, root)
	report, err := c.ScanConvert()
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, "Hello", readJSON(t, filepath.Join(root, "out", "locales", "app_en.json")).Get("hello").String())
	assert.NoFileExists(t, filepath.Join(root, "out", "locales", "skip_en.json"))
}

func TestProcessSheetFileSpecialOutputs(t *testing.T) {
	root := t.TempDir()
	src := writeSource(t, root, "i18n.csv", "KEY,en,fr\n"+
		"$JII;cloud;id:s1;config;name,Name,Nom\n"+
		"$JII;cloud;id:s1;config;desc,Desc,Description\n"+
		"$JII;cloud;id:s2;config;name,Other,Autre\n"+
		"$FILE;terms;md,Readme EN,Lisez-moi\n"+
		"hello,Hello,Bonjour\n")

	c := newConverter(t, config.Options{
		JII:  &config.Processor{Enabled: config.Bool(true)},
		File: &config.Processor{Enabled: config.Bool(true)},
	}, root)
	report := c.ProcessSheetFile(src)

	assert.Equal(t, Report{Processed: 1, Written: 5}, report)

	cloud := readJSON(t, filepath.Join(root, "cloud.json"))
	assert.Equal(t, int64(2), cloud.Get("#").Int())
	assert.Equal(t, "s1", cloud.Get("0.id").String())
	assert.Equal(t, "Name", cloud.Get("0.config.i18n.en.name").String())
	assert.Equal(t, "Desc", cloud.Get("0.config.i18n.en.desc").String())
	assert.Equal(t, "Autre", cloud.Get("1.config.i18n.fr.name").String())

	terms, err := os.ReadFile(filepath.Join(root, "terms_en.md"))
	require.NoError(t, err)
	assert.Equal(t, "Readme EN", string(terms))

	en := readJSON(t, filepath.Join(root, "en.json"))
	assert.Equal(t, `{"hello":"Hello"}`, en.Get("@ugly").Raw)
}

func TestProcessSheetFileSkipsEmptyDictionaries(t *testing.T) {
	root := t.TempDir()
	src := writeSource(t, root, "i18n.csv", "KEY,en,fr\nhello,Hello,")

	report := newConverter(t, config.Options{}, root).ProcessSheetFile(src)

	assert.Equal(t, Report{Processed: 1, Written: 1, Skipped: 1}, report)
	assert.FileExists(t, filepath.Join(root, "en.json"))
	assert.NoFileExists(t, filepath.Join(root, "fr.json"))
}

func TestProcessSheetFileFiltered(t *testing.T) {
	root := t.TempDir()
	src := writeSource(t, root, "translations.csv", "KEY,en\nhello,Hello")

	report := newConverter(t, config.Options{}, root).ProcessSheetFile(src)

	assert.Equal(t, Report{Skipped: 1}, report)
	assert.NoFileExists(t, filepath.Join(root, "en.json"))
}

func TestProcessSheetFileUnsupported(t *testing.T) {
	root := t.TempDir()
	all := &[]config.Pattern{}

	book := writeSource(t, root, "book.xlsx", "")
	report := newConverter(t, config.Options{Include: all}, root).ProcessSheetFile(book)
	assert.Equal(t, Report{Failed: 1}, report)

	notes := writeSource(t, root, "notes.json", "{}")
	report = newConverter(t, config.Options{Include: all, XLSX: config.Bool(true)}, root).ProcessSheetFile(notes)
	assert.Equal(t, Report{Failed: 1}, report)
}

func TestProcessSheetFileWriteFailureIsolated(t *testing.T) {
	root := t.TempDir()
	src := writeSource(t, root, "i18n.csv", "KEY,en,fr\nhello,Hello,Bonjour")
	require.NoError(t, os.Mkdir(filepath.Join(root, "en.json"), 0o755))

	report := newConverter(t, config.Options{}, root).ProcessSheetFile(src)

	assert.Equal(t, Report{Processed: 1, Written: 1, Failed: 1}, report)
	assert.DirExists(t, filepath.Join(root, "en.json"))
	assert.Equal(t, "Bonjour", readJSON(t, filepath.Join(root, "fr.json")).Get("hello").String())
}

func TestScanConvertReadFailureIsolated(t *testing.T) {
	root := t.TempDir()
	broken := writeSource(t, root, "broken/i18n.xlsx", "not a zip archive")
	good := writeSource(t, root, "good/i18n.csv", "KEY,en\nhello,Hello")

	include := []config.Pattern{{Glob: filewalker.MatchAll}}
	c := newConverter(t, config.Options{Include: &include, XLSX: config.Bool(true)}, root)
	c.finder = &fakeFinder{files: []string{broken, good}}

	report, err := c.ScanConvert()
	require.NoError(t, err)

	assert.Equal(t, Report{Processed: 1, Written: 1, Failed: 1}, report)
	assert.NoFileExists(t, filepath.Join(root, "broken", "en.json"))
	assert.Equal(t, "Hello", readJSON(t, filepath.Join(root, "good", "en.json")).Get("hello").String())
}

func TestProcessSheetFileWorkbook(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "i18n.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"KEY", "en", "de"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"hello", "Hello, you", "Hallo"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	include, err := config.ParsePatterns([]string{"*.xlsx"})
	require.NoError(t, err)

	c := newConverter(t, config.Options{Include: &include, XLSX: config.Bool(true), Delimiter: config.String(";")}, root)
	report, err := c.ScanConvert()
	require.NoError(t, err)

	assert.Equal(t, Report{Processed: 1, Written: 2}, report)
	assert.Equal(t, "Hello, you", readJSON(t, filepath.Join(root, "en.json")).Get("hello").String())
	assert.Equal(t, "Hallo", readJSON(t, filepath.Join(root, "de.json")).Get("hello").String())
}

func TestConverterSharesWriterState(t *testing.T) {
	root := t.TempDir()
	a := writeSource(t, root, "a/i18n.csv", "KEY,en\nhello,Hello")
	b := writeSource(t, root, "b/i18n.csv", "KEY,en\nbye,Bye")

	writer := output.NewWriter(output.NewState())
	c, err := NewConverter(config.Resolve(config.Options{OutDir: config.String("dist")}), root, writer)
	require.NoError(t, err)

	c.ProcessSheetFile(a)
	c.ProcessSheetFile(b)

	en := readJSON(t, filepath.Join(root, "dist", "en.json"))
	assert.Equal(t, "Hello", en.Get("hello").String())
	assert.Equal(t, "Bye", en.Get("bye").String())
}

func ptrStructure(s config.Structure) *config.Structure { return &s }
