// Package convert turns translation sheets into per-locale JSON dictionaries
// and the auxiliary artifacts requested by special keys.
package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sheet-i18n/internal/config"
	"sheet-i18n/internal/filewalker"
	"sheet-i18n/internal/output"
	"sheet-i18n/internal/parser"

	"github.com/rs/zerolog/log"
)

// Finder lists candidate source files under a working directory.
type Finder interface {
	Glob(cwd string, globs, ignore []string) ([]string, error)
}

// Converter processes sheet files with one resolved configuration. All
// writes of a Converter share the merge state of its Writer.
type Converter struct {
	opts      config.Resolved
	cwd       string
	finder    Finder
	writer    *output.Writer
	filter    *filewalker.Filter
	readerFor func(path string, spreadsheets bool) (parser.Reader, error)
}

// NewConverter creates a Converter rooted at cwd (the process working
// directory when empty). A nil writer gets a fresh batch state.
func NewConverter(opts config.Resolved, cwd string, writer *output.Writer) (*Converter, error) {
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		cwd = wd
	}
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	if writer == nil {
		writer = output.NewWriter(nil)
	}

	return &Converter{
		opts:      opts,
		cwd:       cwd,
		finder:    filewalker.NewWalker(),
		writer:    writer,
		filter:    filewalker.NewFilter(opts.Include, opts.Exclude, cwd),
		readerFor: parser.ReaderFor,
	}, nil
}

// Cwd returns the absolute working directory.
func (c *Converter) Cwd() string {
	return c.cwd
}

// ScanConvert finds every source file selected by the include and exclude
// patterns and processes them one after another. Only a failing file search
// is returned as an error; per-file problems are logged and counted.
func (c *Converter) ScanConvert() (Report, error) {
	var report Report

	log.Info().Str("cwd", c.cwd).Msg("Scanning directory")

	includeGlobs, includeRegexps := filewalker.NormalizePatterns(c.opts.Include)
	excludeGlobs, excludeRegexps := filewalker.NormalizePatterns(c.opts.Exclude)

	if len(includeGlobs) == 0 && len(includeRegexps) == 0 {
		log.Warn().Msg("No include patterns specified, nothing to process")
		return report, nil
	}

	search := includeGlobs
	if len(search) == 0 {
		search = []string{filewalker.MatchAll}
	}

	files, err := c.finder.Glob(c.cwd, search, excludeGlobs)
	if err != nil {
		return report, fmt.Errorf("search source files: %w", err)
	}
	files = filewalker.SelectRegexps(files, c.cwd, includeRegexps, excludeRegexps)

	if len(files) == 0 {
		log.Info().Msg("No files matched the specified patterns")
		return report, nil
	}
	log.Info().Int("files", len(files)).Msg("Found files to process")

	for _, path := range files {
		report.Add(c.convert(path))
	}

	log.Info().
		Int("processed", report.Processed).
		Int("written", report.Written).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("merge_targets", c.writer.State().Len()).
		Msg("Scan and convert finished")
	return report, nil
}

// ProcessSheetFile converts one file if it passes the include and exclude
// filter. Read failures stop this file only; write failures are isolated
// per artifact.
func (c *Converter) ProcessSheetFile(path string) Report {
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.cwd, path)
	}

	if !c.filter.Match(path) {
		log.Debug().Str("file", c.rel(path)).Msg("Skipping")
		return Report{Skipped: 1}
	}
	return c.convert(path)
}

func (c *Converter) convert(path string) Report {
	var report Report
	rel := c.rel(path)

	log.Info().Str("file", rel).Msg("Processing")

	reader, err := c.readerFor(path, c.opts.XLSX)
	if err != nil {
		if errors.Is(err, parser.ErrSpreadsheetDisabled) {
			log.Error().Err(err).Str("file", rel).Msg("Unexpected extension. Set `xlsx: true` in options to read spreadsheets")
		} else {
			log.Error().Err(err).Str("file", rel).Msg("Unexpected extension")
		}
		report.Failed++
		return report
	}

	src, err := reader.Read(path)
	if err != nil {
		log.Error().Err(err).Str("file", rel).Msg("Error reading file")
		report.Failed++
		return report
	}

	opts := c.opts
	if src.Delimiter != "" {
		opts.Delimiter = src.Delimiter
	}

	result := ProcessSheetContent(src.Text, path, opts, c.cwd)
	report.Processed++

	for _, out := range result.I18n {
		if len(out.Data) == 0 {
			log.Warn().Str("path", out.OutputPath).Msg("Empty content, skipping file write")
			report.Skipped++
			continue
		}

		if c.opts.MergeOutput {
			err = c.writer.WriteMergeJSON(out.OutputPath, out.Data)
		} else {
			err = c.writer.WriteJSON(out.OutputPath, out.Data)
		}
		if err != nil {
			log.Error().Err(err).Str("path", out.OutputPath).Msg("Error writing JSON output")
			report.Failed++
			continue
		}

		log.Info().Str("path", c.outputRel(out.OutputPath)).Str("locale", out.Locale).Msg("Generated")
		report.Written++
	}

	for _, out := range result.Special {
		switch out.Type {
		case OutputJSON:
			err = c.writer.WriteJSON(out.OutputPath, out.Content)
		default:
			content, _ := out.Content.(string)
			err = c.writer.WriteFile(out.OutputPath, content)
		}
		if err != nil {
			log.Error().Err(err).Str("path", out.OutputPath).Msg("Error writing special output")
			report.Failed++
			continue
		}

		log.Info().Str("path", c.outputRel(out.OutputPath)).Msg("Generated (special)")
		report.Written++
	}

	return report
}

func (c *Converter) rel(path string) string {
	return filewalker.Relative(c.cwd, path)
}

// outputRel shortens an output path for logging, relative to the output
// directory when one is set.
func (c *Converter) outputRel(path string) string {
	if c.opts.OutDir == "" {
		return c.rel(path)
	}
	root := c.opts.OutDir
	if !filepath.IsAbs(root) {
		root = filepath.Join(c.cwd, root)
	}
	return filewalker.Relative(root, path)
}
