package cli

import (
	"fmt"

	"sheet-i18n/internal/config"

	"github.com/spf13/cobra"
)

func addOptionFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()

	f.String("cwd", "", "Working directory to scan and resolve paths against")
	f.String("config", "", "YAML configuration file (default sheet-i18n.yaml, env SHEETI18N_CONFIG)")
	f.String("log-level", "info", "Log level: debug, info, warn or error")

	f.StringArrayP("include", "i", nil, "Files to include: a glob, or /regexp/flags (repeatable)")
	f.StringArrayP("exclude", "x", nil, "Files to exclude: a glob, or /regexp/flags (repeatable)")
	f.StringP("out-dir", "o", "", "Output directory (default: next to each source file)")
	f.String("key-style", "flat", "Key style: flat or nested")
	f.Bool("xlsx", false, "Enable spreadsheet workbook sources")
	f.String("key-column", "KEY", "Column holding the translation keys")
	f.String("value-column", "", "Single value column; output is named after the source file")
	f.String("locales-matcher", `^\w{2}(?:-\w{2,4})?$`, "Regular expression selecting locale columns")
	f.String("delimiter", "", "Field delimiter, a single character (auto-detected when empty or longer)")
	f.StringArray("comments", []string{"//"}, "Comment line marker (repeatable, empty to disable)")
	f.Bool("merge-output", true, "Merge JSON written to the same path within a run")
	f.String("preserve-structure", "false", "Mirror source directories under out-dir: false, true, parent, nested or prefixed")
	f.Bool("replace-punctuation-space", true, "Use a non-breaking space before ! $ % : ; ? + -")
	f.Bool("jii", false, "Divert $JII; keys into structured JSON collections")
	f.Bool("jii-clean", true, "Remove diverted $JII; rows from the standard output")
	f.Bool("file", false, "Divert $FILE; keys into standalone files")
	f.Bool("file-clean", true, "Remove diverted $FILE; rows from the standard output")
}

// optionsFromFlags returns Options holding only the flags the user set.
func optionsFromFlags(cmd *cobra.Command) (config.Options, error) {
	var opts config.Options
	f := cmd.Flags()

	if f.Changed("include") {
		values, _ := f.GetStringArray("include")
		p, err := config.ParsePatterns(values)
		if err != nil {
			return opts, fmt.Errorf("--include: %w", err)
		}
		opts.Include = &p
	}
	if f.Changed("exclude") {
		values, _ := f.GetStringArray("exclude")
		p, err := config.ParsePatterns(values)
		if err != nil {
			return opts, fmt.Errorf("--exclude: %w", err)
		}
		opts.Exclude = &p
	}
	if f.Changed("out-dir") {
		v, _ := f.GetString("out-dir")
		opts.OutDir = &v
	}
	if f.Changed("key-style") {
		v, _ := f.GetString("key-style")
		ks, err := config.ParseKeyStyle(v)
		if err != nil {
			return opts, fmt.Errorf("--key-style: %w", err)
		}
		opts.KeyStyle = &ks
	}
	if f.Changed("xlsx") {
		v, _ := f.GetBool("xlsx")
		opts.XLSX = &v
	}
	if f.Changed("key-column") {
		v, _ := f.GetString("key-column")
		opts.KeyColumn = &v
	}
	if f.Changed("value-column") {
		v, _ := f.GetString("value-column")
		opts.ValueColumn = &v
	}
	if f.Changed("locales-matcher") {
		v, _ := f.GetString("locales-matcher")
		re, err := config.ParseMatcher(v)
		if err != nil {
			return opts, fmt.Errorf("--locales-matcher: %w", err)
		}
		opts.LocalesMatcher = re
	}
	if f.Changed("delimiter") {
		v, _ := f.GetString("delimiter")
		opts.Delimiter = &v
	}
	if f.Changed("comments") {
		v, _ := f.GetStringArray("comments")
		opts.Comments = &config.Comments{Markers: v}
	}
	if f.Changed("merge-output") {
		v, _ := f.GetBool("merge-output")
		opts.MergeOutput = &v
	}
	if f.Changed("preserve-structure") {
		v, _ := f.GetString("preserve-structure")
		s, err := config.ParseStructure(v)
		if err != nil {
			return opts, fmt.Errorf("--preserve-structure: %w", err)
		}
		opts.PreserveStructure = &s
	}
	if f.Changed("replace-punctuation-space") {
		v, _ := f.GetBool("replace-punctuation-space")
		opts.ReplacePunctuationSpace = &v
	}

	opts.JII = processorFromFlags(cmd, "jii", "jii-clean")
	opts.File = processorFromFlags(cmd, "file", "file-clean")

	return opts, nil
}

func processorFromFlags(cmd *cobra.Command, enabled, clean string) *config.Processor {
	f := cmd.Flags()
	if !f.Changed(enabled) && !f.Changed(clean) {
		return nil
	}

	p := &config.Processor{}
	if f.Changed(enabled) {
		v, _ := f.GetBool(enabled)
		p.Enabled = &v
	}
	if f.Changed(clean) {
		v, _ := f.GetBool(clean)
		p.Clean = &v
	}
	return p
}
