package convert

import (
	"sheet-i18n/internal/config"
	"sheet-i18n/internal/output"
	"sheet-i18n/internal/parser"

	"github.com/rs/zerolog/log"
)

// GenerateStandardOutputs builds the dictionaries for rows that were not
// diverted. With a value column a single <base>.json is produced; otherwise
// one <locale>.json per detected locale. Dictionaries may be empty; the
// write stage skips those.
func GenerateStandardOutputs(rows []parser.Row, opts config.Resolved, locales []string, filePath, cwd string) []SheetData {
	if opts.ValueColumn != "" {
		base := output.BaseName(filePath)
		return []SheetData{{
			Locale:     base,
			Data:       TransformToI18n(rows, opts.KeyColumn, opts.ValueColumn, opts.KeyStyle, opts.ReplacePunctuationSpace),
			OutputPath: output.ResolvePath(opts.OutDir, opts.PreserveStructure, filePath, base+".json", cwd),
		}}
	}

	if len(locales) == 0 {
		log.Error().Str("file", filePath).Msg("No locales detected and no value column specified")
		return nil
	}

	outputs := make([]SheetData, 0, len(locales))
	for _, locale := range locales {
		outputs = append(outputs, SheetData{
			Locale:     locale,
			Data:       TransformToI18n(rows, opts.KeyColumn, locale, opts.KeyStyle, opts.ReplacePunctuationSpace),
			OutputPath: output.ResolvePath(opts.OutDir, opts.PreserveStructure, filePath, locale+".json", cwd),
		})
	}
	return outputs
}

// ProcessSheetContent runs the row pipeline over delimited text: comment
// stripping, parsing, locale detection, empty-key filtering, the enabled
// diversion processors ($JII; first, then $FILE;) and finally the standard
// dictionaries.
func ProcessSheetContent(content, filePath string, opts config.Resolved, cwd string) Result {
	text := parser.FilterCommentRows(content, opts.Comments.Markers)
	table := parser.Parse(text, opts.Delimiter, filePath)
	locales := parser.DetectLocales(table.Fields, opts.LocalesMatcher)

	rows, _ := parser.FilterRowsWithEmptyKeys(table.Rows, opts.KeyColumn, filePath)

	var special []SpecialOutput

	if opts.JII.Enabled {
		remaining, outputs := ProcessJIIKeys(rows, filePath, opts, locales, cwd)
		if opts.JII.Clean {
			rows = remaining
		}
		special = append(special, outputs...)
	}

	if opts.File.Enabled {
		remaining, outputs := ProcessFileKeys(rows, filePath, opts, locales, cwd)
		if opts.File.Clean {
			rows = remaining
		}
		special = append(special, outputs...)
	}

	return Result{
		I18n:    GenerateStandardOutputs(rows, opts, locales, filePath, cwd),
		Special: special,
		Locales: locales,
	}
}
