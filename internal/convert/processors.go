package convert

import (
	"strings"

	"sheet-i18n/internal/command"
	"sheet-i18n/internal/config"
	"sheet-i18n/internal/output"
	"sheet-i18n/internal/parser"
	"sheet-i18n/internal/textutil"

	"github.com/rs/zerolog/log"
)

// jiiGroup accumulates the items of one <id>.json collection.
type jiiGroup struct {
	id    string
	order []string                  // raw primaries, first seen first
	items map[string]map[string]any // raw primaries → item
}

// ProcessJIIKeys diverts $JII; rows into <id>.json collections. Rows sharing
// an id and raw primaries string build one item; distinct primaries under
// the same id become sibling items. It returns the rows that do not carry
// the prefix together with the generated outputs.
func ProcessJIIKeys(rows []parser.Row, filePath string, opts config.Resolved, locales []string, cwd string) ([]parser.Row, []SpecialOutput) {
	var (
		remaining = make([]parser.Row, 0, len(rows))
		groups    []*jiiGroup
		byID      = make(map[string]*jiiGroup)
	)

	for _, row := range rows {
		key := row.Get(opts.KeyColumn)
		cmd, err := command.ParseJII(key)
		if err != nil {
			log.Error().Err(err).Str("file", filePath).Msg("Invalid command, row dropped")
			continue
		}
		if cmd == nil {
			remaining = append(remaining, row)
			continue
		}
		if len(locales) == 0 {
			log.Warn().Str("file", filePath).Str("key", textutil.Truncate(key, 60)).Msg("Command found but no locales detected, row dropped")
			continue
		}

		group, ok := byID[cmd.ID]
		if !ok {
			group = &jiiGroup{id: cmd.ID, items: make(map[string]map[string]any)}
			byID[cmd.ID] = group
			groups = append(groups, group)
		}
		item, ok := group.items[cmd.RawPrimaries]
		if !ok {
			item = make(map[string]any)
			group.items[cmd.RawPrimaries] = item
			group.order = append(group.order, cmd.RawPrimaries)
		}

		for _, pair := range cmd.Primaries {
			if pair[0] == "" {
				continue
			}
			setLogged(item, strings.Split(pair[0], "."), pair[1], filePath, key)
		}

		for _, locale := range locales {
			value := row.Get(locale)
			if parser.IsEmptyCell(value) {
				continue
			}
			if opts.ReplacePunctuationSpace {
				value = textutil.ReplacePunctuationSpace(value)
			}
			setLogged(item, cmd.Path(locale), value, filePath, key)
		}
	}

	outputs := make([]SpecialOutput, 0, len(groups))
	for _, g := range groups {
		content := make([]map[string]any, 0, len(g.order))
		for _, raw := range g.order {
			content = append(content, g.items[raw])
		}
		outputs = append(outputs, SpecialOutput{
			OutputPath: output.ResolvePath(opts.OutDir, opts.PreserveStructure, filePath, g.id+".json", cwd),
			Content:    content,
			Type:       OutputJSON,
		})
	}

	if len(outputs) > 0 {
		log.Info().Str("file", filePath).Int("outputs", len(outputs)).Msg("Processed $JII; keys")
	}
	return remaining, outputs
}

func setLogged(obj map[string]any, path []string, value any, filePath, key string) {
	if err := deepSet(obj, path, value); err != nil {
		log.Error().Err(err).Str("file", filePath).Str("key", textutil.Truncate(key, 60)).Msg("Cannot assign command value")
	}
}

// ProcessFileKeys diverts $FILE; rows into one standalone file per locale
// named <fileName>_<locale>[.<extension>]. Later rows targeting the same
// file replace earlier ones.
func ProcessFileKeys(rows []parser.Row, filePath string, opts config.Resolved, locales []string, cwd string) ([]parser.Row, []SpecialOutput) {
	var (
		remaining = make([]parser.Row, 0, len(rows))
		names     []string
		contents  = make(map[string]string)
	)

	for _, row := range rows {
		key := row.Get(opts.KeyColumn)
		cmd, err := command.ParseFile(key)
		if err != nil {
			log.Error().Err(err).Str("file", filePath).Msg("Invalid command, row dropped")
			continue
		}
		if cmd == nil {
			remaining = append(remaining, row)
			continue
		}
		if len(locales) == 0 {
			log.Warn().Str("file", filePath).Str("key", textutil.Truncate(key, 60)).Msg("Command found but no locales detected, row dropped")
			continue
		}

		for _, locale := range locales {
			value := row.Get(locale)
			if parser.IsEmptyCell(value) {
				continue
			}
			if opts.ReplacePunctuationSpace {
				value = textutil.ReplacePunctuationSpace(value)
			}
			name := cmd.OutputName(locale)
			if _, ok := contents[name]; !ok {
				names = append(names, name)
			}
			contents[name] = value
		}
	}

	outputs := make([]SpecialOutput, 0, len(names))
	for _, name := range names {
		outputs = append(outputs, SpecialOutput{
			OutputPath: output.ResolvePath(opts.OutDir, opts.PreserveStructure, filePath, name, cwd),
			Content:    contents[name],
			Type:       OutputFile,
		})
	}

	if len(outputs) > 0 {
		log.Info().Str("file", filePath).Int("outputs", len(outputs)).Msg("Processed $FILE; keys")
	}
	return remaining, outputs
}
