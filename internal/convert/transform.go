package convert

import (
	"errors"
	"fmt"
	"strings"

	"sheet-i18n/internal/config"
	"sheet-i18n/internal/parser"
	"sheet-i18n/internal/textutil"

	"github.com/rs/zerolog/log"
)

// ErrNestedConflict is returned when a nested key runs through a string value.
var ErrNestedConflict = errors.New("nested key conflict")

// TransformToI18n builds a dictionary from rows, reading keys from keyCol and
// values from valCol. Rows with an empty key or value are skipped. Flat keys
// are used verbatim; nested keys are split on dots.
func TransformToI18n(rows []parser.Row, keyCol, valCol string, style config.KeyStyle, replacePunctuation bool) map[string]any {
	dict := make(map[string]any)

	for _, row := range rows {
		key, value := row.Get(keyCol), row.Get(valCol)
		if parser.IsEmptyCell(key) || parser.IsEmptyCell(value) {
			continue
		}
		if replacePunctuation {
			value = textutil.ReplacePunctuationSpace(value)
		}

		if style != config.KeyStyleNested {
			dict[key] = value
			continue
		}

		if err := deepSet(dict, strings.Split(key, "."), value); err != nil {
			log.Error().Err(err).Str("key", key).
				Msg("Conflict with nested key, a parent key might be a string. Consider using flat keyStyle or revising keys")
		}
	}

	return dict
}

// deepSet assigns value at path inside obj, creating intermediate maps.
// The final segment is overwritten whatever it held.
func deepSet(obj map[string]any, path []string, value any) error {
	node := obj
	for i, segment := range path[:len(path)-1] {
		switch next := node[segment].(type) {
		case map[string]any:
			node = next
		case nil:
			child := make(map[string]any)
			node[segment] = child
			node = child
		default:
			return fmt.Errorf("%w: %q is not an object", ErrNestedConflict, strings.Join(path[:i+1], "."))
		}
	}
	node[path[len(path)-1]] = value
	return nil
}
