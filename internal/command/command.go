// Package command parses the special key-column commands that divert rows
// away from the standard per-locale dictionaries.
package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// JIIPrefix marks a structured-item command: $JII;<id>;<primaries>;<path>;<key>
	JIIPrefix = "$JII;"
	// FilePrefix marks a standalone-file command: $FILE;<fileName>[;<extension>]
	FilePrefix = "$FILE;"
)

// ErrInvalidFormat is returned when a prefixed key does not follow its grammar.
var ErrInvalidFormat = errors.New("invalid command format")

// JIICommand is a parsed structured-item command.
type JIICommand struct {
	// ID names the output collection, written to <ID>.json.
	ID string
	// RawPrimaries is the unparsed primaries segment, used for grouping.
	RawPrimaries string
	// PathStr is the dot-separated path under which translations are stored.
	PathStr string
	// Key is the leaf property holding the translated string.
	Key string
	// Primaries are the key:value discriminator pairs, in source order.
	Primaries [][2]string
}

// Path returns the full assignment path for a locale value:
// <PathStr...>.i18n.<locale>.<Key>.
func (c *JIICommand) Path(locale string) []string {
	segments := strings.Split(c.PathStr, ".")
	return append(segments, "i18n", locale, c.Key)
}

// FileCommand is a parsed standalone-file command.
type FileCommand struct {
	FileName string
	// Extension is empty when the command omits it.
	Extension string
}

// OutputName returns <FileName>_<locale>, with .<Extension> appended when set.
func (c *FileCommand) OutputName(locale string) string {
	name := c.FileName + "_" + locale
	if c.Extension != "" {
		name += "." + c.Extension
	}
	return name
}

// IsJII reports whether key carries the structured-item prefix.
func IsJII(key string) bool { return strings.HasPrefix(key, JIIPrefix) }

// IsFile reports whether key carries the standalone-file prefix.
func IsFile(key string) bool { return strings.HasPrefix(key, FilePrefix) }

// ParseJII parses a structured-item command. It returns nil, nil when key
// does not start with JIIPrefix.
func ParseJII(key string) (*JIICommand, error) {
	if !IsJII(key) {
		return nil, nil
	}

	parts := strings.Split(strings.TrimPrefix(key, JIIPrefix), ";")
	if len(parts) != 4 || slices.Contains(parts, "") {
		return nil, fmt.Errorf("%w: %s expects 4 non-empty segments: %q", ErrInvalidFormat, JIIPrefix, key)
	}

	cmd := &JIICommand{
		ID:           parts[0],
		RawPrimaries: parts[1],
		PathStr:      parts[2],
		Key:          parts[3],
	}
	for _, pair := range strings.Split(cmd.RawPrimaries, ",") {
		k, v, _ := strings.Cut(pair, ":")
		cmd.Primaries = append(cmd.Primaries, [2]string{k, v})
	}
	return cmd, nil
}

// ParseFile parses a standalone-file command. It returns nil, nil when key
// does not start with FilePrefix.
func ParseFile(key string) (*FileCommand, error) {
	if !IsFile(key) {
		return nil, nil
	}

	parts := strings.Split(strings.TrimPrefix(key, FilePrefix), ";")
	if len(parts) > 2 || slices.Contains(parts, "") {
		return nil, fmt.Errorf("%w: %s expects a file name and an optional extension: %q", ErrInvalidFormat, FilePrefix, key)
	}

	cmd := &FileCommand{FileName: parts[0]}
	if len(parts) == 2 {
		cmd.Extension = parts[1]
	}
	return cmd, nil
}
