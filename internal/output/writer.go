// Package output resolves where generated artifacts go and writes them,
// merging JSON dictionaries that were already produced in the same batch.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// ErrInvalidExistingJSON is returned when a merge target holds malformed JSON.
var ErrInvalidExistingJSON = errors.New("existing file is not valid JSON")

// Writer writes artifacts to disk. JSON merge-writes consult State to tell
// the first write of a path from later ones.
type Writer struct {
	state *State
}

// NewWriter creates a Writer bound to a batch state. A nil state starts a
// fresh one.
func NewWriter(state *State) *Writer {
	if state == nil {
		state = NewState()
	}
	return &Writer{state: state}
}

// State returns the batch state used by the writer.
func (w *Writer) State() *State {
	return w.state
}

// WriteJSON encodes data and overwrites path.
func (w *Writer) WriteJSON(path string, data any) error {
	encoded, err := encodeJSON(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, encoded)
}

// WriteMergeJSON overwrites path on its first write in the batch. Later
// writes deep-merge data over the file's current content, data winning.
func (w *Writer) WriteMergeJSON(path string, data map[string]any) error {
	if !w.state.MarkWritten(path) || !strings.HasSuffix(path, ".json") {
		return w.WriteJSON(path, data)
	}

	existing, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return w.WriteJSON(path, data)
	}
	if err != nil {
		return fmt.Errorf("read merge target: %w", err)
	}

	if !gjson.ValidBytes(existing) {
		return fmt.Errorf("%w: %s", ErrInvalidExistingJSON, path)
	}

	previous, ok := gjson.ParseBytes(existing).Value().(map[string]any)
	if !ok {
		log.Warn().Str("path", path).Msg("Existing content is not an object, overwriting")
		return w.WriteJSON(path, data)
	}

	log.Debug().Str("path", path).Msg("Merging with existing output")
	return w.WriteJSON(path, DeepMerge(data, previous))
}

// WriteFile overwrites path with content.
func (w *Writer) WriteFile(path, content string) error {
	return writeFile(path, []byte(content))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}

func encodeJSON(data any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(data); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
