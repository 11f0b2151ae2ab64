// Package watch re-converts sheet files as they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"sheet-i18n/internal/convert"
	"sheet-i18n/internal/textutil"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// skipDirs are never watched.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// Converter is the part of convert.Converter the watcher drives.
type Converter interface {
	Cwd() string
	ScanConvert() (convert.Report, error)
	ProcessSheetFile(path string) convert.Report
}

// Watcher runs a full scan, then converts each created or modified file.
type Watcher struct {
	conv   Converter
	hashes map[string]string // path → content hash of the last processed version

	// OnProcessed, when set, is called after every changed file.
	OnProcessed func(path string, report convert.Report)
}

// New creates a Watcher for conv.
func New(conv Converter) *Watcher {
	return &Watcher{
		conv:   conv,
		hashes: make(map[string]string),
	}
}

// Run blocks until ctx is cancelled or the file watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	root := w.conv.Cwd()
	if err := addTree(fw, root); err != nil {
		return err
	}

	if _, err := w.conv.ScanConvert(); err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}
	log.Info().Str("cwd", root).Msg("Watching for changes")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := addTree(fw, event.Name); err != nil {
				log.Warn().Err(err).Str("path", event.Name).Msg("Failed to watch new directory")
			}
		}
		return
	}

	data, err := os.ReadFile(event.Name)
	if err != nil {
		log.Debug().Err(err).Str("path", event.Name).Msg("Changed file not readable")
		return
	}
	hash := textutil.Hash(data)
	if w.hashes[event.Name] == hash {
		return
	}
	w.hashes[event.Name] = hash

	report := w.conv.ProcessSheetFile(event.Name)
	if w.OnProcessed != nil {
		w.OnProcessed(event.Name, report)
	}
}

// addTree watches root and every directory below it.
func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
