package filewalker

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"

	"sheet-i18n/internal/config"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
)

// MatchAll is searched when only regular expressions select files.
const MatchAll = "**/*"

// NormalizePatterns splits patterns into glob strings and regular expressions.
func NormalizePatterns(patterns []config.Pattern) (globs []string, regexps []*regexp.Regexp) {
	for _, p := range patterns {
		switch {
		case p.Regexp != nil:
			regexps = append(regexps, p.Regexp)
		case p.Glob != "":
			globs = append(globs, p.Glob)
		}
	}
	return globs, regexps
}

// Walker finds source files below a working directory.
type Walker struct {
	dirFS func(dir string) fs.FS
}

// NewWalker creates a Walker over the operating system's filesystem.
func NewWalker() *Walker {
	return &Walker{dirFS: os.DirFS}
}

// Glob returns the absolute paths of regular files matching any of globs
// and none of ignore, sorted and without duplicates. Relative patterns are
// slash-separated and anchored at cwd; they may climb out of it with "..".
// Absolute patterns are used as given. Dot files are included.
func (w *Walker) Glob(cwd string, globs, ignore []string) ([]string, error) {
	root, err := filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	skip := make([]string, 0, len(ignore))
	for _, pattern := range ignore {
		abs := absPattern(root, pattern)
		if !doublestar.ValidatePattern(abs) {
			log.Error().Str("pattern", pattern).Msg("Invalid ignore glob")
			return nil, fmt.Errorf("ignore glob %q: %w", pattern, doublestar.ErrBadPattern)
		}
		skip = append(skip, abs)
	}

	seen := make(map[string]bool)
	var files []string

	for _, pattern := range globs {
		abs := absPattern(root, pattern)
		if !doublestar.ValidatePattern(abs) {
			log.Error().Str("pattern", pattern).Msg("Invalid glob")
			return nil, fmt.Errorf("glob %q: %w", pattern, doublestar.ErrBadPattern)
		}

		base, rest := doublestar.SplitPattern(abs)
		matches, err := doublestar.Glob(w.dirFS(filepath.FromSlash(base)), rest, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}

		for _, rel := range matches {
			match := path.Join(base, rel)
			if seen[match] || ignored(match, skip) {
				continue
			}
			seen[match] = true
			files = append(files, filepath.FromSlash(match))
		}
	}

	slices.Sort(files)
	log.Debug().Int("count", len(files)).Str("root", root).Strs("globs", globs).Msg("Discovered files")
	return files, nil
}

// ignored matches an absolute slash path against absolute ignore globs.
func ignored(match string, ignore []string) bool {
	for _, pattern := range ignore {
		if ok, _ := doublestar.Match(pattern, match); ok {
			return true
		}
		// An ignored directory hides everything below it.
		if ok, _ := doublestar.Match(pattern+"/**", match); ok {
			return true
		}
	}
	return false
}

// absPattern anchors a user glob at root and returns it in clean,
// slash-separated form. Absolute globs are only cleaned.
func absPattern(root, pattern string) string {
	pattern = filepath.ToSlash(pattern)
	if path.IsAbs(pattern) || filepath.IsAbs(filepath.FromSlash(pattern)) {
		return path.Clean(pattern)
	}
	return path.Join(filepath.ToSlash(root), pattern)
}

// Relative returns path relative to cwd in slash form, or path itself when
// it cannot be made relative.
func Relative(cwd, file string) string {
	if !filepath.IsAbs(file) {
		return filepath.ToSlash(file)
	}
	rel, err := filepath.Rel(cwd, file)
	if err != nil {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}

// SelectRegexps keeps the paths whose cwd-relative form matches at least one
// include expression (when there are any) and no exclude expression.
func SelectRegexps(paths []string, cwd string, include, exclude []*regexp.Regexp) []string {
	selected := make([]string, 0, len(paths))
	for _, p := range paths {
		rel := Relative(cwd, p)
		if len(include) > 0 && !anyMatch(include, rel) {
			continue
		}
		if anyMatch(exclude, rel) {
			continue
		}
		selected = append(selected, p)
	}
	return selected
}

func anyMatch(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
