package filewalker

import (
	"path/filepath"

	"sheet-i18n/internal/config"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
)

// Filter decides whether a single file is in scope. Exclude patterns are
// checked first; with no include pattern every remaining file is accepted.
type Filter struct {
	cwd     string
	include []config.Pattern
	exclude []config.Pattern
}

// NewFilter creates a Filter matching paths relative to cwd.
func NewFilter(include, exclude []config.Pattern, cwd string) *Filter {
	return &Filter{cwd: cwd, include: include, exclude: exclude}
}

// Match reports whether path passes the filter. Regular expressions see
// the cwd-relative slash path; globs are anchored at cwd like Walker.Glob
// and see the absolute path.
func (f *Filter) Match(file string) bool {
	if !filepath.IsAbs(file) {
		file = filepath.Join(f.cwd, file)
	}
	abs := filepath.ToSlash(filepath.Clean(file))
	rel := Relative(f.cwd, file)

	for _, p := range f.exclude {
		if f.matchPattern(p, abs, rel) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, p := range f.include {
		if f.matchPattern(p, abs, rel) {
			return true
		}
	}
	return false
}

func (f *Filter) matchPattern(p config.Pattern, abs, rel string) bool {
	if p.Regexp != nil {
		return p.Regexp.MatchString(rel)
	}
	if p.Glob == "" {
		return false
	}
	ok, err := doublestar.Match(absPattern(f.cwd, p.Glob), abs)
	if err != nil {
		log.Error().Err(err).Str("pattern", p.Glob).Msg("Invalid glob")
		return false
	}
	return ok
}
