package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidOption is returned when a configuration value cannot be understood.
var ErrInvalidOption = errors.New("invalid option")

// KeyStyle controls whether dotted keys become a nested tree.
type KeyStyle string

const (
	KeyStyleFlat   KeyStyle = "flat"
	KeyStyleNested KeyStyle = "nested"
)

// Structure controls how the source directory layout is mirrored under OutDir.
type Structure string

const (
	// StructureNone writes every output directly into OutDir.
	StructureNone Structure = ""
	// StructureParent mirrors the source's directory relative to the working directory.
	StructureParent Structure = "parent"
	// StructureNested additionally adds the source base name as a subdirectory.
	StructureNested Structure = "nested"
	// StructurePrefixed prefixes output names with the source base name.
	StructurePrefixed Structure = "prefixed"
)

// ParseStructure accepts "false", "true", "parent", "nested" or "prefixed".
func ParseStructure(s string) (Structure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false":
		return StructureNone, nil
	case "true", "parent":
		return StructureParent, nil
	case "nested":
		return StructureNested, nil
	case "prefixed":
		return StructurePrefixed, nil
	}
	return StructureNone, fmt.Errorf("%w: preserve structure %q", ErrInvalidOption, s)
}

// Pattern is either a glob or a regular expression used to select files.
type Pattern struct {
	Glob   string
	Regexp *regexp.Regexp
}

func (p Pattern) String() string {
	if p.Regexp != nil {
		return "/" + p.Regexp.String() + "/"
	}
	return p.Glob
}

// jsRegexp matches the `/pattern/flags` form.
var jsRegexp = regexp.MustCompile(`(?i)^/(.+)/([a-z]*)$`)

// ParsePattern interprets `/pattern/flags` as a regular expression and
// anything else as a glob. Flags i, m and s are honoured; g, u and y are ignored.
func ParsePattern(s string) (Pattern, error) {
	m := jsRegexp.FindStringSubmatch(s)
	if m == nil {
		return Pattern{Glob: s}, nil
	}
	re, err := CompileRegexp(m[1], m[2])
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Regexp: re}, nil
}

// CompileRegexp compiles a pattern with JavaScript-style flags.
func CompileRegexp(expr, flags string) (*regexp.Regexp, error) {
	var inline string
	for _, f := range strings.ToLower(flags) {
		switch f {
		case 'i', 'm', 's':
			if !strings.ContainsRune(inline, f) {
				inline += string(f)
			}
		case 'g', 'u', 'y':
		default:
			return nil, fmt.Errorf("%w: regexp flag %q", ErrInvalidOption, f)
		}
	}
	if inline != "" {
		expr = "(?" + inline + ")" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	return re, nil
}

// ParsePatterns parses every entry with ParsePattern.
func ParsePatterns(values []string) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(values))
	for _, v := range values {
		p, err := ParsePattern(v)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// Comments configures comment-line stripping. A zero value disables it.
type Comments struct {
	Markers []string
}

// Enabled reports whether at least one marker is configured.
func (c Comments) Enabled() bool {
	for _, m := range c.Markers {
		if m != "" {
			return true
		}
	}
	return false
}

// Processor toggles one special-key processor.
type Processor struct {
	Enabled *bool `yaml:"enabled"`
	// Clean removes diverted rows from standard processing.
	Clean *bool `yaml:"clean"`
}

// Options is a partially specified configuration. Nil fields fall back to
// the layer below when merged.
type Options struct {
	Include                 *[]Pattern
	Exclude                 *[]Pattern
	OutDir                  *string
	KeyStyle                *KeyStyle
	XLSX                    *bool
	KeyColumn               *string
	ValueColumn             *string
	LocalesMatcher          *regexp.Regexp
	Delimiter               *string
	Comments                *Comments
	MergeOutput             *bool
	PreserveStructure       *Structure
	ReplacePunctuationSpace *bool
	JII                     *Processor
	File                    *Processor
}

// ProcessorSettings is a resolved Processor.
type ProcessorSettings struct {
	Enabled bool
	Clean   bool
}

// Resolved is the configuration after defaults have been applied. It is
// never mutated once built.
type Resolved struct {
	Include                 []Pattern
	Exclude                 []Pattern
	OutDir                  string
	KeyStyle                KeyStyle
	XLSX                    bool
	KeyColumn               string
	ValueColumn             string
	LocalesMatcher          *regexp.Regexp
	Delimiter               string
	Comments                Comments
	MergeOutput             bool
	PreserveStructure       Structure
	ReplacePunctuationSpace bool
	JII                     ProcessorSettings
	File                    ProcessorSettings
}

// DefaultInclude matches i18n.csv, i18n.dsv and i18n.tsv anywhere in the tree.
var DefaultInclude = regexp.MustCompile(`(?:[/\\]|^)i18n\.[cdt]sv$`)

// DefaultLocalesMatcher matches two-letter locale codes with an optional region.
var DefaultLocalesMatcher = regexp.MustCompile(`^\w{2}(?:-\w{2,4})?$`)

// Defaults returns the built-in configuration layer.
func Defaults() Options {
	return Options{
		Include:                 &[]Pattern{{Regexp: DefaultInclude}},
		Exclude:                 &[]Pattern{},
		OutDir:                  ptr(""),
		KeyStyle:                ptr(KeyStyleFlat),
		XLSX:                    ptr(false),
		KeyColumn:               ptr("KEY"),
		ValueColumn:             ptr(""),
		LocalesMatcher:          DefaultLocalesMatcher,
		Delimiter:               ptr(""),
		Comments:                &Comments{Markers: []string{"//"}},
		MergeOutput:             ptr(true),
		PreserveStructure:       ptr(StructureNone),
		ReplacePunctuationSpace: ptr(true),
		JII:                     &Processor{Enabled: ptr(false), Clean: ptr(true)},
		File:                    &Processor{Enabled: ptr(false), Clean: ptr(true)},
	}
}

// Merge overlays override onto base. Any non-nil field of override wins,
// including explicit false and empty values; nested processor options are
// merged field by field.
func Merge(base, override Options) Options {
	out := base
	pick(&out.Include, override.Include)
	pick(&out.Exclude, override.Exclude)
	pick(&out.OutDir, override.OutDir)
	pick(&out.KeyStyle, override.KeyStyle)
	pick(&out.XLSX, override.XLSX)
	pick(&out.KeyColumn, override.KeyColumn)
	pick(&out.ValueColumn, override.ValueColumn)
	pick(&out.LocalesMatcher, override.LocalesMatcher)
	pick(&out.Delimiter, override.Delimiter)
	pick(&out.Comments, override.Comments)
	pick(&out.MergeOutput, override.MergeOutput)
	pick(&out.PreserveStructure, override.PreserveStructure)
	pick(&out.ReplacePunctuationSpace, override.ReplacePunctuationSpace)
	out.JII = mergeProcessor(base.JII, override.JII)
	out.File = mergeProcessor(base.File, override.File)
	return out
}

func mergeProcessor(base, override *Processor) *Processor {
	if override == nil {
		return base
	}
	if base == nil {
		p := *override
		return &p
	}
	p := *base
	pick(&p.Enabled, override.Enabled)
	pick(&p.Clean, override.Clean)
	return &p
}

func pick[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// Resolve merges opts onto Defaults and returns the fully populated result.
func Resolve(opts Options) Resolved {
	m := Merge(Defaults(), opts)
	return Resolved{
		Include:                 clonePatterns(*m.Include),
		Exclude:                 clonePatterns(*m.Exclude),
		OutDir:                  *m.OutDir,
		KeyStyle:                *m.KeyStyle,
		XLSX:                    *m.XLSX,
		KeyColumn:               *m.KeyColumn,
		ValueColumn:             *m.ValueColumn,
		LocalesMatcher:          m.LocalesMatcher,
		Delimiter:               *m.Delimiter,
		Comments:                Comments{Markers: append([]string(nil), m.Comments.Markers...)},
		MergeOutput:             *m.MergeOutput,
		PreserveStructure:       *m.PreserveStructure,
		ReplacePunctuationSpace: *m.ReplacePunctuationSpace,
		JII:                     resolveProcessor(m.JII),
		File:                    resolveProcessor(m.File),
	}
}

func resolveProcessor(p *Processor) ProcessorSettings {
	d := ProcessorSettings{Clean: true}
	if p == nil {
		return d
	}
	if p.Enabled != nil {
		d.Enabled = *p.Enabled
	}
	if p.Clean != nil {
		d.Clean = *p.Clean
	}
	return d
}

func clonePatterns(p []Pattern) []Pattern {
	return append([]Pattern(nil), p...)
}

func ptr[T any](v T) *T { return &v }

// Bool returns a pointer to v, for building Options literals.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v, for building Options literals.
func String(v string) *string { return &v }
