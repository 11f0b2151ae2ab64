package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Settings holds process-level settings read from the environment.
type Settings struct {
	ConfigPath string
	LogLevel   string
	WorkDir    string
}

// Load reads .env (if present) and the SHEETI18N_* environment variables.
func Load() *Settings {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Settings{
		ConfigPath: getEnv("SHEETI18N_CONFIG", "sheet-i18n.yaml"),
		LogLevel:   getEnv("SHEETI18N_LOG_LEVEL", "info"),
		WorkDir:    getEnv("SHEETI18N_CWD", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ReadFile loads Options from a YAML file. A missing file yields empty
// Options so that defaults apply.
func ReadFile(path string) (Options, error) {
	if path == "" {
		return Options{}, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- Only loading a config file
	if os.IsNotExist(err) {
		log.Debug().Str("path", path).Msg("No YAML configuration file found, skipping")
		return Options{}, nil
	}
	if err != nil {
		return Options{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	opts, err := ParseYAML(data)
	if err != nil {
		return Options{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("Loaded configuration file")
	return opts, nil
}

// ParseYAML decodes a YAML document into Options.
func ParseYAML(data []byte) (Options, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Options{}, err
	}
	return fc.options()
}

type fileConfig struct {
	Include                 *stringList     `yaml:"include"`
	Exclude                 *stringList     `yaml:"exclude"`
	OutDir                  *string         `yaml:"outDir"`
	KeyStyle                *string         `yaml:"keyStyle"`
	XLSX                    *bool           `yaml:"xlsx"`
	KeyColumn               *string         `yaml:"keyColumn"`
	ValueColumn             *string         `yaml:"valueColumn"`
	LocalesMatcher          *string         `yaml:"localesMatcher"`
	Delimiter               *string         `yaml:"delimiter"`
	Comments                *commentsValue  `yaml:"comments"`
	MergeOutput             *bool           `yaml:"mergeOutput"`
	PreserveStructure       *structureValue `yaml:"preserveStructure"`
	ReplacePunctuationSpace *bool           `yaml:"replacePunctuationSpace"`
	JIIProcessor            *processorValue `yaml:"jiiProcessor"`
	JIIProcessorClean       *bool           `yaml:"jiiProcessorClean"`
	FileProcessor           *processorValue `yaml:"fileProcessor"`
	FileProcessorClean      *bool           `yaml:"fileProcessorClean"`
}

func (fc fileConfig) options() (Options, error) {
	opts := Options{
		OutDir:                  fc.OutDir,
		XLSX:                    fc.XLSX,
		KeyColumn:               fc.KeyColumn,
		ValueColumn:             fc.ValueColumn,
		Delimiter:               fc.Delimiter,
		MergeOutput:             fc.MergeOutput,
		ReplacePunctuationSpace: fc.ReplacePunctuationSpace,
		JII:                     processor(fc.JIIProcessor, fc.JIIProcessorClean),
		File:                    processor(fc.FileProcessor, fc.FileProcessorClean),
	}

	if fc.Include != nil {
		p, err := ParsePatterns(*fc.Include)
		if err != nil {
			return Options{}, fmt.Errorf("include: %w", err)
		}
		opts.Include = &p
	}
	if fc.Exclude != nil {
		p, err := ParsePatterns(*fc.Exclude)
		if err != nil {
			return Options{}, fmt.Errorf("exclude: %w", err)
		}
		opts.Exclude = &p
	}
	if fc.KeyStyle != nil {
		ks, err := ParseKeyStyle(*fc.KeyStyle)
		if err != nil {
			return Options{}, err
		}
		opts.KeyStyle = &ks
	}
	if fc.LocalesMatcher != nil {
		re, err := ParseMatcher(*fc.LocalesMatcher)
		if err != nil {
			return Options{}, fmt.Errorf("localesMatcher: %w", err)
		}
		opts.LocalesMatcher = re
	}
	if fc.Comments != nil {
		c := Comments(*fc.Comments)
		opts.Comments = &c
	}
	if fc.PreserveStructure != nil {
		s := Structure(*fc.PreserveStructure)
		opts.PreserveStructure = &s
	}
	return opts, nil
}

// ParseKeyStyle accepts "flat" or "nested".
func ParseKeyStyle(s string) (KeyStyle, error) {
	switch KeyStyle(s) {
	case KeyStyleFlat, KeyStyleNested:
		return KeyStyle(s), nil
	}
	return "", fmt.Errorf("%w: key style %q", ErrInvalidOption, s)
}

// ParseMatcher compiles a locale matcher given either as `/pattern/flags`
// or as a bare regular expression.
func ParseMatcher(s string) (*regexp.Regexp, error) {
	if m := jsRegexp.FindStringSubmatch(s); m != nil {
		return CompileRegexp(m[1], m[2])
	}
	return CompileRegexp(s, "")
}

// stringList accepts a single string or a list of strings.
type stringList []string

func (l *stringList) UnmarshalYAML(unmarshal func(any) error) error {
	var many []string
	if err := unmarshal(&many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := unmarshal(&one); err != nil {
		return err
	}
	*l = stringList{one}
	return nil
}

// commentsValue accepts false, a marker or a list of markers.
type commentsValue Comments

func (c *commentsValue) UnmarshalYAML(unmarshal func(any) error) error {
	var b bool
	if err := unmarshal(&b); err == nil {
		if b {
			return fmt.Errorf("%w: comments must be false, a string or a list", ErrInvalidOption)
		}
		*c = commentsValue{}
		return nil
	}
	var markers stringList
	if err := unmarshal(&markers); err != nil {
		return err
	}
	*c = commentsValue{Markers: markers}
	return nil
}

// structureValue accepts a boolean or one of parent, nested, prefixed.
type structureValue Structure

func (s *structureValue) UnmarshalYAML(unmarshal func(any) error) error {
	var b bool
	if err := unmarshal(&b); err == nil {
		if b {
			*s = structureValue(StructureParent)
		} else {
			*s = structureValue(StructureNone)
		}
		return nil
	}
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseStructure(raw)
	if err != nil {
		return err
	}
	*s = structureValue(parsed)
	return nil
}

// processorValue accepts a boolean toggle or a {enabled, clean} mapping.
type processorValue Processor

func (p *processorValue) UnmarshalYAML(unmarshal func(any) error) error {
	var b bool
	if err := unmarshal(&b); err == nil {
		*p = processorValue{Enabled: &b}
		return nil
	}
	var full Processor
	if err := unmarshal(&full); err != nil {
		return err
	}
	*p = processorValue(full)
	return nil
}

// processor combines a processor entry with its flat clean key, the flat
// key winning.
func processor(v *processorValue, clean *bool) *Processor {
	if v == nil && clean == nil {
		return nil
	}
	var out Processor
	if v != nil {
		out = Processor(*v)
	}
	if clean != nil {
		out.Clean = clean
	}
	return &out
}
