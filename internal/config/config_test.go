package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	r := Resolve(Options{})

	require.Len(t, r.Include, 1)
	assert.Equal(t, DefaultInclude, r.Include[0].Regexp)
	assert.Empty(t, r.Exclude)
	assert.Equal(t, KeyStyleFlat, r.KeyStyle)
	assert.Equal(t, "KEY", r.KeyColumn)
	assert.Empty(t, r.ValueColumn)
	assert.Equal(t, []string{"//"}, r.Comments.Markers)
	assert.True(t, r.MergeOutput)
	assert.True(t, r.ReplacePunctuationSpace)
	assert.False(t, r.XLSX)
	assert.Equal(t, StructureNone, r.PreserveStructure)
	assert.Equal(t, ProcessorSettings{Enabled: false, Clean: true}, r.JII)
	assert.Equal(t, ProcessorSettings{Enabled: false, Clean: true}, r.File)
}

func TestMergeExplicitFalseWins(t *testing.T) {
	r := Resolve(Options{
		MergeOutput:             Bool(false),
		ReplacePunctuationSpace: Bool(false),
		Comments:                &Comments{},
		Include:                 &[]Pattern{},
	})

	assert.False(t, r.MergeOutput)
	assert.False(t, r.ReplacePunctuationSpace)
	assert.False(t, r.Comments.Enabled())
	assert.Empty(t, r.Include)
}

func TestMergeProcessorsFieldByField(t *testing.T) {
	base := Options{JII: &Processor{Enabled: Bool(true)}}
	override := Options{JII: &Processor{Clean: Bool(false)}, File: &Processor{Enabled: Bool(true)}}

	r := Resolve(Merge(base, override))

	assert.Equal(t, ProcessorSettings{Enabled: true, Clean: false}, r.JII)
	assert.Equal(t, ProcessorSettings{Enabled: true, Clean: true}, r.File)
}

func TestMergeDoesNotMutateBase(t *testing.T) {
	base := Defaults()
	_ = Merge(base, Options{JII: &Processor{Enabled: Bool(true)}})
	assert.False(t, *base.JII.Enabled)
}

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("**/*.csv")
	require.NoError(t, err)
	assert.Equal(t, "**/*.csv", p.Glob)
	assert.Nil(t, p.Regexp)

	p, err = ParsePattern(`/locales\/.+\.CSV$/i`)
	require.NoError(t, err)
	require.NotNil(t, p.Regexp)
	assert.True(t, p.Regexp.MatchString("src/locales/app.csv"))

	p, err = ParsePattern(`/i18n\.csv$/g`)
	require.NoError(t, err)
	assert.True(t, p.Regexp.MatchString("i18n.csv"))

	_, err = ParsePattern(`/(/`)
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestParseStructure(t *testing.T) {
	tests := map[string]Structure{
		"":         StructureNone,
		"false":    StructureNone,
		"true":     StructureParent,
		"parent":   StructureParent,
		"nested":   StructureNested,
		"prefixed": StructurePrefixed,
	}
	for in, want := range tests {
		got, err := ParseStructure(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStructure("sideways")
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestParseYAML(t *testing.T) {
	opts, err := ParseYAML([]byte(`
include:
  - "**/*.csv"
  - "/translations\\.tsv$/"
outDir: dist/locales
keyStyle: nested
localesMatcher: "^[a-z]{2}$"
comments: ["//", "#"]
preserveStructure: true
mergeOutput: false
jiiProcessor:
  enabled: true
fileProcessor:
  enabled: true
  clean: false
`))
	require.NoError(t, err)

	r := Resolve(opts)
	require.Len(t, r.Include, 2)
	assert.Equal(t, "**/*.csv", r.Include[0].Glob)
	assert.True(t, r.Include[1].Regexp.MatchString("a/translations.tsv"))
	assert.Equal(t, "dist/locales", r.OutDir)
	assert.Equal(t, KeyStyleNested, r.KeyStyle)
	assert.True(t, r.LocalesMatcher.MatchString("fr"))
	assert.False(t, r.LocalesMatcher.MatchString("fr-CA"))
	assert.Equal(t, []string{"//", "#"}, r.Comments.Markers)
	assert.Equal(t, StructureParent, r.PreserveStructure)
	assert.False(t, r.MergeOutput)
	assert.Equal(t, ProcessorSettings{Enabled: true, Clean: true}, r.JII)
	assert.Equal(t, ProcessorSettings{Enabled: true, Clean: false}, r.File)
}

func TestParseYAMLScalarForms(t *testing.T) {
	opts, err := ParseYAML([]byte("include: \"*.csv\"\ncomments: false\npreserveStructure: prefixed\n"))
	require.NoError(t, err)

	r := Resolve(opts)
	require.Len(t, r.Include, 1)
	assert.Equal(t, "*.csv", r.Include[0].Glob)
	assert.False(t, r.Comments.Enabled())
	assert.Equal(t, StructurePrefixed, r.PreserveStructure)
}

func TestParseYAMLFlatProcessorKeys(t *testing.T) {
	opts, err := ParseYAML([]byte(`
jiiProcessor: true
jiiProcessorClean: false
fileProcessor: false
fileProcessorClean: true
`))
	require.NoError(t, err)

	r := Resolve(opts)
	assert.Equal(t, ProcessorSettings{Enabled: true, Clean: false}, r.JII)
	assert.Equal(t, ProcessorSettings{Enabled: false, Clean: true}, r.File)
}

func TestParseYAMLFlatCleanOverridesNested(t *testing.T) {
	opts, err := ParseYAML([]byte("jiiProcessor:\n  enabled: true\n  clean: true\njiiProcessorClean: false\n"))
	require.NoError(t, err)

	assert.Equal(t, ProcessorSettings{Enabled: true, Clean: false}, Resolve(opts).JII)
}

func TestParseYAMLRejectsBadKeyStyle(t *testing.T) {
	_, err := ParseYAML([]byte("keyStyle: deep\n"))
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestReadFileMissingIsEmpty(t *testing.T) {
	opts, err := ReadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Options{}, opts)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet-i18n.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keyColumn: ID\nxlsx: true\n"), 0o644))

	opts, err := ReadFile(path)
	require.NoError(t, err)

	r := Resolve(opts)
	assert.Equal(t, "ID", r.KeyColumn)
	assert.True(t, r.XLSX)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SHEETI18N_CONFIG", "custom.yaml")
	t.Setenv("SHEETI18N_LOG_LEVEL", "debug")

	s := Load()
	assert.Equal(t, "custom.yaml", s.ConfigPath)
	assert.Equal(t, "debug", s.LogLevel)
}
