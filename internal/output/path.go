package output

import (
	"path/filepath"
	"strings"

	"sheet-i18n/internal/config"
)

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ResolvePath computes the absolute path of an output artifact named
// outputName produced from source.
//
// Without outDir the artifact lands next to its source. With outDir the
// structure mode decides how much of the source's location, relative to
// cwd, is mirrored below it. A relative outDir or source is anchored at cwd.
func ResolvePath(outDir string, mode config.Structure, source, outputName, cwd string) string {
	source = absolute(source, cwd)

	if outDir == "" {
		return filepath.Join(filepath.Dir(source), outputName)
	}
	outDir = absolute(outDir, cwd)

	relDir := "."
	if rel, err := filepath.Rel(cwd, source); err == nil {
		relDir = filepath.Dir(rel)
	}

	switch mode {
	case config.StructureParent:
		return filepath.Join(outDir, relDir, outputName)
	case config.StructureNested:
		return filepath.Join(outDir, relDir, BaseName(source), outputName)
	case config.StructurePrefixed:
		return filepath.Join(outDir, relDir, BaseName(source)+"_"+outputName)
	default:
		return filepath.Join(outDir, outputName)
	}
}

func absolute(path, cwd string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(cwd, path)
}
