package concat

import (
	"os"
	"path/filepath"
	"strings"

	"treecat/pkg/ignore"

	"go.uber.org/zap"
)

// runner carries the state of one concatenation pass.
type runner struct {
	cfg          Config
	excludedDirs map[string]struct{}
	matcher      *ignore.Matcher
	writer       *blockWriter
	logger       *zap.Logger
	stats        Stats
}

// walkDirectory visits one directory: it processes the directory's own
// files (if the directory passes the inclusion gate) and then descends
// into its non-pruned subdirectories, depth first. A directory that
// fails the inclusion gate is still descended into, since a deeper
// directory may match on its own name.
//
// Directory read errors are logged and the directory skipped; the only
// error returned is a write failure on the output sink.
func (r *runner) walkDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		r.logger.Warn("Failed to read directory", zap.String("directory", dir), zap.Error(err))
		return nil
	}

	var subdirs, files []string
	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, entry.Name())
		} else {
			files = append(files, entry.Name())
		}
	}

	// Prune before descending: excluded and ignored directories drop out
	// of the walk entirely, subtree included.
	var keptDirs []string
	for _, name := range subdirs {
		if _, excluded := r.excludedDirs[name]; excluded {
			r.logger.Debug("Pruning excluded directory", zap.String("directory", filepath.Join(dir, name)))
			continue
		}
		if r.matcher.Match(r.relative(filepath.Join(dir, name)), true) {
			r.logger.Debug("Pruning ignored directory", zap.String("directory", filepath.Join(dir, name)))
			continue
		}
		keptDirs = append(keptDirs, name)
	}

	if r.directoryIncluded(dir) {
		for _, name := range files {
			if err := r.processFile(dir, name); err != nil {
				return err
			}
		}
	} else {
		r.logger.Debug("Directory failed inclusion gate; descending without processing its files",
			zap.String("directory", dir))
	}

	for _, name := range keptDirs {
		if err := r.walkDirectory(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// directoryIncluded applies the per-directory inclusion gate: with no
// configured substrings every directory passes; otherwise at least one
// substring must occur in the directory's base name. The gate is
// evaluated independently per directory, never inherited.
func (r *runner) directoryIncluded(dir string) bool {
	if len(r.cfg.IncludedDirs) == 0 {
		return true
	}
	base := filepath.Base(dir)
	for _, sub := range r.cfg.IncludedDirs {
		if strings.Contains(base, sub) {
			return true
		}
	}
	return false
}

// relative expresses path relative to the configured root; the relative
// path labels the file's block in the output.
func (r *runner) relative(path string) string {
	rel, err := filepath.Rel(r.cfg.RootDir, path)
	if err != nil {
		return path
	}
	return rel
}
