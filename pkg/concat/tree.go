package concat

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"treecat/pkg/ignore"

	"go.uber.org/zap"
)

// writeTree renders the directory structure below the root and writes it
// to cfg.TreePath. The tree honors the same directory pruning as the
// concatenation pass (excluded and ignored directories disappear with
// their subtrees) but lists every file, since it documents the shape of
// the tree rather than the filter outcome.
func writeTree(cfg Config, excludedDirs map[string]struct{}, matcher *ignore.Matcher, logger *zap.Logger) error {
	var tree strings.Builder
	tree.WriteString(filepath.ToSlash(cfg.RootDir) + "/\n")

	subtree, err := renderTree(cfg.RootDir, cfg.RootDir, excludedDirs, matcher, "", logger)
	if err != nil {
		return err
	}
	if subtree != "" {
		tree.WriteString(subtree)
		tree.WriteString("\n")
	}

	if err := os.WriteFile(cfg.TreePath, []byte(tree.String()), 0o644); err != nil {
		logger.Error("Failed to write tree file", zap.String("file", cfg.TreePath), zap.Error(err))
		return err
	}
	logger.Debug("Wrote tree structure", zap.String("file", cfg.TreePath))
	return nil
}

// renderTree builds the connector-drawn listing for one directory level.
func renderTree(dir, root string, excludedDirs map[string]struct{}, matcher *ignore.Matcher, prefix string, logger *zap.Logger) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("Failed to read directory for tree structure", zap.String("directory", dir), zap.Error(err))
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var kept []os.DirEntry
	for _, entry := range entries {
		if entry.IsDir() {
			if _, excluded := excludedDirs[entry.Name()]; excluded {
				continue
			}
			rel, relErr := filepath.Rel(root, filepath.Join(dir, entry.Name()))
			if relErr == nil && matcher.Match(rel, true) {
				continue
			}
		}
		kept = append(kept, entry)
	}

	// Directories first, then files, alphabetically.
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].IsDir() != kept[j].IsDir() {
			return kept[i].IsDir()
		}
		return strings.ToLower(kept[i].Name()) < strings.ToLower(kept[j].Name())
	})

	var lines []string
	for i, entry := range kept {
		connector := "├── "
		extension := "│   "
		if i == len(kept)-1 {
			connector = "└── "
			extension = "    "
		}

		if entry.IsDir() {
			lines = append(lines, prefix+connector+entry.Name()+"/")
			subtree, err := renderTree(filepath.Join(dir, entry.Name()), root, excludedDirs, matcher, prefix+extension, logger)
			if err != nil {
				continue
			}
			if subtree != "" {
				lines = append(lines, subtree)
			}
		} else {
			lines = append(lines, prefix+connector+entry.Name())
		}
	}

	return strings.Join(lines, "\n"), nil
}
