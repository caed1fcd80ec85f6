// Package concat walks a directory tree and concatenates the content of
// matching text files into a single output file, one header block per
// file, in visit order.
package concat

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"treecat/pkg/ignore"

	"go.uber.org/zap"
)

// Run performs one concatenation pass described by cfg and returns the
// per-file counters. The only fatal condition is failing to open the
// output sink (or a later write error on it); unreadable source files
// are recorded inline in the output and counted as skipped.
func Run(cfg Config, logger *zap.Logger) (Stats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RootDir == "" {
		cfg.RootDir = "."
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutputName
	}

	startTime := time.Now()
	logger.Info("Starting concatenation",
		zap.String("rootDir", cfg.RootDir),
		zap.String("output", cfg.Output))

	matcher := loadIgnorePatterns(cfg, logger)

	outFile, err := os.Create(cfg.Output)
	if err != nil {
		logger.Error("Failed to create output file", zap.String("file", cfg.Output), zap.Error(err))
		return Stats{}, fmt.Errorf("failed to create output file %s: %w", cfg.Output, err)
	}

	r := &runner{
		cfg:          cfg,
		excludedDirs: toNameSet(cfg.ExcludedDirs),
		matcher:      matcher,
		writer:       newBlockWriter(outFile, logger),
		logger:       logger,
	}

	walkErr := r.walkDirectory(cfg.RootDir)
	closeErr := r.writer.Close()
	if walkErr != nil {
		return r.stats, fmt.Errorf("failed to write output %s: %w", cfg.Output, walkErr)
	}
	if closeErr != nil {
		return r.stats, fmt.Errorf("failed to flush output %s: %w", cfg.Output, closeErr)
	}

	if cfg.TreePath != "" {
		if err := writeTree(cfg, r.excludedDirs, matcher, logger); err != nil {
			return r.stats, fmt.Errorf("failed to write tree structure: %w", err)
		}
	}

	logger.Info("Concatenation complete",
		zap.Int("filesProcessed", r.stats.FilesProcessed),
		zap.Int("filesSkipped", r.stats.FilesSkipped),
		zap.Duration("elapsed", time.Since(startTime)))
	return r.stats, nil
}

// loadIgnorePatterns builds the ignore matcher from the root ignore file
// and the configured extra file. Unreadable ignore files degrade to an
// empty matcher; they never abort the run.
func loadIgnorePatterns(cfg Config, logger *zap.Logger) *ignore.Matcher {
	matcher := ignore.NewMatcher(logger)

	if !cfg.NoIgnore {
		rootIgnore := filepath.Join(cfg.RootDir, ignore.FileName)
		if err := matcher.AddFile(rootIgnore); err != nil {
			logger.Warn("Failed to load ignore file", zap.String("file", rootIgnore), zap.Error(err))
		}
	}
	if cfg.IgnoreFile != "" {
		if err := matcher.AddFile(cfg.IgnoreFile); err != nil {
			logger.Warn("Failed to load ignore file", zap.String("file", cfg.IgnoreFile), zap.Error(err))
		}
	}

	if matcher.Len() > 0 {
		logger.Debug("Loaded ignore patterns", zap.Int("totalPatterns", matcher.Len()))
	}
	return matcher
}

func toNameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
