package concat

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// processFile applies the per-file filters and, for a surviving file,
// streams its block to the output. Filter rejections and read failures
// both count as skipped; only successfully written content counts as
// processed.
func (r *runner) processFile(dir, name string) error {
	path := filepath.Join(dir, name)

	if reason := r.skipReason(path, name); reason != "" {
		r.stats.FilesSkipped++
		r.logger.Debug("Skipping file",
			zap.String("filePath", path),
			zap.String("reason", reason))
		return nil
	}

	relPath := r.relative(path)
	if r.cfg.Progress != nil {
		r.cfg.Progress(relPath)
	}
	r.logger.Debug("Processing file", zap.String("relativePath", relPath))

	readOK, err := r.writer.writeBlock(relPath, path)
	if err != nil {
		return err
	}
	if readOK {
		r.stats.FilesProcessed++
	} else {
		r.stats.FilesSkipped++
	}
	return nil
}

// skipReason evaluates the filters in their fixed order and returns a
// short description of the first one that rejects the file, or "" when
// the file survives. Exclusions run before the inclusion gate, so a file
// matching both is skipped.
func (r *runner) skipReason(path, name string) string {
	for _, ext := range r.cfg.ExcludedExtensions {
		if strings.HasSuffix(name, "."+ext) {
			return "excluded extension"
		}
	}

	for _, pattern := range r.cfg.ExcludedPatterns {
		if strings.Contains(name, pattern) {
			return "excluded pattern"
		}
	}

	if r.matcher.Match(r.relative(path), false) {
		return "ignore pattern"
	}

	if r.cfg.MaxFileSizeKB > 0 {
		if info, err := os.Stat(path); err == nil && info.Size() > int64(r.cfg.MaxFileSizeKB)*1024 {
			return "size limit"
		}
	}

	if r.cfg.SkipBinary {
		if isBinary, err := isBinaryFile(path); err == nil && isBinary {
			return "binary content"
		}
	}

	if len(r.cfg.IncludedFiles) > 0 {
		included := false
		for _, sub := range r.cfg.IncludedFiles {
			if strings.Contains(name, sub) {
				included = true
				break
			}
		}
		if !included {
			return "not in included files"
		}
	}

	return ""
}
