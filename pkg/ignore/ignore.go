// Package ignore implements gitignore-style pattern matching for the
// optional .treecatignore files.
package ignore

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// FileName is the ignore file loaded from the root directory unless the
// caller opts out.
const FileName = ".treecatignore"

// Pattern encapsulates a compiled regular expression pattern,
// a negation flag, and metadata about the pattern's origin.
type Pattern struct {
	Regex  *regexp.Regexp // Compiled regular expression for the pattern.
	Negate bool           // Indicates if the pattern is a negation (starts with '!').
	Line   string         // Original pattern line.
	LineNo int            // Line number in the source (1-based).
}

// Matcher holds a collection of ignore patterns.
type Matcher struct {
	patterns []*Pattern
	logger   *zap.Logger
}

// NewMatcher initializes an empty Matcher with an optional logger.
func NewMatcher(logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{logger: logger}
}

// Len reports the number of compiled patterns.
func (m *Matcher) Len() int {
	return len(m.patterns)
}

// AddLines compiles a set of ignore pattern lines into the matcher.
// Empty lines, comments and invalid patterns are skipped.
func (m *Matcher) AddLines(lines ...string) {
	for i, line := range lines {
		regex, negate := parsePatternLine(line)
		if regex == nil {
			continue
		}
		p := &Pattern{
			Regex:  regex,
			Negate: negate,
			Line:   strings.TrimSpace(line),
			LineNo: len(m.patterns) + i + 1, // 1-based line numbering.
		}
		m.patterns = append(m.patterns, p)
		m.logger.Debug("Compiled ignore pattern",
			zap.Int("lineNo", p.LineNo),
			zap.String("pattern", p.Line),
			zap.Bool("negate", p.Negate))
	}
}

// AddFile reads an ignore file and compiles its lines into the matcher.
// A missing file is not an error; the matcher is simply left unchanged.
func (m *Matcher) AddFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Debug("Ignore file does not exist and will be skipped", zap.String("filePath", path))
			return nil
		}
		m.logger.Error("Failed to read ignore file", zap.String("filePath", path), zap.Error(err))
		return err
	}

	m.AddLines(strings.Split(string(content), "\n")...)
	m.logger.Debug("Loaded ignore file",
		zap.String("filePath", path),
		zap.Int("totalPatterns", len(m.patterns)))
	return nil
}

// Match checks whether a root-relative path matches the ignore patterns.
// The last matching pattern wins, so a later negation can re-include a
// path excluded by an earlier pattern.
func (m *Matcher) Match(relPath string, isDir bool) bool {
	matched, _ := m.MatchWithPattern(relPath, isDir)
	return matched
}

// MatchWithPattern is Match plus the specific pattern that decided the
// outcome, for diagnostics.
func (m *Matcher) MatchWithPattern(relPath string, isDir bool) (bool, *Pattern) {
	path := filepath.ToSlash(relPath)
	if isDir && !strings.HasSuffix(path, "/") {
		path += "/"
	}

	matched := false
	var decided *Pattern

	for _, p := range m.patterns {
		if p.Regex.MatchString(path) {
			matched = !p.Negate
			decided = p
		}
	}

	if decided != nil {
		m.logger.Debug("Ignore pattern decided path",
			zap.String("path", path),
			zap.String("pattern", decided.Line),
			zap.Bool("ignored", matched))
	}
	return matched, decided
}

// parsePatternLine processes a single ignore-file line and returns a
// compiled regular expression and a negation flag. Returns nil for
// comments, blank lines and patterns that fail to compile.
func parsePatternLine(line string) (*regexp.Regexp, bool) {
	trimmed := strings.TrimSpace(line)

	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, false
	}

	negate := false
	if strings.HasPrefix(trimmed, "!") {
		negate = true
		trimmed = strings.TrimPrefix(trimmed, "!")
	}

	// "\#" and "\!" escape literal leading characters.
	if strings.HasPrefix(trimmed, `\#`) || strings.HasPrefix(trimmed, `\!`) {
		trimmed = trimmed[1:]
	}

	compiled, err := regexp.Compile(anchorPattern(translatePattern(trimmed), trimmed))
	if err != nil {
		return nil, false
	}
	return compiled, negate
}

// translatePattern converts the wildcard body of a pattern into regular
// expression syntax. "**" spans directory separators, "*" and "?" do not.
func translatePattern(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		switch {
		case strings.HasPrefix(pattern[i:], "**/"):
			b.WriteString(`(?:.*/)?`)
			i += 3
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(`.*`)
			i += 2
		case pattern[i] == '*':
			b.WriteString(`[^/]*`)
			i++
		case pattern[i] == '?':
			b.WriteString(`[^/]`)
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(pattern[i])))
			i++
		}
	}
	return b.String()
}

// anchorPattern anchors the translated pattern to match the whole
// root-relative path. A trailing slash restricts the pattern to
// directories; a leading slash makes it root-relative.
func anchorPattern(pattern, original string) string {
	if strings.HasSuffix(original, "/") {
		pattern += `(.*)?$`
	} else {
		pattern += `(/.*)?$`
	}

	if strings.HasPrefix(original, "/") {
		return `^` + strings.TrimPrefix(pattern, `/`)
	}
	return `^(|.*/)` + pattern
}
