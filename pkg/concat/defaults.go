package concat

// Stock exclusion lists covering common development trees: compiled
// artifacts, dependency and build directories, VCS metadata, media and
// archive formats. Opt-in via Config.ApplyDefaultExcludes.
var (
	DefaultExcludedExtensions = []string{
		"pyc", "pyo", "pyd", "so", // Python compiled
		"class", "jar", // Java compiled
		"exe", "dll", "obj", // Binary files
		"log", "tmp", "cache", // Temporary files
		"jpg", "jpeg", "png", "gif", "svg", "ico", // Images
		"woff", "woff2", "ttf", "eot", // Fonts
		"mp3", "mp4", "avi", "mov", // Media
		"zip", "tar", "gz", "rar", // Archives
		"pdf", "doc", "docx", // Documents
	}

	DefaultExcludedDirs = []string{
		"__pycache__", ".git", ".svn", ".hg", // Version control
		"node_modules", "venv", "env", ".env", // Dependencies
		"dist", "build", "target", // Build outputs
		".idea", ".vscode", ".vs", // IDE folders
		"migrations", "static", "media", // Framework artifacts
	}

	DefaultExcludedPatterns = []string{"requirements", ".min.js", ".min.css"}
)

// ApplyDefaultExcludes appends the stock exclusion lists to the
// configured filters; explicitly configured entries stay in effect.
func (c *Config) ApplyDefaultExcludes() {
	c.ExcludedExtensions = append(c.ExcludedExtensions, DefaultExcludedExtensions...)
	c.ExcludedDirs = append(c.ExcludedDirs, DefaultExcludedDirs...)
	c.ExcludedPatterns = append(c.ExcludedPatterns, DefaultExcludedPatterns...)
}
