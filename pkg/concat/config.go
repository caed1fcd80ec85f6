package concat

// DefaultOutputName is the output file used when none is configured.
const DefaultOutputName = "concatenated_output.txt"

// Config holds the settings for one concatenation run. The zero value is
// usable: it walks the current directory with no filters and writes to
// DefaultOutputName.
type Config struct {
	RootDir string // Directory to walk. Defaults to ".".
	Output  string // Destination path for the combined output file.

	ExcludedExtensions []string // File extensions to skip, without the leading dot.
	ExcludedDirs       []string // Directory names pruned from the walk, subtree included.
	IncludedDirs       []string // Directory name substrings; when set, only matching directories have their files processed.
	IncludedFiles      []string // File name substrings; when set, only matching files are included.
	ExcludedPatterns   []string // File name substrings to skip.

	IgnoreFile    string // Optional extra gitignore-style pattern file.
	NoIgnore      bool   // Skip loading the root ignore file.
	SkipBinary    bool   // Sniff file content and skip binary files.
	MaxFileSizeKB int    // Skip files larger than this many KB; 0 means no limit.
	TreePath      string // When set, also write a directory tree to this path.

	// Progress, when non-nil, receives the root-relative path of every
	// file about to be written to the output.
	Progress func(relPath string)
}

// Stats reports the outcome of a run. Every file name iterated during
// the walk lands in exactly one of the two counters.
type Stats struct {
	FilesProcessed int // Files whose content made it into the output.
	FilesSkipped   int // Files rejected by a filter or failed to read.
}
