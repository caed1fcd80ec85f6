package concat

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// writeTestFile creates a file (and its parent directories) with the
// given content, failing the test on error.
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// runForTest executes Run with a fresh output path outside the root (so
// the output never shows up in its own traversal) and returns the stats
// together with the produced output text.
func runForTest(t *testing.T, cfg Config) (Stats, string) {
	t.Helper()
	if cfg.Output == "" {
		cfg.Output = filepath.Join(t.TempDir(), "out.txt")
	}
	stats, err := Run(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	data, err := os.ReadFile(cfg.Output)
	if err != nil {
		t.Fatalf("failed to read output %s: %v", cfg.Output, err)
	}
	return stats, string(data)
}

// block assembles the expected output block for one file.
func block(relPath, content string) string {
	sep := strings.Repeat("=", 60)
	return sep + "\nFile: " + relPath + "\n" + sep + "\n" + content + "\n\n"
}

func TestScenarioExcludedExtensionAndPrunedDirectory(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "a.py"), "x=1")
	writeTestFile(t, filepath.Join(root, "b.log"), "noise")
	writeTestFile(t, filepath.Join(root, "node_modules", "c.js"), "var x;")

	stats, output := runForTest(t, Config{
		RootDir:            root,
		ExcludedExtensions: []string{"log"},
		ExcludedDirs:       []string{"node_modules"},
	})

	if output != block("a.py", "x=1") {
		t.Errorf("unexpected output:\n%s", output)
	}
	if stats.FilesProcessed != 1 {
		t.Errorf("FilesProcessed = %d, expected 1", stats.FilesProcessed)
	}
	// Only b.log counts: files under the pruned directory are never visited.
	if stats.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, expected 1", stats.FilesSkipped)
	}
}

func TestScenarioIncludedFilesGate(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "test_a.py"), "assert True")
	writeTestFile(t, filepath.Join(root, "main.py"), "print()")

	stats, output := runForTest(t, Config{
		RootDir:       root,
		IncludedFiles: []string{"test_"},
	})

	if !strings.Contains(output, "File: test_a.py") {
		t.Error("expected test_a.py in output")
	}
	if strings.Contains(output, "File: main.py") {
		t.Error("main.py should have been skipped")
	}
	if stats.FilesProcessed != 1 || stats.FilesSkipped != 1 {
		t.Errorf("stats = %+v, expected 1 processed / 1 skipped", stats)
	}
}

func TestScenarioEmptyRoot(t *testing.T) {
	root := t.TempDir()
	output := filepath.Join(t.TempDir(), "out.txt")

	stats, err := Run(Config{RootDir: root, Output: output}, zap.NewNop())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	info, err := os.Stat(output)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("output size = %d, expected empty file", info.Size())
	}
	if stats.FilesProcessed != 0 || stats.FilesSkipped != 0 {
		t.Errorf("stats = %+v, expected zero counts", stats)
	}
}

func TestDefaultPassThrough(t *testing.T) {
	root := t.TempDir()
	paths := []string{"a.txt", "b.md", "sub/c.go", "sub/deeper/d.py"}
	for _, p := range paths {
		writeTestFile(t, filepath.Join(root, p), "content of "+p)
	}

	stats, output := runForTest(t, Config{RootDir: root})

	if stats.FilesProcessed != len(paths) || stats.FilesSkipped != 0 {
		t.Fatalf("stats = %+v, expected %d processed / 0 skipped", stats, len(paths))
	}
	for _, p := range paths {
		header := "File: " + filepath.FromSlash(p)
		if strings.Count(output, header+"\n") != 1 {
			t.Errorf("expected exactly one block for %s", p)
		}
	}
}

func TestExclusionRunsBeforeInclusionGate(t *testing.T) {
	root := t.TempDir()
	// Matches both the inclusion substring and an excluded extension.
	writeTestFile(t, filepath.Join(root, "test_data.log"), "both")
	// Matches both the inclusion substring and an excluded pattern.
	writeTestFile(t, filepath.Join(root, "test_backup.py"), "both")
	writeTestFile(t, filepath.Join(root, "test_keep.py"), "kept")

	stats, output := runForTest(t, Config{
		RootDir:            root,
		ExcludedExtensions: []string{"log"},
		ExcludedPatterns:   []string{"backup"},
		IncludedFiles:      []string{"test_"},
	})

	if strings.Contains(output, "test_data.log") || strings.Contains(output, "test_backup.py") {
		t.Error("excluded files leaked into the output despite matching the inclusion filter")
	}
	if !strings.Contains(output, "File: test_keep.py") {
		t.Error("expected test_keep.py in output")
	}
	if stats.FilesProcessed != 1 || stats.FilesSkipped != 2 {
		t.Errorf("stats = %+v, expected 1 processed / 2 skipped", stats)
	}
}

func TestDirectoryPruningIsAbsolute(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "keep.txt"), "keep")
	writeTestFile(t, filepath.Join(root, "skipme", "a.txt"), "hidden")
	writeTestFile(t, filepath.Join(root, "skipme", "nested", "b.txt"), "hidden too")
	writeTestFile(t, filepath.Join(root, "other", "skipme", "c.txt"), "hidden deeper")

	stats, output := runForTest(t, Config{
		RootDir:      root,
		ExcludedDirs: []string{"skipme"},
	})

	if strings.Contains(output, "hidden") {
		t.Error("content under a pruned directory leaked into the output")
	}
	if stats.FilesProcessed != 1 || stats.FilesSkipped != 0 {
		t.Errorf("stats = %+v, expected 1 processed / 0 skipped", stats)
	}
}

func TestDirectoryInclusionGateStillDescends(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "top.txt"), "top")
	writeTestFile(t, filepath.Join(root, "lib", "src", "deep.go"), "deep")
	writeTestFile(t, filepath.Join(root, "lib", "other.go"), "not matched")

	stats, output := runForTest(t, Config{
		RootDir:      root,
		IncludedDirs: []string{"src"},
	})

	if !strings.Contains(output, "deep") {
		t.Error("expected the file inside the matching nested directory to be included")
	}
	if strings.Contains(output, "top") || strings.Contains(output, "not matched") {
		t.Error("files of non-matching directories should not be processed")
	}
	// Files in gated-out directories are never iterated, so they are not
	// counted as skipped either.
	if stats.FilesProcessed != 1 || stats.FilesSkipped != 0 {
		t.Errorf("stats = %+v, expected 1 processed / 0 skipped", stats)
	}
}

func TestTraversalOrderDirectoryFilesBeforeSubdirectories(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "a.txt"), "A")
	writeTestFile(t, filepath.Join(root, "z.txt"), "Z")
	writeTestFile(t, filepath.Join(root, "mid", "inner.txt"), "I")

	_, output := runForTest(t, Config{RootDir: root})

	posA := strings.Index(output, "File: a.txt")
	posZ := strings.Index(output, "File: z.txt")
	posI := strings.Index(output, "File: "+filepath.Join("mid", "inner.txt"))
	if posA < 0 || posZ < 0 || posI < 0 {
		t.Fatalf("missing blocks in output:\n%s", output)
	}
	if !(posA < posZ && posZ < posI) {
		t.Errorf("unexpected block order: a=%d z=%d mid/inner=%d", posA, posZ, posI)
	}
}

func TestRepeatedRunsAreByteIdentical(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "a.txt"), "A")
	writeTestFile(t, filepath.Join(root, "sub", "b.txt"), "B")

	_, first := runForTest(t, Config{RootDir: root})
	_, second := runForTest(t, Config{RootDir: root})

	if first != second {
		t.Error("two runs over an unmodified tree produced different output")
	}
}

func TestCountConservation(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "one.go"), "1")
	writeTestFile(t, filepath.Join(root, "two.log"), "2")
	writeTestFile(t, filepath.Join(root, "three_backup.go"), "3")
	writeTestFile(t, filepath.Join(root, "sub", "four.go"), "4")
	writeTestFile(t, filepath.Join(root, "pruned", "five.go"), "5")

	stats, _ := runForTest(t, Config{
		RootDir:            root,
		ExcludedExtensions: []string{"log"},
		ExcludedPatterns:   []string{"backup"},
		ExcludedDirs:       []string{"pruned"},
	})

	// 4 files visited after pruning: one.go, two.log, three_backup.go, sub/four.go.
	if total := stats.FilesProcessed + stats.FilesSkipped; total != 4 {
		t.Errorf("processed+skipped = %d, expected 4", total)
	}
	if stats.FilesProcessed != 2 || stats.FilesSkipped != 2 {
		t.Errorf("stats = %+v, expected 2 processed / 2 skipped", stats)
	}
}

func TestReadErrorIsIsolated(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks not reliably available on windows")
	}
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "good1.txt"), "fine")
	writeTestFile(t, filepath.Join(root, "good2.txt"), "also fine")
	// A dangling symlink fails at read time but is listed as a file.
	if err := os.Symlink(filepath.Join(root, "vanished"), filepath.Join(root, "broken.txt")); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	stats, output := runForTest(t, Config{RootDir: root})

	if !strings.Contains(output, "[ERROR: Could not read file - ") {
		t.Error("expected an inline error marker for the unreadable file")
	}
	if !strings.Contains(output, "File: broken.txt") {
		t.Error("the unreadable file should still get a header block")
	}
	if !strings.Contains(output, "fine") || !strings.Contains(output, "also fine") {
		t.Error("readable files should be unaffected by the bad one")
	}
	if stats.FilesProcessed != 2 || stats.FilesSkipped != 1 {
		t.Errorf("stats = %+v, expected 2 processed / 1 skipped", stats)
	}
}

func TestInvalidUTF8IsDropped(t *testing.T) {
	root := t.TempDir()
	raw := []byte{'h', 'i', 0xff, 0xfe, '!'}
	if err := os.WriteFile(filepath.Join(root, "weird.txt"), raw, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	stats, output := runForTest(t, Config{RootDir: root})

	if !strings.Contains(output, "hi!") {
		t.Errorf("expected sanitized content in output, got:\n%s", output)
	}
	if strings.ContainsRune(output, 0xFFFD) {
		t.Error("invalid bytes should be dropped, not replaced")
	}
	if stats.FilesProcessed != 1 {
		t.Errorf("FilesProcessed = %d, expected 1", stats.FilesProcessed)
	}
}

func TestFatalWhenOutputCannotBeCreated(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "a.txt"), "A")

	cfg := Config{
		RootDir: root,
		Output:  filepath.Join(t.TempDir(), "no", "such", "dir", "out.txt"),
	}
	if _, err := Run(cfg, zap.NewNop()); err == nil {
		t.Fatal("expected an error when the output path cannot be created")
	}
}

func TestMissingRootYieldsEmptyOutput(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.txt")
	stats, err := Run(Config{
		RootDir: filepath.Join(t.TempDir(), "does-not-exist"),
		Output:  output,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.FilesProcessed != 0 || stats.FilesSkipped != 0 {
		t.Errorf("stats = %+v, expected zero counts", stats)
	}
	if _, statErr := os.Stat(output); statErr != nil {
		t.Errorf("output file should still be created: %v", statErr)
	}
}

func TestIgnoreFilePatterns(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, ".treecatignore"), "*.log\nvendor/\n")
	writeTestFile(t, filepath.Join(root, "app.log"), "log noise")
	writeTestFile(t, filepath.Join(root, "keep.txt"), "keep me")
	writeTestFile(t, filepath.Join(root, "vendor", "dep.txt"), "vendored")

	stats, output := runForTest(t, Config{RootDir: root})

	if strings.Contains(output, "log noise") || strings.Contains(output, "vendored") {
		t.Error("ignored content leaked into the output")
	}
	if !strings.Contains(output, "keep me") {
		t.Error("expected keep.txt in output")
	}
	// Visited files: .treecatignore, app.log, keep.txt. vendor/ is pruned.
	if stats.FilesProcessed != 2 || stats.FilesSkipped != 1 {
		t.Errorf("stats = %+v, expected 2 processed / 1 skipped", stats)
	}
}

func TestNoIgnoreDisablesRootIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, ".treecatignore"), "*.log\n")
	writeTestFile(t, filepath.Join(root, "app.log"), "log noise")

	_, output := runForTest(t, Config{RootDir: root, NoIgnore: true})

	if !strings.Contains(output, "log noise") {
		t.Error("with NoIgnore set, the ignore file should have no effect")
	}
}

func TestMaxFileSizeSkipsLargeFiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "small.txt"), "small")
	writeTestFile(t, filepath.Join(root, "large.txt"), strings.Repeat("x", 2048))

	stats, output := runForTest(t, Config{RootDir: root, MaxFileSizeKB: 1})

	if strings.Contains(output, "File: large.txt") {
		t.Error("large.txt should have been skipped by the size cap")
	}
	if stats.FilesProcessed != 1 || stats.FilesSkipped != 1 {
		t.Errorf("stats = %+v, expected 1 processed / 1 skipped", stats)
	}
}

func TestSkipBinarySniffsContent(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "text.txt"), "plain text")
	if err := os.WriteFile(filepath.Join(root, "blob.dat"), []byte{0x00, 0x01, 0x02, 'a'}, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	stats, output := runForTest(t, Config{RootDir: root, SkipBinary: true})

	if strings.Contains(output, "File: blob.dat") {
		t.Error("binary file should have been skipped")
	}
	if stats.FilesProcessed != 1 || stats.FilesSkipped != 1 {
		t.Errorf("stats = %+v, expected 1 processed / 1 skipped", stats)
	}
}

func TestProgressReportsRelativePaths(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "sub", "a.txt"), "A")

	var seen []string
	cfg := Config{
		RootDir:  root,
		Progress: func(relPath string) { seen = append(seen, relPath) },
	}
	runForTest(t, cfg)

	want := filepath.Join("sub", "a.txt")
	if len(seen) != 1 || seen[0] != want {
		t.Errorf("progress = %v, expected [%s]", seen, want)
	}
}

func TestApplyDefaultExcludes(t *testing.T) {
	cfg := Config{ExcludedDirs: []string{"custom"}}
	cfg.ApplyDefaultExcludes()

	found := false
	for _, d := range cfg.ExcludedDirs {
		if d == "node_modules" {
			found = true
		}
	}
	if !found {
		t.Error("expected node_modules in the default excluded directories")
	}
	if cfg.ExcludedDirs[0] != "custom" {
		t.Error("explicitly configured entries must be preserved")
	}
}
