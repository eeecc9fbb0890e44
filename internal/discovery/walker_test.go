package discovery

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDiscoverValidProject(t *testing.T) {
	root := t.TempDir()

	write := func(rel, content string) {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("main.go", "package main\n\nfunc main() {}\n")
	write("main_test.go", "package main\n\nimport \"testing\"\n\nfunc TestMain(t *testing.T) {}\n")
	write("doc_generated.go", "// Code generated by stringer. DO NOT EDIT.\npackage main\n")
	write("util_linux.go", "package main\n")
	write("vendor/dep/dep.go", "package dep\n")
	write("ignored_by_gitignore.go", "package main\n")
	write(".gitignore", "ignored_by_gitignore.go\n")

	w := NewWalker()
	result, err := w.Discover(root)
	if err != nil {
		t.Fatalf("Discover(%q) returned error: %v", root, err)
	}

	fileMap := make(map[string]DiscoveredFile)
	for _, f := range result.Files {
		fileMap[f.RelPath] = f
	}

	assertFile(t, fileMap, "main.go", ClassSource, "")
	assertFile(t, fileMap, "main_test.go", ClassTest, "")
	assertFile(t, fileMap, "doc_generated.go", ClassGenerated, "")
	assertFile(t, fileMap, "util_linux.go", ClassSource, "")
	assertFile(t, fileMap, "vendor/dep/dep.go", ClassExcluded, "vendor")
	assertFile(t, fileMap, "ignored_by_gitignore.go", ClassExcluded, "gitignore")

	for relPath := range fileMap {
		if filepath.Base(relPath) == ".git" || strings.HasPrefix(relPath, ".git/") {
			t.Errorf("found .git file in results: %s", relPath)
		}
	}

	if result.SourceCount != 2 {
		t.Errorf("SourceCount = %d, want 2", result.SourceCount)
	}
	if result.TestCount != 1 {
		t.Errorf("TestCount = %d, want 1", result.TestCount)
	}
	if result.GeneratedCount != 1 {
		t.Errorf("GeneratedCount = %d, want 1", result.GeneratedCount)
	}
	if result.VendorCount != 1 {
		t.Errorf("VendorCount = %d, want 1", result.VendorCount)
	}
	if result.GitignoreCount != 1 {
		t.Errorf("GitignoreCount = %d, want 1", result.GitignoreCount)
	}
	if result.TotalFiles != 6 {
		t.Errorf("TotalFiles = %d, want 6", result.TotalFiles)
	}
}

func TestDiscoverEmptyDir(t *testing.T) {
	tmpDir := t.TempDir()

	w := NewWalker()
	result, err := w.Discover(tmpDir)
	if err != nil {
		t.Fatalf("Discover(%q) returned error: %v", tmpDir, err)
	}

	if len(result.Files) != 0 {
		t.Errorf("expected empty file list, got %d files", len(result.Files))
	}
	if result.TotalFiles != 0 {
		t.Errorf("TotalFiles = %d, want 0", result.TotalFiles)
	}
}

func TestDiscoverNonExistentDir(t *testing.T) {
	w := NewWalker()
	_, err := w.Discover("/nonexistent/path/that/does/not/exist")
	if err == nil {
		t.Error("expected error for non-existent directory, got nil")
	}
}

func TestWalkerSymlink(t *testing.T) {
	tmpDir := t.TempDir()

	goContent := []byte("package main\n")
	if err := os.WriteFile(filepath.Join(tmpDir, "real.go"), goContent, 0o644); err != nil {
		t.Fatal(err)
	}

	targetDir := filepath.Join(tmpDir, "target")
	if err := os.Mkdir(targetDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(targetDir, "target.go"), goContent, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.Symlink(filepath.Join(tmpDir, "real.go"), filepath.Join(tmpDir, "link.go")); err != nil {
		t.Skipf("symlink creation not supported: %v", err)
	}

	if err := os.Symlink(targetDir, filepath.Join(tmpDir, "linkdir")); err != nil {
		t.Skipf("directory symlink creation not supported: %v", err)
	}

	w := NewWalker()
	result, err := w.Discover(tmpDir)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}

	found := false
	for _, f := range result.Files {
		if f.RelPath == "real.go" {
			found = true
			break
		}
	}
	if !found {
		t.Error("real.go not found in results")
	}

	found = false
	for _, f := range result.Files {
		if f.RelPath == "target/target.go" {
			found = true
			break
		}
	}
	if !found {
		t.Error("target/target.go not found in results")
	}

	if result.SymlinkCount < 1 {
		t.Errorf("SymlinkCount = %d, want >= 1", result.SymlinkCount)
	}
}

func TestWalkerPermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission test not reliable on Windows")
	}

	tmpDir := t.TempDir()

	goContent := []byte("package main\n")
	if err := os.WriteFile(filepath.Join(tmpDir, "accessible.go"), goContent, 0o644); err != nil {
		t.Fatal(err)
	}

	subdir := filepath.Join(tmpDir, "noperm")
	if err := os.Mkdir(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(subdir, "hidden.go"), goContent, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(subdir, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Chmod(subdir, 0o755)
	})

	w := NewWalker()
	result, err := w.Discover(tmpDir)
	if err != nil {
		t.Fatalf("Discover returned error: %v (should have continued)", err)
	}

	found := false
	for _, f := range result.Files {
		if f.RelPath == "accessible.go" {
			found = true
			break
		}
	}
	if !found {
		t.Error("accessible.go not found in results")
	}

	if result.SkippedCount < 1 {
		t.Errorf("SkippedCount = %d, want >= 1", result.SkippedCount)
	}
}

func TestWalkerUnicodePaths(t *testing.T) {
	tmpDir := t.TempDir()

	unicodeDir := filepath.Join(tmpDir, "pkg_unicodé")
	if err := os.Mkdir(unicodeDir, 0o755); err != nil {
		t.Fatal(err)
	}

	goContent := []byte("package main\n")
	if err := os.WriteFile(filepath.Join(unicodeDir, "main.go"), goContent, 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWalker()
	result, err := w.Discover(tmpDir)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}

	found := false
	for _, f := range result.Files {
		if f.RelPath == "pkg_unicodé/main.go" {
			found = true
			if f.Class != ClassSource {
				t.Errorf("Unicode path file: Class = %v, want ClassSource", f.Class)
			}
			break
		}
	}
	if !found {
		t.Errorf("file in Unicode directory not found in results; files: %v", result.Files)
	}
}

func TestWalkerContinuesOnBadGeneratedCheck(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission test not reliable on Windows")
	}

	tmpDir := t.TempDir()

	goFile := filepath.Join(tmpDir, "unreadable.go")
	if err := os.WriteFile(goFile, []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(goFile, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Chmod(goFile, 0o644)
	})

	if err := os.WriteFile(filepath.Join(tmpDir, "readable.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWalker()
	result, err := w.Discover(tmpDir)
	if err != nil {
		t.Fatalf("Discover returned error: %v (should have continued)", err)
	}

	if result.SkippedCount < 1 {
		t.Errorf("SkippedCount = %d, want >= 1", result.SkippedCount)
	}

	found := false
	for _, f := range result.Files {
		if f.RelPath == "readable.go" {
			found = true
			break
		}
	}
	if !found {
		t.Error("readable.go not found in results")
	}
}

func assertFile(t *testing.T, fileMap map[string]DiscoveredFile, relPath string, wantClass FileClass, wantReason string) {
	t.Helper()
	f, ok := fileMap[relPath]
	if !ok {
		t.Errorf("file %q not found in results", relPath)
		return
	}
	if f.Class != wantClass {
		t.Errorf("file %q: Class = %v, want %v", relPath, f.Class, wantClass)
	}
	if wantReason != "" && f.ExcludeReason != wantReason {
		t.Errorf("file %q: ExcludeReason = %q, want %q", relPath, f.ExcludeReason, wantReason)
	}
}
