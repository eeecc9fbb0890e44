package discovery

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

// skipDirs lists directory names that should be skipped during walking.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"testdata":     true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	".venv":        true,
	"venv":         true,
	"env":          true,
}

// langExtensions maps file extensions to languages.
var langExtensions = map[string]debt.Language{
	".go":  debt.LangGo,
	".py":  debt.LangPython,
	".ts":  debt.LangTypeScript,
	".tsx": debt.LangTypeScript,
}

// Walker discovers and classifies source files in a directory tree.
// ExtraExcludes holds additional doublestar glob patterns (relative to
// the root) applied on top of the built-in skip list and .gitignore,
// fed from AnalysisConfig.Discovery.Excludes.
type Walker struct {
	ExtraExcludes []string
}

// NewWalker creates a new Walker instance.
func NewWalker(extraExcludes ...string) *Walker {
	return &Walker{ExtraExcludes: extraExcludes}
}

// Discover walks rootDir recursively, discovers all source files (.go, .py, .ts, .tsx),
// classifies them, and returns a ScanResult with file lists and counts.
func (w *Walker) Discover(rootDir string) (*ScanResult, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("cannot access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", rootDir)
	}

	var gitIgnore *ignore.GitIgnore
	gitignorePath := filepath.Join(rootDir, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		gitIgnore, err = ignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse .gitignore: %w", err)
		}
	}

	result := &ScanResult{
		RootDir:     rootDir,
		PerLanguage: make(map[debt.Language]int),
	}

	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", path, err)
			result.SkippedCount++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			fmt.Fprintf(os.Stderr, "warning: skipping symlink %s\n", path)
			result.SymlinkCount++
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if strings.HasPrefix(name, ".") && name != "." {
				return fs.SkipDir
			}
			if skipDirs[name] {
				return fs.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(name)
		lang, supported := langExtensions[ext]
		if !supported {
			return nil
		}

		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: failed to compute relative path: %v\n", path, err)
			result.SkippedCount++
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		file := DiscoveredFile{
			Path:     path,
			RelPath:  relPath,
			Language: lang,
		}

		if isVendorPath(relPath) {
			file.Class = ClassExcluded
			file.ExcludeReason = "vendor"
			result.Files = append(result.Files, file)
			result.VendorCount++
			result.TotalFiles++
			return nil
		}

		if gitIgnore != nil && gitIgnore.MatchesPath(relPath) {
			file.Class = ClassExcluded
			file.ExcludeReason = "gitignore"
			result.Files = append(result.Files, file)
			result.GitignoreCount++
			result.TotalFiles++
			return nil
		}

		if w.matchesExtraExclude(relPath) {
			file.Class = ClassExcluded
			file.ExcludeReason = "config-exclude"
			result.Files = append(result.Files, file)
			result.TotalFiles++
			return nil
		}

		if lang == debt.LangGo {
			generated, err := isGeneratedFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: skipping %s: failed to check generated status: %v\n", relPath, err)
				result.SkippedCount++
				return nil
			}
			if generated {
				file.Class = ClassGenerated
				result.Files = append(result.Files, file)
				result.GeneratedCount++
				result.TotalFiles++
				return nil
			}
		}

		switch lang {
		case debt.LangGo:
			file.Class = classifyGoFile(name)
		case debt.LangPython:
			file.Class = classifyPythonFile(name)
		case debt.LangTypeScript:
			file.Class = classifyTypeScriptFile(name)
		}

		result.Files = append(result.Files, file)
		result.TotalFiles++

		switch file.Class {
		case ClassSource:
			result.SourceCount++
			result.PerLanguage[lang]++
		case ClassTest:
			result.TestCount++
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk error: %w", err)
	}

	return result, nil
}

func (w *Walker) matchesExtraExclude(relPath string) bool {
	for _, pattern := range w.ExtraExcludes {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

// DetectProjectLanguages checks the project root for language indicators and
// returns all languages detected.
func DetectProjectLanguages(rootDir string) []debt.Language {
	var langs []debt.Language

	if fileExists(filepath.Join(rootDir, "go.mod")) || hasFileWithExt(rootDir, ".go") {
		langs = append(langs, debt.LangGo)
	}

	pyIndicators := []string{"pyproject.toml", "setup.py", "setup.cfg", "requirements.txt"}
	pyDetected := false
	for _, f := range pyIndicators {
		if fileExists(filepath.Join(rootDir, f)) {
			pyDetected = true
			break
		}
	}
	if !pyDetected {
		pyDetected = hasFileWithExt(rootDir, ".py")
	}
	if pyDetected {
		langs = append(langs, debt.LangPython)
	}

	tsDetected := false
	if fileExists(filepath.Join(rootDir, "tsconfig.json")) {
		tsDetected = true
	}
	if !tsDetected {
		tsDetected = hasFileWithExt(rootDir, ".ts")
	}
	if !tsDetected {
		tsDetected = packageJSONHasTypeScript(filepath.Join(rootDir, "package.json"))
	}
	if tsDetected {
		langs = append(langs, debt.LangTypeScript)
	}

	return langs
}

func isVendorPath(relPath string) bool {
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	for _, part := range parts {
		if part == "vendor" {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func hasFileWithExt(dir string, ext string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ext {
			return true
		}
	}
	return false
}

func packageJSONHasTypeScript(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return false
	}
	if _, ok := pkg.Dependencies["typescript"]; ok {
		return true
	}
	if _, ok := pkg.DevDependencies["typescript"]; ok {
		return true
	}
	return false
}
