// Package discovery walks a project directory, classifies every file by
// language and role, and produces the DiscoveredFile list the extraction
// stage consumes. It is a collaborator per the core/collaborator split:
// the core never walks a filesystem directly.
package discovery

import "github.com/debtmap-go/debtmap/pkg/debt"

// FileClass categorizes a discovered file for the extractor's benefit.
type FileClass int

const (
	ClassSource FileClass = iota
	ClassTest
	ClassGenerated
	ClassExcluded
)

func (c FileClass) String() string {
	switch c {
	case ClassSource:
		return "source"
	case ClassTest:
		return "test"
	case ClassGenerated:
		return "generated"
	case ClassExcluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// DiscoveredFile is one file found by the Walker, with its classification.
type DiscoveredFile struct {
	Path          string
	RelPath       string
	Language      debt.Language
	Class         FileClass
	ExcludeReason string
}

// ScanResult is the Walker's full output for one root directory.
type ScanResult struct {
	RootDir        string
	Files          []DiscoveredFile
	TotalFiles     int
	SourceCount    int
	TestCount      int
	GeneratedCount int
	VendorCount    int
	GitignoreCount int
	SkippedCount   int
	SymlinkCount   int
	PerLanguage    map[debt.Language]int
}

// SourceFiles returns only files classified as source or test, the set
// the extraction stage should parse.
func (r *ScanResult) SourceFiles() []DiscoveredFile {
	var out []DiscoveredFile
	for _, f := range r.Files {
		if f.Class == ClassSource || f.Class == ClassTest {
			out = append(out, f)
		}
	}
	return out
}

// FilesByLanguage groups source/test files by language, preserving
// discovery order within each group.
func (r *ScanResult) FilesByLanguage() map[debt.Language][]DiscoveredFile {
	out := make(map[debt.Language][]DiscoveredFile)
	for _, f := range r.SourceFiles() {
		out[f.Language] = append(out[f.Language], f)
	}
	return out
}
