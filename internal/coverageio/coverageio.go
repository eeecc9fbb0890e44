// Package coverageio resolves an external "go test -coverprofile" file
// into the coverage.LineHits map the coverage mapper consumes.
// The core never parses a coverage-file format itself; this package is
// the external collaborator that does.
package coverageio

import (
	"path/filepath"
	"strings"

	"golang.org/x/tools/cover"

	"github.com/debtmap-go/debtmap/internal/coverage"
)

// Load parses a go cover profile at path and resolves each profile's
// module-relative FileName into an absolute path under rootDir, using
// modulePath (the go.mod module path) to strip the import-path prefix.
// A profile block's line range contributes one hit-count entry per
// line; overlapping blocks keep the maximum count observed (a line is
// "covered" if any block touching it executed).
func Load(path, rootDir, modulePath string) (coverage.LineHits, error) {
	profiles, err := cover.ParseProfiles(path)
	if err != nil {
		return nil, err
	}

	hits := make(coverage.LineHits, len(profiles))
	prefix := modulePath + "/"
	for _, p := range profiles {
		rel := strings.TrimPrefix(p.FileName, prefix)
		abs := filepath.Join(rootDir, rel)

		fileHits := hits[abs]
		if fileHits == nil {
			fileHits = make(map[int]int)
			hits[abs] = fileHits
		}

		for _, b := range p.Blocks {
			if b.NumStmt == 0 {
				continue
			}
			for line := b.StartLine; line <= b.EndLine; line++ {
				if cur, seen := fileHits[line]; !seen || b.Count > cur {
					fileHits[line] = b.Count
				}
			}
		}
	}

	return hits, nil
}
