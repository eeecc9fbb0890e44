package coverageio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cover.out")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadResolvesModuleRelativeFileNames(t *testing.T) {
	profile := "mode: set\n" +
		"example.com/proj/pkg/foo.go:3.14,5.2 2 1\n" +
		"example.com/proj/pkg/foo.go:7.14,9.2 1 0\n"
	path := writeProfile(t, profile)

	hits, err := Load(path, "/repo/root", "example.com/proj")
	require.NoError(t, err)

	abs := filepath.Join("/repo/root", "pkg/foo.go")
	require.Contains(t, hits, abs)
	require.Equal(t, 1, hits[abs][3])
	require.Equal(t, 1, hits[abs][4])
	require.Equal(t, 0, hits[abs][7])
	require.Equal(t, 0, hits[abs][8])
}

func TestLoadKeepsMaximumCountAcrossOverlappingBlocks(t *testing.T) {
	profile := "mode: count\n" +
		"example.com/proj/pkg/bar.go:1.1,10.2 1 2\n" +
		"example.com/proj/pkg/bar.go:5.1,6.2 1 9\n"
	path := writeProfile(t, profile)

	hits, err := Load(path, "/repo/root", "example.com/proj")
	require.NoError(t, err)

	abs := filepath.Join("/repo/root", "pkg/bar.go")
	require.Equal(t, 9, hits[abs][5])
	require.Equal(t, 2, hits[abs][1])
}

func TestLoadSkipsZeroStatementBlocks(t *testing.T) {
	profile := "mode: set\n" +
		"example.com/proj/pkg/baz.go:1.1,3.2 0 1\n"
	path := writeProfile(t, profile)

	hits, err := Load(path, "/repo/root", "example.com/proj")
	require.NoError(t, err)

	abs := filepath.Join("/repo/root", "pkg/baz.go")
	require.Empty(t, hits[abs])
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.out"), "/repo/root", "example.com/proj")
	require.Error(t, err)
}
