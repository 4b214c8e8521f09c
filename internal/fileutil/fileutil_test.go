package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "two", string(got))
	require.Equal(t, []string{"data.json"}, listDir(t, dir))
}

func TestWriteFileAtomic_FailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "target")
	// a directory cannot be replaced by a file rename
	require.NoError(t, os.Mkdir(path, 0o755))

	require.Error(t, WriteFileAtomic(path, []byte("data"), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.Equal(t, []string{"target"}, listDir(t, dir))
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("verified copy content")
	require.NoError(t, os.WriteFile(src, content, 0o644))
	require.NoError(t, CopyFileVerified(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestCopyFileVerified_MissingSource(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, CopyFileVerified(filepath.Join(dir, "nonexistent"), filepath.Join(dir, "dst.bin")))
	require.Empty(t, listDir(t, dir))
}

func TestCopyFileVerified_UnwritableDestinationLeavesNoTemp(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	src := filepath.Join(srcDir, "a.efx")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dstDir, "a.efx"), 0o755))

	require.Error(t, CopyFileVerified(src, filepath.Join(dstDir, "a.efx")))
	require.Equal(t, []string{"a.efx"}, listDir(t, dstDir))
}

func TestSameContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	require.NoError(t, os.WriteFile(a, []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(c, []byte("diff"), 0o644))

	same, err := SameContent(a, b)
	require.NoError(t, err)
	require.True(t, same)

	same, err = SameContent(a, c)
	require.NoError(t, err)
	require.False(t, same)

	same, err = SameContent(a, filepath.Join(dir, "missing"))
	require.NoError(t, err)
	require.False(t, same)

	same, err = SameContent(a, dir)
	require.NoError(t, err)
	require.False(t, same)
}
