package files

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
}

func TestFindExcelFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.xlsx"))
	touch(t, filepath.Join(dir, "a.xlsx"))
	touch(t, filepath.Join(dir, "C.XLSX"))
	touch(t, filepath.Join(dir, "~$a.xlsx"))
	touch(t, filepath.Join(dir, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xlsx"), 0o755))

	paths, err := FindExcelFiles(dir)
	require.NoError(t, err)

	// Sorted by name, lock files and non-workbooks excluded, dirs skipped.
	require.Len(t, paths, 3)
	assert.Equal(t, "C.XLSX", filepath.Base(paths[0]))
	assert.Equal(t, "a.xlsx", filepath.Base(paths[1]))
	assert.Equal(t, "b.xlsx", filepath.Base(paths[2]))
}

func TestFindExcelFiles_MissingDir(t *testing.T) {
	paths, err := FindExcelFiles(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestArchive(t *testing.T) {
	srcDir := t.TempDir()
	a := filepath.Join(srcDir, "a.xlsx")
	b := filepath.Join(srcDir, "b.xlsx")
	touch(t, a)
	touch(t, b)

	archiveDir := filepath.Join(t.TempDir(), "archive")
	err := NewArchiver(testLogger()).Archive(context.Background(), []string{a, b}, archiveDir)
	require.NoError(t, err)

	for _, name := range []string{"a.xlsx", "b.xlsx"} {
		_, err := os.Stat(filepath.Join(archiveDir, name))
		require.NoError(t, err)
	}
	_, err = os.Stat(a)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(b)
	assert.True(t, os.IsNotExist(err))
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	require.NoError(t, MoveFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}
