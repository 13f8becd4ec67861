package backup

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeData(t *testing.T, dataDir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dataDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestCreateSnapshotCopiesDataDirectory(t *testing.T) {
	dataDir := t.TempDir()
	backupDir := t.TempDir()
	writeData(t, dataDir, map[string]string{
		"students.csv":    "ID,RegNo\ns-001,24BCE10001\n",
		"courses.csv":     "Code,Title\nCSE101,Programming\n",
		"enrollments.csv": "StudentId,CourseCode\n",
	})

	m := NewManager(dataDir, backupDir, nil)
	path, err := m.CreateSnapshot()
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), snapshotPrefix)

	copied, err := os.ReadFile(filepath.Join(path, "data", "students.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ID,RegNo\ns-001,24BCE10001\n", string(copied))

	info, err := m.Info(filepath.Base(path))
	require.NoError(t, err)
	assert.Equal(t, 3, info.FileCount)
	assert.Positive(t, info.SizeBytes)
}

func TestSnapshotSizeSumsRecursively(t *testing.T) {
	dataDir := t.TempDir()
	backupDir := t.TempDir()
	writeData(t, dataDir, map[string]string{
		"students.csv": "1234567890",
		"courses.csv":  "12345",
	})

	m := NewManager(dataDir, backupDir, nil)
	path, err := m.CreateSnapshot()
	require.NoError(t, err)

	size, err := m.SnapshotSize(filepath.Base(path))
	require.NoError(t, err)
	assert.Equal(t, int64(15), size)
}

func TestListSnapshotsSortedByName(t *testing.T) {
	backupDir := t.TempDir()
	for _, name := range []string{
		"backup-2024-01-02_10-00-00",
		"backup-2024-01-01_10-00-00",
		"backup-2024-01-03_10-00-00",
		"unrelated-dir",
	} {
		require.NoError(t, os.Mkdir(filepath.Join(backupDir, name), 0o755))
	}

	m := NewManager(t.TempDir(), backupDir, nil)
	names, err := m.ListSnapshots()
	require.NoError(t, err)
	require.Len(t, names, 3)
	assert.True(t, sort.StringsAreSorted(names))
	assert.NotContains(t, names, "unrelated-dir")
}

func TestPruneRemovesOldestBeyondKeep(t *testing.T) {
	backupDir := t.TempDir()
	all := []string{
		"backup-2024-01-01_10-00-00",
		"backup-2024-01-02_10-00-00",
		"backup-2024-01-03_10-00-00",
		"backup-2024-01-04_10-00-00",
		"backup-2024-01-05_10-00-00",
	}
	for _, name := range all {
		require.NoError(t, os.Mkdir(filepath.Join(backupDir, name), 0o755))
	}

	m := NewManager(t.TempDir(), backupDir, nil)

	removed, err := m.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	names, err := m.ListSnapshots()
	require.NoError(t, err)
	assert.Equal(t, all[3:], names)

	// pruning again with the same keep removes nothing
	removed, err = m.Prune(2)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestPruneZeroKeepRemovesEverySnapshot(t *testing.T) {
	backupDir := t.TempDir()
	for _, name := range []string{
		"backup-2024-01-01_10-00-00",
		"backup-2024-01-02_10-00-00",
	} {
		require.NoError(t, os.Mkdir(filepath.Join(backupDir, name), 0o755))
	}

	m := NewManager(t.TempDir(), backupDir, nil)
	removed, err := m.Prune(0)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	names, err := m.ListSnapshots()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMissingDirectoriesYieldEmptyResults(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent-data"), filepath.Join(t.TempDir(), "absent-backup"), nil)

	names, err := m.ListSnapshots()
	require.NoError(t, err)
	assert.Empty(t, names)

	path, err := m.CreateSnapshot()
	require.NoError(t, err)
	info, err := m.Info(filepath.Base(path))
	require.NoError(t, err)
	assert.Zero(t, info.FileCount)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.0 KB", FormatSize(1024))
	assert.Equal(t, "1.5 MB", FormatSize(1536*1024))
}
