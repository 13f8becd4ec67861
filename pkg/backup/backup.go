// Package backup snapshots the data directory into timestamped folders and
// prunes old snapshots.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	snapshotPrefix     = "backup-"
	snapshotTimeLayout = "2006-01-02_15-04-05"
)

// Manager copies the data directory into the backup directory.
type Manager struct {
	dataDir   string
	backupDir string
	logger    *zap.Logger
}

// SnapshotInfo summarises one snapshot on disk.
type SnapshotInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	SizeBytes int64     `json:"sizeBytes"`
	FileCount int       `json:"fileCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewManager builds a backup manager over the two directories.
func NewManager(dataDir, backupDir string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{dataDir: dataDir, backupDir: backupDir, logger: logger}
}

// CreateSnapshot copies every file under the data directory into a new
// backup-<timestamp>/data folder and returns the snapshot path. An empty or
// missing data directory still produces an empty snapshot folder.
func (m *Manager) CreateSnapshot() (string, error) {
	name := snapshotPrefix + time.Now().Format(snapshotTimeLayout)
	target := filepath.Join(m.backupDir, name)
	dataTarget := filepath.Join(target, "data")
	if err := os.MkdirAll(dataTarget, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	copied := 0
	err := filepath.WalkDir(m.dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == m.dataDir {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(m.dataDir, path)
		if err != nil {
			return err
		}
		if err := copyFile(path, filepath.Join(dataTarget, rel)); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", name, err)
	}

	m.logger.Info("snapshot created",
		zap.String("snapshot", name),
		zap.Int("files", copied))
	return target, nil
}

// ListSnapshots returns snapshot names sorted oldest first. The timestamped
// naming makes lexical order chronological.
func (m *Manager) ListSnapshots() ([]string, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), snapshotPrefix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// SnapshotSize returns the total size in bytes of the named snapshot,
// walking its tree recursively.
func (m *Manager) SnapshotSize(name string) (int64, error) {
	var total int64
	root := filepath.Join(m.backupDir, name)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("size of %s: %w", name, err)
	}
	return total, nil
}

// Info collects size, file count and creation time for the named snapshot.
func (m *Manager) Info(name string) (SnapshotInfo, error) {
	root := filepath.Join(m.backupDir, name)
	stat, err := os.Stat(root)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("stat snapshot %s: %w", name, err)
	}
	if !stat.IsDir() {
		return SnapshotInfo{}, fmt.Errorf("snapshot %s is not a directory", name)
	}

	info := SnapshotInfo{Name: name, Path: root, CreatedAt: stat.ModTime()}
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		info.SizeBytes += fi.Size()
		info.FileCount++
		return nil
	})
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("inspect snapshot %s: %w", name, err)
	}
	return info, nil
}

// Prune deletes the oldest snapshots beyond keep and returns how many were
// removed. keep <= 0 removes every snapshot.
func (m *Manager) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	names, err := m.ListSnapshots()
	if err != nil {
		return 0, err
	}
	if len(names) <= keep {
		return 0, nil
	}

	removed := 0
	for _, name := range names[:len(names)-keep] {
		if err := os.RemoveAll(filepath.Join(m.backupDir, name)); err != nil {
			return removed, fmt.Errorf("remove snapshot %s: %w", name, err)
		}
		m.logger.Info("snapshot pruned", zap.String("snapshot", name))
		removed++
	}
	return removed, nil
}

// FormatSize renders a byte count in human units.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
