package service

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/campusops/ccrm-api/pkg/backup"
	appErrors "github.com/campusops/ccrm-api/pkg/errors"
)

type snapshotManager interface {
	CreateSnapshot() (string, error)
	ListSnapshots() ([]string, error)
	Info(name string) (backup.SnapshotInfo, error)
	Prune(keep int) (int, error)
}

type dataSaver interface {
	SaveAll(ctx context.Context) (*SaveResult, error)
}

// BackupService saves the store to disk and snapshots the data directory.
type BackupService struct {
	manager   snapshotManager
	saver     dataSaver
	keepCount int
	logger    *zap.Logger
}

// NewBackupService constructs the backup coordinator. keepCount bounds how
// many snapshots survive a prune after each backup.
func NewBackupService(manager snapshotManager, saver dataSaver, keepCount int, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{manager: manager, saver: saver, keepCount: keepCount, logger: logger}
}

// Create saves current data to disk, snapshots it, then prunes old
// snapshots down to the configured retention.
func (s *BackupService) Create(ctx context.Context) (*backup.SnapshotInfo, error) {
	if _, err := s.saver.SaveAll(ctx); err != nil {
		return nil, err
	}

	path, err := s.manager.CreateSnapshot()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrIO.Code, appErrors.ErrIO.Status, "failed to create backup")
	}

	if s.keepCount > 0 {
		if pruned, err := s.manager.Prune(s.keepCount); err != nil {
			s.logger.Warn("failed to prune old backups", zap.Error(err))
		} else if pruned > 0 {
			s.logger.Info("old backups pruned", zap.Int("removed", pruned))
		}
	}

	info, err := s.manager.Info(filepath.Base(path))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrIO.Code, appErrors.ErrIO.Status, "failed to inspect backup")
	}
	return &info, nil
}

// List returns snapshot details, oldest first.
func (s *BackupService) List(ctx context.Context) ([]backup.SnapshotInfo, error) {
	names, err := s.manager.ListSnapshots()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrIO.Code, appErrors.ErrIO.Status, "failed to list backups")
	}

	infos := make([]backup.SnapshotInfo, 0, len(names))
	for _, name := range names {
		info, err := s.manager.Info(name)
		if err != nil {
			s.logger.Warn("failed to inspect backup", zap.String("snapshot", name), zap.Error(err))
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Get returns one snapshot's details.
func (s *BackupService) Get(ctx context.Context, name string) (*backup.SnapshotInfo, error) {
	info, err := s.manager.Info(name)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "backup not found")
	}
	return &info, nil
}

// Prune removes the oldest snapshots beyond keep and reports the count.
func (s *BackupService) Prune(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "keep must be positive")
	}
	pruned, err := s.manager.Prune(keep)
	if err != nil {
		return pruned, appErrors.Wrap(err, appErrors.ErrIO.Code, appErrors.ErrIO.Status, "failed to prune backups")
	}
	return pruned, nil
}
