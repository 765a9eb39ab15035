package files

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	apperrors "github.com/xiebiao/livraria/pkg/errors"
)

// BackupInfo describes one backup file.
type BackupInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// CreateBackup copies the live database to backups/<prefix><timestamp>.db and
// prunes old backups down to the retention count.
// 1. the live file must exist (ErrCodeFileNotFound otherwise)
// 2. the copy's mtime is set to the backup time so retention follows the clock
// 3. pruning failures are logged; the new backup is still returned
func (m *Manager) CreateBackup() (string, error) {
	src, err := os.Open(m.dataFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperrors.WrapWithCode(apperrors.ErrCodeFileNotFound, err, "database file not found for backup")
		}
		return "", apperrors.WrapWithCode(apperrors.ErrCodeFileError, err, "open database file")
	}
	defer src.Close()

	now := m.now()
	path := filepath.Join(m.backupsDir, m.prefix+now.Format(backupTimeLayout)+".db")

	if err := copyTo(path, src); err != nil {
		return "", apperrors.WrapWithCode(apperrors.ErrCodeFileError, err, "write backup")
	}
	if err := os.Chtimes(path, now, now); err != nil {
		return "", apperrors.WrapWithCode(apperrors.ErrCodeFileError, err, "stamp backup")
	}

	m.log.Debug().Str("backup", path).Msg("backup created")
	m.prune()
	return path, nil
}

// ListBackups returns the backups newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	matches, err := filepath.Glob(filepath.Join(m.backupsDir, m.prefix+"*.db"))
	if err != nil {
		return nil, apperrors.WrapWithCode(apperrors.ErrCodeFileError, err, "list backups")
	}

	backups := make([]BackupInfo, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		backups = append(backups, BackupInfo{
			Name:    info.Name(),
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	// newest mtime first; equal mtimes fall back to the later timestamped name
	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].ModTime.After(backups[j].ModTime)
		}
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// prune keeps the newest m.retention backups.
func (m *Manager) prune() {
	backups, err := m.ListBackups()
	if err != nil {
		m.log.Warn().Err(err).Msg("list backups for pruning")
		return
	}
	if len(backups) <= m.retention {
		return
	}

	for _, old := range backups[m.retention:] {
		if err := os.Remove(old.Path); err != nil {
			m.log.Warn().Err(err).Str("backup", old.Name).Msg("remove old backup")
			continue
		}
		m.log.Info().Str("backup", old.Name).Msg("old backup removed")
	}
}

// copyTo writes src to path, removing the partial file on failure.
func copyTo(path string, src io.Reader) (err error) {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err = io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Sync()
}
