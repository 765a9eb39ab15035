// Package files manages the catalog's directory layout on disk: the live data
// file under data/, rotating backups under backups/ and CSV exchange files
// under exports/.
package files

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/xiebiao/livraria/internal/infrastructure/config"
	apperrors "github.com/xiebiao/livraria/pkg/errors"
)

// backupTimeLayout renders backup timestamps as YYYY-MM-DD_HH-MM-SS.
const backupTimeLayout = "2006-01-02_15-04-05"

// Manager owns the data, backups and exports directories under one base directory.
// Design notes:
// 1. Directories are created on construction; creating them again is harmless
// 2. It never opens the database, it only copies the file
// 3. The clock is injectable so backup names and retention order are testable
type Manager struct {
	dataFile   string
	backupsDir string
	exportsDir string

	prefix     string
	retention  int
	defaultCSV string
	headers    []string

	now func() time.Time
	log zerolog.Logger
}

// NewManager creates the manager and its directories.
func NewManager(cfg *config.Config, log zerolog.Logger) (*Manager, error) {
	return newManager(cfg, log, time.Now)
}

func newManager(cfg *config.Config, log zerolog.Logger, now func() time.Time) (*Manager, error) {
	m := &Manager{
		dataFile:   cfg.DataFile(),
		backupsDir: cfg.BackupsDir(),
		exportsDir: cfg.ExportsDir(),
		prefix:     cfg.Backup.Prefix,
		retention:  cfg.Backup.Retention,
		defaultCSV: cfg.CSV.DefaultFile,
		headers:    cfg.CSV.Headers,
		now:        now,
		log:        log.With().Str("component", "files").Logger(),
	}

	for _, dir := range []string{cfg.DataDir(), m.backupsDir, m.exportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.WrapWithCode(apperrors.ErrCodeFileError, err, "create directory "+dir)
		}
	}
	return m, nil
}

// DataFile returns the live database path.
func (m *Manager) DataFile() string { return m.dataFile }

// BackupsDir returns the backups directory.
func (m *Manager) BackupsDir() string { return m.backupsDir }

// ExportsDir returns the exports directory.
func (m *Manager) ExportsDir() string { return m.exportsDir }

// CSVName normalizes a user supplied CSV name: blank selects fallback, a missing
// ".csv" suffix is appended and anything that is not a bare file name is rejected.
func CSVName(name, fallback string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}
	if name == "" {
		return "", apperrors.Invalid("file", "file name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || filepath.Base(name) != name {
		return "", apperrors.Invalid("file", "file name must not contain a directory: "+name)
	}
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		name += ".csv"
	}
	return name, nil
}
