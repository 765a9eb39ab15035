// Package catalog orchestrates the bookstore workflows: validation first, a
// best-effort backup before every mutation, then the store operation.
package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xiebiao/livraria/internal/domain/book"
	"github.com/xiebiao/livraria/internal/infrastructure/files"
	apperrors "github.com/xiebiao/livraria/pkg/errors"
	"github.com/xiebiao/livraria/pkg/metrics"
)

// FileStore is the file side of the catalog: backups and CSV exchange.
// *files.Manager implements it.
type FileStore interface {
	CreateBackup() (string, error)
	ListBackups() ([]files.BackupInfo, error)
	ExportCSV(books []*book.Book, filename string) (string, error)
	ImportCSV(filename string) ([]files.Row, error)
	ListExports() ([]string, error)
}

// Catalog composes the validator, the book store and the file manager.
// Design notes:
// 1. Every mutating workflow (add, price update, remove, import, seed) takes a
//    backup right before writing; a failed backup becomes Backup.Warning and the
//    write still happens
// 2. Backup and write are separate steps, not one atomic unit
// 3. Workflows record a metrics outcome and log mutations with structured fields
type Catalog struct {
	repo    book.Repository
	files   FileStore
	metrics *metrics.Recorder
	log     zerolog.Logger
}

// New creates the catalog.
func New(repo book.Repository, fileStore FileStore, rec *metrics.Recorder, log zerolog.Logger) *Catalog {
	return &Catalog{
		repo:    repo,
		files:   fileStore,
		metrics: rec,
		log:     log.With().Str("component", "catalog").Logger(),
	}
}

// Backup is the outcome of the automatic backup taken before a mutation.
// Exactly one of Path and Warning is set.
type Backup struct {
	Path    string
	Warning error
}

// autoBackup takes the pre-mutation backup; failures never stop the caller.
func (c *Catalog) autoBackup(ctx context.Context, workflow string) Backup {
	path, err := c.files.CreateBackup()
	c.metrics.Backup(err)

	if err != nil {
		warning := apperrors.WrapWithCode(apperrors.ErrCodeBackupFailed, err, "automatic backup failed")
		c.log.Warn().Err(err).Str("workflow", workflow).Msg("automatic backup failed, continuing")
		return Backup{Warning: warning}
	}

	c.log.Info().Str("workflow", workflow).Str("backup", path).Msg("automatic backup created")
	return Backup{Path: path}
}

// findExisting loads a book or returns book.ErrBookNotFound.
func (c *Catalog) findExisting(ctx context.Context, id int64) (*book.Book, error) {
	b, found, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, book.ErrBookNotFound
	}
	return b, nil
}
