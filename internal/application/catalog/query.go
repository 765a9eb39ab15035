package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/xiebiao/livraria/internal/domain/book"
	"github.com/xiebiao/livraria/internal/infrastructure/files"
)

// ListBooks returns the catalog ordered by title.
func (c *Catalog) ListBooks(ctx context.Context) (books []*book.Book, err error) {
	start := time.Now()
	defer func() { c.metrics.Observe("list_books", start, err) }()

	return c.repo.List(ctx)
}

// GetBook looks a book up; found is false when the id does not exist.
func (c *Catalog) GetBook(ctx context.Context, id int64) (*book.Book, bool, error) {
	return c.repo.FindByID(ctx, id)
}

// SearchByAuthor returns books whose author contains text, ignoring case.
// Blank text is rejected before the store is queried.
func (c *Catalog) SearchByAuthor(ctx context.Context, text string) (books []*book.Book, err error) {
	start := time.Now()
	defer func() { c.metrics.Observe("search_author", start, err) }()

	needle := strings.TrimSpace(text)
	if needle == "" {
		return nil, book.ErrEmptySearch
	}
	return c.repo.FindByAuthor(ctx, needle)
}

// ListBackups returns the existing backups, newest first.
func (c *Catalog) ListBackups(ctx context.Context) ([]files.BackupInfo, error) {
	return c.files.ListBackups()
}

// ListExports returns the CSV files available for import.
func (c *Catalog) ListExports(ctx context.Context) ([]string, error) {
	return c.files.ListExports()
}

// Backup takes a manual backup. Unlike the automatic one, failures are returned.
func (c *Catalog) Backup(ctx context.Context) (path string, err error) {
	start := time.Now()
	defer func() { c.metrics.Observe("backup", start, err) }()

	path, err = c.files.CreateBackup()
	c.metrics.Backup(err)
	if err != nil {
		return "", err
	}

	c.log.Info().Str("backup", path).Msg("manual backup created")
	return path, nil
}
