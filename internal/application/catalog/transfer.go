package catalog

import (
	"context"
	"time"

	"github.com/xiebiao/livraria/internal/domain/book"
	"github.com/xiebiao/livraria/internal/infrastructure/files"
	"github.com/xiebiao/livraria/pkg/metrics"
)

// ExportResult reports a CSV export.
type ExportResult struct {
	Path  string
	Count int
}

// ExportCSV writes the whole catalog, ordered by title, to exports/<filename>.
// A blank filename selects the default export file.
func (c *Catalog) ExportCSV(ctx context.Context, filename string) (res *ExportResult, err error) {
	start := time.Now()
	defer func() { c.metrics.Observe("export_csv", start, err) }()

	books, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	path, err := c.files.ExportCSV(books, filename)
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("file", path).Int("rows", len(books)).Msg("catalog exported")
	return &ExportResult{Path: path, Count: len(books)}, nil
}

// ImportConfirmFunc is shown the parsed rows before anything is written.
type ImportConfirmFunc func(rows []files.Row) bool

// RowFailure describes a row that was not imported.
type RowFailure struct {
	Line  int
	Title string
	Err   error
}

// ImportReport aggregates an import (or seed) batch.
type ImportReport struct {
	File      string
	Rows      int
	Imported  int
	Failed    int
	Failures  []RowFailure
	Books     []*book.Book // stored books, in file order
	Cancelled bool
	Backup    Backup
}

// ImportCSV loads books from exports/<filename>.
// 1. parse the file (file-level problems abort; an empty file ends here without a backup)
// 2. confirm(rows); a nil confirm counts as yes
// 3. one backup for the batch
// 4. each row is validated and inserted on its own; a failed row is recorded and skipped
func (c *Catalog) ImportCSV(ctx context.Context, filename string, confirm ImportConfirmFunc) (report *ImportReport, err error) {
	start := time.Now()
	cancelled := false
	defer func() {
		if cancelled {
			c.metrics.ObserveResult("import_csv", metrics.ResultCancelled, start)
			return
		}
		c.metrics.Observe("import_csv", start, err)
	}()

	// 1. parse
	name, err := files.CSVName(filename, "")
	if err != nil {
		return nil, err
	}
	rows, err := c.files.ImportCSV(name)
	if err != nil {
		return nil, err
	}

	report = &ImportReport{File: name, Rows: len(rows)}
	if len(rows) == 0 {
		return report, nil
	}

	// 2. confirmation
	if confirm != nil && !confirm(rows) {
		cancelled = true
		report.Cancelled = true
		return report, nil
	}

	// 3. backup
	report.Backup = c.autoBackup(ctx, "import_csv")

	// 4. rows
	c.insertRows(ctx, rows, report)
	c.metrics.ImportRows(report.Imported, report.Failed)

	c.log.Info().
		Str("file", name).
		Int("imported", report.Imported).
		Int("failed", report.Failed).
		Msg("CSV import finished")
	return report, nil
}

// insertRows validates and stores each row, recording outcomes in report.
func (c *Catalog) insertRows(ctx context.Context, rows []files.Row, report *ImportReport) {
	for _, row := range rows {
		b, err := c.insertRow(ctx, row)
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, RowFailure{Line: row.Line, Title: row.Title, Err: err})
			c.log.Debug().Err(err).Int("line", row.Line).Msg("row skipped")
			continue
		}
		report.Imported++
		report.Books = append(report.Books, b)
	}
}

func (c *Catalog) insertRow(ctx context.Context, row files.Row) (*book.Book, error) {
	if row.Err != nil {
		return nil, row.Err
	}

	title, err := book.ValidateTitle(row.Title)
	if err != nil {
		return nil, err
	}
	author, err := book.ValidateAuthor(row.Author)
	if err != nil {
		return nil, err
	}
	if err := book.CheckYear(row.Year); err != nil {
		return nil, err
	}
	if err := book.CheckPrice(row.Price); err != nil {
		return nil, err
	}

	b := book.NewBook(title, author, row.Year, row.Price)
	if err := c.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
