package catalog

import (
	"context"
	"time"

	"github.com/xiebiao/livraria/internal/domain/book"
	"github.com/xiebiao/livraria/pkg/metrics"
)

// ConfirmFunc asks whether the shown book should really be removed.
type ConfirmFunc func(b *book.Book) bool

// RemoveBookResult reports a removal. Cancelled is set when the confirmation
// was declined; nothing was backed up or deleted then.
type RemoveBookResult struct {
	Book      *book.Book
	Cancelled bool
	Backup    Backup
}

// RemoveBook deletes a book after confirmation.
// 1. the book must exist
// 2. confirm(book); a nil confirm counts as yes
// 3. backup, then delete
func (c *Catalog) RemoveBook(ctx context.Context, id int64, confirm ConfirmFunc) (res *RemoveBookResult, err error) {
	start := time.Now()
	cancelled := false
	defer func() {
		if cancelled {
			c.metrics.ObserveResult("remove_book", metrics.ResultCancelled, start)
			return
		}
		c.metrics.Observe("remove_book", start, err)
	}()

	// 1. lookup
	b, err := c.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	// 2. confirmation
	if confirm != nil && !confirm(b) {
		cancelled = true
		c.log.Debug().Int64("book_id", id).Msg("removal cancelled")
		return &RemoveBookResult{Book: b, Cancelled: true}, nil
	}

	// 3. backup + delete
	backup := c.autoBackup(ctx, "remove_book")
	removed, err := c.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if !removed {
		err = book.ErrBookNotFound
		return nil, err
	}

	c.log.Info().Int64("book_id", id).Str("title", b.Title).Msg("book removed")
	return &RemoveBookResult{Book: b, Backup: backup}, nil
}
