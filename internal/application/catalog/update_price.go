package catalog

import (
	"context"
	"time"

	"github.com/xiebiao/livraria/internal/domain/book"
)

// UpdatePriceResult reports the price change.
type UpdatePriceResult struct {
	Book     *book.Book // with the new price
	OldPrice book.Money
	Backup   Backup
}

// UpdatePrice changes the price of an existing book.
// 1. the book must exist (no backup otherwise)
// 2. validate the new price
// 3. backup, then update
func (c *Catalog) UpdatePrice(ctx context.Context, id int64, rawPrice string) (res *UpdatePriceResult, err error) {
	start := time.Now()
	defer func() { c.metrics.Observe("update_price", start, err) }()

	// 1. lookup
	b, err := c.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	// 2. validation
	price, err := book.ValidatePrice(rawPrice)
	if err != nil {
		return nil, err
	}
	oldPrice := b.Price
	if err = b.UpdatePrice(price); err != nil {
		return nil, err
	}

	// 3. backup + update
	backup := c.autoBackup(ctx, "update_price")
	changed, err := c.repo.UpdatePrice(ctx, id, price)
	if err != nil {
		return nil, err
	}
	if !changed {
		// removed between lookup and update
		err = book.ErrBookNotFound
		return nil, err
	}

	c.log.Info().
		Int64("book_id", id).
		Str("old_price", oldPrice.String()).
		Str("new_price", price.String()).
		Msg("price updated")
	return &UpdatePriceResult{Book: b, OldPrice: oldPrice, Backup: backup}, nil
}
