package catalog

import (
	"context"
	"time"

	"github.com/xiebiao/livraria/internal/domain/book"
)

// AddBookRequest carries the raw user input.
type AddBookRequest struct {
	Title  string
	Author string
	Year   string
	Price  string
}

// AddBookResult is the stored book and its pre-insert backup.
type AddBookResult struct {
	Book   *book.Book
	Backup Backup
}

// AddBook validates and stores a new book.
// 1. validate title, author, year, price (any failure: no backup, no write)
// 2. backup
// 3. insert; the returned book carries its new id
func (c *Catalog) AddBook(ctx context.Context, req AddBookRequest) (res *AddBookResult, err error) {
	start := time.Now()
	defer func() { c.metrics.Observe("add_book", start, err) }()

	// 1. validation
	title, err := book.ValidateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	author, err := book.ValidateAuthor(req.Author)
	if err != nil {
		return nil, err
	}
	year, err := book.ValidateYear(req.Year)
	if err != nil {
		return nil, err
	}
	price, err := book.ValidatePrice(req.Price)
	if err != nil {
		return nil, err
	}

	// 2. backup
	b := book.NewBook(title, author, year, price)
	backup := c.autoBackup(ctx, "add_book")

	// 3. insert
	if err = c.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	c.log.Info().Int64("book_id", b.ID).Str("title", b.Title).Msg("book added")
	return &AddBookResult{Book: b, Backup: backup}, nil
}
