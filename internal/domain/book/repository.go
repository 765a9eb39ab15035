package book

import (
	"context"
)

// Repository is the book storage port.
// Design notes:
// 1. Defined by the domain layer, implemented in infrastructure/persistence/sqlite
// 2. Lookups report absence through the found flag; err is reserved for store failures
// 3. Implementations do not re-validate; callers pass values from the Validate* functions
type Repository interface {
	// Create inserts the book and back-fills its ID. Duplicates are allowed.
	Create(ctx context.Context, book *Book) error

	// FindByID returns found=false when no row has the id.
	FindByID(ctx context.Context, id int64) (book *Book, found bool, err error)

	// List returns every book ordered by title.
	List(ctx context.Context) ([]*Book, error)

	// FindByAuthor matches a case-insensitive substring of the author, ordered by title.
	FindByAuthor(ctx context.Context, author string) ([]*Book, error)

	// UpdatePrice reports whether a row was changed.
	UpdatePrice(ctx context.Context, id int64, price Money) (bool, error)

	// Delete reports whether a row was removed. Deletion is physical.
	Delete(ctx context.Context, id int64) (bool, error)
}
