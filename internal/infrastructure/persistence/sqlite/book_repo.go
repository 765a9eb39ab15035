package sqlite

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/xiebiao/livraria/internal/domain/book"
	apperrors "github.com/xiebiao/livraria/pkg/errors"
)

// bookRepository is the SQLite implementation of book.Repository.
// Design notes:
// 1. Converts between the domain entity and BookModel
// 2. Every method is one statement on its own connection (see DB.withConn)
// 3. Store failures surface as ErrCodeDatabaseError; absence is a found/changed flag
type bookRepository struct {
	db *DB
}

// NewBookRepository creates the book repository.
func NewBookRepository(db *DB) book.Repository {
	return &bookRepository{db: db}
}

// Create inserts the book and back-fills its id.
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	// 1. entity → model
	model := toBookModel(b)

	// 2. insert
	err := r.db.withConn(ctx, func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		return storageError(err, "insert book")
	}

	// 3. back-fill the generated id
	b.ID = model.ID
	return nil
}

// FindByID looks a book up by id.
func (r *bookRepository) FindByID(ctx context.Context, id int64) (*book.Book, bool, error) {
	var model BookModel
	err := r.db.withConn(ctx, func(tx *gorm.DB) error {
		return tx.First(&model, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, storageError(err, "query book")
	}
	return toBookEntity(&model), true, nil
}

// List returns the whole catalog ordered by title.
func (r *bookRepository) List(ctx context.Context) ([]*book.Book, error) {
	models, err := r.listModels(ctx)
	if err != nil {
		return nil, err
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// FindByAuthor returns books whose author contains the search text, ignoring case.
// Matching runs in Go with Unicode case folding: SQLite's LOWER and LIKE only fold
// ASCII, so "JOSÉ" would miss "José", and LIKE would treat % and _ in the search
// text as wildcards.
func (r *bookRepository) FindByAuthor(ctx context.Context, author string) ([]*book.Book, error) {
	models, err := r.listModels(ctx)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	needle := fold.String(author)

	books := make([]*book.Book, 0)
	for i := range models {
		if strings.Contains(fold.String(models[i].Author), needle) {
			books = append(books, toBookEntity(&models[i]))
		}
	}
	return books, nil
}

// UpdatePrice sets the price and reports whether the id existed.
func (r *bookRepository) UpdatePrice(ctx context.Context, id int64, price book.Money) (bool, error) {
	var affected int64
	err := r.db.withConn(ctx, func(tx *gorm.DB) error {
		result := tx.Model(&BookModel{}).Where("id = ?", id).Update("price", int64(price))
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return false, storageError(err, "update book price")
	}
	return affected > 0, nil
}

// Delete removes the row (physical delete) and reports whether the id existed.
func (r *bookRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var affected int64
	err := r.db.withConn(ctx, func(tx *gorm.DB) error {
		result := tx.Delete(&BookModel{}, id)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return false, storageError(err, "delete book")
	}
	return affected > 0, nil
}

func (r *bookRepository) listModels(ctx context.Context) ([]BookModel, error) {
	var models []BookModel
	err := r.db.withConn(ctx, func(tx *gorm.DB) error {
		return tx.Order("title ASC").Order("id ASC").Find(&models).Error
	})
	if err != nil {
		return nil, storageError(err, "list books")
	}
	return models, nil
}

// =========================================
// Helpers: model conversion
// =========================================

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		PublicationYear: b.PublicationYear,
		Price:           int64(b.Price),
	}
}

func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:              model.ID,
		Title:           model.Title,
		Author:          model.Author,
		PublicationYear: model.PublicationYear,
		Price:           book.Money(model.Price),
	}
}

// storageError keeps database errors already coded by withConn (e.g. a failed
// open) and codes the rest.
func storageError(err error, message string) error {
	if errors.Is(err, apperrors.ErrDatabaseError) {
		return err
	}
	return apperrors.WrapWithCode(apperrors.ErrCodeDatabaseError, err, message)
}
