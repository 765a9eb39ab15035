package book

// Book is the catalog entity and the only aggregate in the system.
// Design notes:
// 1. ID is assigned by the store on creation and never reused after deletion
// 2. Price is held in cents (Money) so it always has two decimal places
// 3. Title, author and year are immutable after creation; only the price changes
// 4. The entity carries no persistence tags; the sqlite package maps it to its model
type Book struct {
	ID              int64
	Title           string
	Author          string
	PublicationYear int
	Price           Money
}

// NewBook builds an unsaved book from already validated values.
// Callers obtain the values from the Validate* functions.
func NewBook(title, author string, year int, price Money) *Book {
	return &Book{
		Title:           title,
		Author:          author,
		PublicationYear: year,
		Price:           price,
	}
}

// UpdatePrice changes the price (domain behaviour).
// Rule: price must be within [0, MaxPrice].
func (b *Book) UpdatePrice(newPrice Money) error {
	if newPrice < 0 || newPrice > MaxPrice {
		return ErrInvalidPrice
	}
	b.Price = newPrice
	return nil
}
