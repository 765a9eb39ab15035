package book

import (
	apperrors "github.com/xiebiao/livraria/pkg/errors"
)

// Book domain errors
var (
	// ErrBookNotFound no book with the requested id
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "book not found")

	// ErrInvalidPrice price outside [0, 999999.99]
	ErrInvalidPrice = apperrors.Invalid("price", "price must be between 0 and 999999.99")

	// ErrEmptySearch author search text is blank
	ErrEmptySearch = apperrors.Invalid("author", "author search text must not be empty")
)
