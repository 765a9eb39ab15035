package book

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/xiebiao/livraria/pkg/errors"
)

// Field limits.
const (
	MaxTitleLength  = 200
	MaxAuthorLength = 100
	MinYear         = 1000
	maxPriceAmount  = 999999.99
)

// =========================================
// Input validation
// =========================================
// Every value reaching the repository passes through these functions first;
// the storage layer performs no re-validation.

// ValidateTitle trims the title and checks it is non-empty and at most 200 characters.
func ValidateTitle(text string) (string, error) {
	return validateText("title", text, MaxTitleLength)
}

// ValidateAuthor trims the author and checks it is non-empty and at most 100 characters.
func ValidateAuthor(text string) (string, error) {
	return validateText("author", text, MaxAuthorLength)
}

// ValidateYear parses the publication year and checks it is within [1000, current year + 1].
func ValidateYear(text string) (int, error) {
	return validateYearAt(text, time.Now())
}

// ValidatePrice parses a price written with "." or "," and checks 0 <= price <= 999999.99.
// The result is rounded to cents.
func ValidatePrice(text string) (Money, error) {
	v, err := parseAmount(text)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, apperrors.Invalid("price", "price must not be negative")
	}
	if v > maxPriceAmount {
		return 0, apperrors.Invalid("price", "price must not exceed 999999.99")
	}
	return MoneyFromFloat(v), nil
}

// CheckYear applies the year range to an already parsed value (CSV rows).
func CheckYear(year int) error {
	return checkYearAt(year, time.Now())
}

// CheckPrice applies the price range to an amount already in cents (seed and CSV rows).
func CheckPrice(price Money) error {
	if price < 0 || price > MaxPrice {
		return ErrInvalidPrice
	}
	return nil
}

func validateText(field, text string, limit int) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", apperrors.Invalid(field, field+" must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > limit {
		return "", apperrors.Invalid(field, fmt.Sprintf("%s must not exceed %d characters", field, limit))
	}
	return trimmed, nil
}

func validateYearAt(text string, now time.Time) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, apperrors.Invalid("year", fmt.Sprintf("year must be a whole number, got %q", text))
	}
	if err := checkYearAt(year, now); err != nil {
		return 0, err
	}
	return year, nil
}

func checkYearAt(year int, now time.Time) error {
	maxYear := now.Year() + 1
	if year < MinYear || year > maxYear {
		return apperrors.Invalid("year", fmt.Sprintf("year must be between %d and %d", MinYear, maxYear))
	}
	return nil
}
