package book

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/xiebiao/livraria/pkg/errors"
)

// Money is a price in cents.
// Stored as an integer so every persisted price has exactly two decimal places.
type Money int64

// MaxPrice is the highest accepted price (999999.99).
const MaxPrice Money = 99999999

// MoneyFromFloat rounds a float amount to the nearest cent.
func MoneyFromFloat(v float64) Money {
	return Money(math.Round(v * 100))
}

// Float64 returns the amount in currency units.
func (m Money) Float64() float64 {
	return float64(m) / 100
}

// String renders the amount with a dot separator, e.g. "29.90".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// parseAmount parses a decimal amount written with either "." or "," as the
// decimal separator. Range rules live in ValidatePrice.
func parseAmount(text string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.Invalid("price", fmt.Sprintf("price must be a valid number (e.g. 29.90 or 29,90), got %q", text))
	}
	return v, nil
}
