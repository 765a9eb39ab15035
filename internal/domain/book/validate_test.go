package book

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/livraria/pkg/errors"
)

func TestValidateTitle(t *testing.T) {
	t.Run("trims valid titles", func(t *testing.T) {
		for _, in := range []string{"Dom Casmurro", "  Memórias Póstumas de Brás Cubas  ", "\tIracema\n"} {
			got, err := ValidateTitle(in)
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(in), got)
		}
	})

	t.Run("rejects blank", func(t *testing.T) {
		for _, in := range []string{"", "   ", "\t\n"} {
			_, err := ValidateTitle(in)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, "title", apperrors.GetAppError(err).Field)
		}
	})

	t.Run("length limit counts characters", func(t *testing.T) {
		_, err := ValidateTitle(strings.Repeat("é", MaxTitleLength))
		assert.NoError(t, err)

		_, err = ValidateTitle(strings.Repeat("a", MaxTitleLength+1))
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestValidateAuthor(t *testing.T) {
	got, err := ValidateAuthor("  Machado de Assis ")
	require.NoError(t, err)
	assert.Equal(t, "Machado de Assis", got)

	_, err = ValidateAuthor(" ")
	assert.True(t, apperrors.IsValidation(err))

	_, err = ValidateAuthor(strings.Repeat("x", MaxAuthorLength))
	assert.NoError(t, err)

	_, err = ValidateAuthor(strings.Repeat("x", MaxAuthorLength+1))
	assert.True(t, apperrors.IsValidation(err))
}

func TestValidateYear(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"2024", 2024, false},
		{" 1899 ", 1899, false},
		{"1000", 1000, false},
		{"2026", 2026, false},
		{"abc", 0, true},
		{"999", 0, true},
		{"2027", 0, true},
		{"19.5", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := validateYearAt(tt.in, now)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateYear_CurrentClock(t *testing.T) {
	next := time.Now().Year() + 1

	_, err := ValidateYear(strconv.Itoa(next))
	assert.NoError(t, err)

	_, err = ValidateYear(strconv.Itoa(next + 1))
	assert.Error(t, err)

	_, err = ValidateYear("2024")
	assert.NoError(t, err)
}

func TestValidatePrice(t *testing.T) {
	t.Run("both decimal separators agree", func(t *testing.T) {
		dot, err := ValidatePrice("29.90")
		require.NoError(t, err)
		comma, err := ValidatePrice("29,90")
		require.NoError(t, err)

		assert.Equal(t, Money(2990), dot)
		assert.Equal(t, dot, comma)
		assert.InDelta(t, 29.90, comma.Float64(), 1e-9)
	})

	t.Run("rounds to cents", func(t *testing.T) {
		got, err := ValidatePrice("10.006")
		require.NoError(t, err)
		assert.Equal(t, "10.01", got.String())

		got, err = ValidatePrice(" 7 ")
		require.NoError(t, err)
		assert.Equal(t, "7.00", got.String())
	})

	t.Run("bounds", func(t *testing.T) {
		got, err := ValidatePrice("0")
		require.NoError(t, err)
		assert.Equal(t, Money(0), got)

		got, err = ValidatePrice("999999.99")
		require.NoError(t, err)
		assert.Equal(t, MaxPrice, got)

		for _, in := range []string{"-0.01", "1000000", "999999.999"} {
			_, err := ValidatePrice(in)
			assert.True(t, apperrors.IsValidation(err), in)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		for _, in := range []string{"abc", "", "NaN", "Inf", "1.234,56"} {
			_, err := ValidatePrice(in)
			assert.True(t, apperrors.IsValidation(err), in)
		}
	})
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "0.00", Money(0).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "35.00", Money(3500).String())
	assert.Equal(t, "-1.50", Money(-150).String())
}

func TestBook_UpdatePrice(t *testing.T) {
	b := NewBook("Dom Casmurro", "Machado de Assis", 1899, 2990)

	require.NoError(t, b.UpdatePrice(3500))
	assert.Equal(t, Money(3500), b.Price)

	assert.ErrorIs(t, b.UpdatePrice(-1), ErrInvalidPrice)
	assert.ErrorIs(t, b.UpdatePrice(MaxPrice+1), ErrInvalidPrice)
	assert.Equal(t, Money(3500), b.Price)
}
