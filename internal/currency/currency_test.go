package currency

import (
	"testing"

	"github.com/adeshpande/finbook/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestConvertToBase(t *testing.T) {
	rate := decimal.NewFromInt(105)

	t.Run("base currency is identity", func(t *testing.T) {
		got, err := ConvertToBase(decimal.RequireFromString("42.50"), "EUR", rate)
		require.NoError(t, err)
		require.True(t, got.Equal(decimal.RequireFromString("42.50")))
	})

	t.Run("secondary currency divides by rate", func(t *testing.T) {
		got, err := ConvertToBase(decimal.NewFromInt(1000), "INR", rate)
		require.NoError(t, err)

		// Scenario: 1000 INR at 105 stores roughly 9.52 EUR.
		require.Equal(t, "9.52", got.Round(2).String())
	})

	t.Run("normalizes currency code", func(t *testing.T) {
		got, err := ConvertToBase(decimal.NewFromInt(210), " inr ", rate)
		require.NoError(t, err)
		require.True(t, got.Equal(decimal.NewFromInt(2)))
	})

	t.Run("rejects non-positive rate", func(t *testing.T) {
		_, err := ConvertToBase(decimal.NewFromInt(10), "INR", decimal.Zero)
		require.ErrorIs(t, err, models.ErrInvalidRate)

		_, err = ConvertToBase(decimal.NewFromInt(10), "INR", decimal.NewFromInt(-5))
		require.ErrorIs(t, err, models.ErrInvalidRate)
	})

	t.Run("rejects unknown currency", func(t *testing.T) {
		_, err := ConvertToBase(decimal.NewFromInt(10), "USD", rate)
		require.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestConvertToSecondary(t *testing.T) {
	got, err := ConvertToSecondary(decimal.RequireFromString("9.52"), decimal.NewFromInt(105))
	require.NoError(t, err)
	require.Equal(t, "999.60", got.Round(2).String())

	_, err = ConvertToSecondary(decimal.NewFromInt(1), decimal.Zero)
	require.ErrorIs(t, err, models.ErrInvalidRate)
}

// Round-trip: converting a secondary-currency entry to base and back must
// reproduce the typed value within tolerance.
func TestConversionRoundTrip(t *testing.T) {
	tolerance := decimal.New(1, -9)

	rapid.Check(t, func(t *rapid.T) {
		cents := rapid.Int64Range(1, 10_000_000_00).Draw(t, "cents")
		rateCents := rapid.Int64Range(1, 100_000).Draw(t, "rateCents")

		amount := decimal.New(cents, -2)
		rate := decimal.New(rateCents, -2)

		base, err := ConvertToBase(amount, models.SecondaryCurrency, rate)
		require.NoError(t, err)

		back, err := ConvertToSecondary(base, rate)
		require.NoError(t, err)

		diff := back.Sub(amount).Abs()
		require.True(t, diff.LessThanOrEqual(tolerance),
			"round trip drifted: %s -> %s -> %s", amount, base, back)
	})
}

func TestParseAmount(t *testing.T) {
	require.True(t, ParseAmount("12.34").Equal(decimal.RequireFromString("12.34")))
	require.True(t, ParseAmount(" 7 ").Equal(decimal.NewFromInt(7)))

	// Blank or garbage entry-field input means "no amount".
	require.True(t, ParseAmount("").IsZero())
	require.True(t, ParseAmount("abc").IsZero())
	require.True(t, ParseAmount("12,34").IsZero())
}

func TestFormatForDisplay(t *testing.T) {
	rate := decimal.NewFromInt(105)

	t.Run("secondary display converts and groups", func(t *testing.T) {
		got, err := FormatForDisplay(decimal.NewFromInt(100), "INR", rate)
		require.NoError(t, err)
		require.Equal(t, "₹10,500.00", got)
	})

	t.Run("base display", func(t *testing.T) {
		got, err := FormatForDisplay(decimal.RequireFromString("1234567.891"), "EUR", rate)
		require.NoError(t, err)
		require.Equal(t, "€1,234,567.89", got)
	})

	t.Run("absolute value, sign left to callers", func(t *testing.T) {
		got, err := FormatForDisplay(decimal.RequireFromString("-42.5"), "EUR", rate)
		require.NoError(t, err)
		require.Equal(t, "€42.50", got)
	})

	t.Run("zero always formats", func(t *testing.T) {
		got, err := FormatForDisplay(decimal.Zero, "INR", decimal.Zero)
		require.NoError(t, err)
		require.Equal(t, "₹0.00", got)

		got, err = FormatForDisplay(decimal.Zero, "XXX", decimal.NewFromInt(-1))
		require.NoError(t, err)
		require.Equal(t, "XXX0.00", got)
	})

	t.Run("invalid rate fails for nonzero amounts", func(t *testing.T) {
		_, err := FormatForDisplay(decimal.NewFromInt(5), "INR", decimal.Zero)
		require.ErrorIs(t, err, models.ErrInvalidRate)
	})

	t.Run("unknown display currency fails", func(t *testing.T) {
		_, err := FormatForDisplay(decimal.NewFromInt(5), "USD", rate)
		require.ErrorIs(t, err, models.ErrValidation)
	})
}

// Entering an amount in the secondary currency stores the base equivalent,
// and switching display back to secondary shows the typed value again
// rather than double-converting.
func TestSecondaryEntryDisplayRoundTrip(t *testing.T) {
	rate := decimal.NewFromInt(105)

	stored, err := ConvertToBase(decimal.NewFromInt(1000), "INR", rate)
	require.NoError(t, err)
	require.Equal(t, "9.52", stored.Round(2).String())

	display, err := FormatForDisplay(stored, "INR", rate)
	require.NoError(t, err)
	require.Equal(t, "₹1,000.00", display)
}

func TestGroupThousands(t *testing.T) {
	cases := map[string]string{
		"0.00":        "0.00",
		"999.99":      "999.99",
		"1000.00":     "1,000.00",
		"10500.00":    "10,500.00",
		"123456.78":   "123,456.78",
		"1234567.89":  "1,234,567.89",
		"12345678.90": "12,345,678.90",
	}
	for in, want := range cases {
		require.Equal(t, want, groupThousands(in), "input %s", in)
	}
}
