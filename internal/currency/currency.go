// Package currency implements amount normalization to the base currency
// and display-time conversion and formatting.
//
// Every persisted amount is in the base currency. Conversion from the
// entry currency happens exactly once, at entry time; display conversion
// is derived from the stored base amount and the current rate, never from
// the originally typed value.
package currency

import (
	"fmt"
	"strings"

	"github.com/adeshpande/finbook/internal/models"
	"github.com/shopspring/decimal"
)

// Normalize returns the canonical upper-case currency code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Supported reports whether code is one of the fixed currency set.
func Supported(code string) bool {
	_, ok := models.CurrencySymbols[Normalize(code)]
	return ok
}

// Symbol returns the display symbol for a currency code, falling back to
// the code itself for unknown currencies.
func Symbol(code string) string {
	if symbol, ok := models.CurrencySymbols[Normalize(code)]; ok {
		return symbol
	}
	return Normalize(code)
}

// ParseAmount parses user-typed amount text. Blank or non-numeric input
// yields zero: an empty entry field means "no amount". Programmatic
// callers that need strict parsing use decimal.NewFromString directly.
func ParseAmount(s string) decimal.Decimal {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// ConvertToBase converts an amount entered in sourceCurrency to the base
// currency. rate is secondary-currency units per one base unit.
func ConvertToBase(amount decimal.Decimal, sourceCurrency string, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate %s: %w", rate, models.ErrInvalidRate)
	}
	switch Normalize(sourceCurrency) {
	case models.BaseCurrency:
		return amount, nil
	case models.SecondaryCurrency:
		return amount.Div(rate), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported currency %q: %w", sourceCurrency, models.ErrValidation)
	}
}

// ConvertToSecondary converts a base-currency amount to the secondary
// currency at the given rate.
func ConvertToSecondary(baseAmount decimal.Decimal, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate %s: %w", rate, models.ErrInvalidRate)
	}
	return baseAmount.Mul(rate), nil
}

// FormatForDisplay renders a stored base-currency amount in the display
// currency: symbol, absolute value, thousands separators, two decimal
// places. Sign is handled by callers that need it. A zero amount always
// formats, whatever the currency or rate.
func FormatForDisplay(baseAmount decimal.Decimal, displayCurrency string, rate decimal.Decimal) (string, error) {
	code := Normalize(displayCurrency)
	if baseAmount.IsZero() {
		return Symbol(code) + "0.00", nil
	}

	var value decimal.Decimal
	switch code {
	case models.BaseCurrency:
		value = baseAmount
	case models.SecondaryCurrency:
		converted, err := ConvertToSecondary(baseAmount, rate)
		if err != nil {
			return "", err
		}
		value = converted
	default:
		return "", fmt.Errorf("unsupported display currency %q: %w", displayCurrency, models.ErrValidation)
	}

	return Symbol(code) + groupThousands(value.Abs().StringFixed(2)), nil
}

// groupThousands inserts comma separators into the integer part of a
// fixed-point decimal string.
func groupThousands(fixed string) string {
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	if len(intPart) <= 3 {
		return intPart + "." + fracPart
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + "." + fracPart
}
