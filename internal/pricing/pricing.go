// Package pricing holds the money arithmetic of the basket. All amounts are
// decimals rounded to two places, half away from zero.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/yume/internal/domain"
	"github.com/shopspring/decimal"
)

// Places is the number of decimal places every stored amount is rounded to.
const Places = 2

var ErrInvalidPrice = errors.New("price must be a non-negative decimal")

// ParsePrice parses a catalog price. Empty, malformed and negative values are
// rejected with ErrInvalidPrice.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrInvalidPrice)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	return d, nil
}

// Round rounds d to Places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// ExtraTotal is unit price × quantity, unrounded.
func ExtraTotal(e domain.ExtraOption) decimal.Decimal {
	return e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// LineTotal is base + Σ(unit price × quantity), rounded.
func LineTotal(base decimal.Decimal, extras []domain.ExtraOption) decimal.Decimal {
	total := base
	for _, e := range extras {
		total = total.Add(ExtraTotal(e))
	}
	return Round(total)
}

// Sum adds the totals of items, rounded.
func Sum(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return Round(total)
}

// Format renders d with exactly two decimals, e.g. "17.99".
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}
