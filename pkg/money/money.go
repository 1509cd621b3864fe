// Package money holds prices as integer cents so line totals and order
// totals are computed with the same exact arithmetic.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is an amount of US currency in minor units.
type Cents int64

// ErrOverflow reports an amount that does not fit in Cents.
var ErrOverflow = errors.New("amount out of range")

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// FromDecimal converts a decimal dollar amount to cents, rounding half away
// from zero. Amounts outside the int64 range return ErrOverflow.
func FromDecimal(d decimal.Decimal) (Cents, error) {
	scaled := d.Mul(hundred).Round(0)
	if scaled.GreaterThan(maxCents) || scaled.LessThan(minCents) {
		return 0, fmt.Errorf("%s dollars: %w", d.String(), ErrOverflow)
	}
	return Cents(scaled.IntPart()), nil
}

// Parse reads a dollar amount such as "12.50" or "8".
func Parse(value string) (Cents, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", value)
	}
	return FromDecimal(d)
}

// Times multiplies a unit price by a quantity.
func (c Cents) Times(qty int) (Cents, error) {
	q := Cents(qty)
	if c == 0 || q == 0 {
		return 0, nil
	}
	product := c * q
	if product/q != c || (c == -1 && q == math.MinInt64) || (q == -1 && c == math.MinInt64) {
		return 0, fmt.Errorf("%s x %d: %w", c, qty, ErrOverflow)
	}
	return product, nil
}

// Decimal renders the amount in dollars.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String renders the amount as a fixed two-place dollar string.
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Sum adds amounts, failing with ErrOverflow instead of wrapping.
func Sum(amounts ...Cents) (Cents, error) {
	var total Cents
	for _, amount := range amounts {
		if (amount > 0 && total > math.MaxInt64-amount) || (amount < 0 && total < math.MinInt64-amount) {
			return 0, ErrOverflow
		}
		total += amount
	}
	return total, nil
}
