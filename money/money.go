// Package money implements fixed-point currency arithmetic on integer minor units.
//
// All amounts are counts of paise. Arithmetic never passes through floating point;
// rounding is half-up on the minor unit. Conversion to and from the display form
// ("262.50") happens only at the boundary through Parse and String.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Currency is the ISO code of every Money value in this system.
const Currency = "INR"

// MinorDigits is the number of decimal places carried by the minor unit.
const MinorDigits = 2

var (
	ErrInvalidDivisor = errors.New("money: divisor must be at least 1")
	ErrNegativeAmount = errors.New("money: amount must not be negative")
	ErrOverflow       = errors.New("money: amount out of range")
)

// Money is an amount expressed in minor units.
type Money int64

// FromMinor wraps a raw minor-unit count.
func FromMinor(v int64) Money { return Money(v) }

// FromMajor converts a whole-rupee amount.
func FromMajor(v int64) Money { return Money(v * 100) }

// Minor returns the raw minor-unit count.
func (m Money) Minor() int64 { return int64(m) }

// Add returns a+b, or ErrOverflow when the sum does not fit in int64.
func Add(a, b Money) (Money, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// Sum adds all amounts.
func Sum(amounts ...Money) (Money, error) {
	var total Money
	for _, a := range amounts {
		var err error
		if total, err = Add(total, a); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Multiply scales an amount by an integer factor, e.g. a unit price by a quantity.
func Multiply(amount Money, factor int64) (Money, error) {
	a := int64(amount)
	if a == 0 || factor == 0 {
		return 0, nil
	}
	if (a == -1 && factor == math.MinInt64) || (factor == -1 && a == math.MinInt64) {
		return 0, ErrOverflow
	}
	p := a * factor
	if p/factor != a {
		return 0, ErrOverflow
	}
	return Money(p), nil
}

// Percentage returns amount*numerator/denominator rounded half-up to the nearest
// minor unit. Negative products round half away from zero. The denominator must be
// positive; 500/10000 is 5%.
func Percentage(amount Money, numerator, denominator int64) (Money, error) {
	if denominator <= 0 {
		panic(fmt.Sprintf("money: non-positive percentage denominator %d", denominator))
	}
	m, err := Multiply(amount, numerator)
	if err != nil || m == math.MinInt64 {
		return 0, ErrOverflow
	}
	product := int64(m)
	neg := product < 0
	if neg {
		product = -product
	}
	q, r := product/denominator, product%denominator
	if r >= denominator-r {
		q++
	}
	if neg {
		q = -q
	}
	return Money(q), nil
}

// DivideEvenly splits amount into n shares. Every share is perShare and the first
// remainder shares carry one extra minor unit, so
// perShare*(n-remainder) + (perShare+1)*remainder == amount.
func DivideEvenly(amount Money, n int64) (perShare Money, remainder int64, err error) {
	if n < 1 {
		return 0, 0, ErrInvalidDivisor
	}
	if amount < 0 {
		return 0, 0, ErrNegativeAmount
	}
	return Money(int64(amount) / n), int64(amount) % n, nil
}

// Shares expands DivideEvenly into the ordered list of n shares.
func Shares(amount Money, n int64) ([]Money, error) {
	per, rem, err := DivideEvenly(amount, n)
	if err != nil {
		return nil, err
	}
	out := make([]Money, n)
	for i := range out {
		out[i] = per
		if int64(i) < rem {
			out[i]++
		}
	}
	return out, nil
}

// Parse reads a display amount such as "120", "12.5" or "262.50". Extra
// fractional digits are rounded half-up to the minor unit.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("money: parse %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	minor := d.Shift(MinorDigits).Round(0)
	if minor.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, ErrOverflow
	}
	return Money(minor.IntPart()), nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -MinorDigits)
}

// String renders the amount with exactly two decimals.
func (m Money) String() string {
	return m.Decimal().StringFixed(MinorDigits)
}
