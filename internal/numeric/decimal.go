// Package numeric provides exact decimal helpers for clearing arithmetic.
//
// decimal.Div rounds at DivisionPrecision, which can carry a near-integer
// quotient across the floor boundary. Everything here computes quotients on
// the raw big.Int coefficients instead, so floors and ceilings are exact.
package numeric

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FloorQuoInt64 returns ⌊a/b⌋ as an int64, with ok=false when the quotient
// does not fit. Requires b > 0.
func FloorQuoInt64(a, b decimal.Decimal) (int64, bool) {
	q := floorQuo(a, b)
	if !q.IsInt64() {
		return 0, false
	}
	return q.Int64(), true
}

// CeilQuoScaled returns a/b rounded up at the given number of decimal
// places. Requires b > 0.
func CeilQuoScaled(a, b decimal.Decimal, places int32) decimal.Decimal {
	num, den := alignedRatio(a, b)
	num.Mul(num, pow10(places))

	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	// QuoRem truncates toward zero; bump non-negative quotients with a
	// remainder up to the next step.
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return decimal.NewFromBigInt(q, -places)
}

// floorQuo computes ⌊a/b⌋ over the coefficient/exponent representation.
// big.Int.Div floors for a positive divisor; b must be positive.
func floorQuo(a, b decimal.Decimal) *big.Int {
	num, den := alignedRatio(a, b)
	return new(big.Int).Div(num, den)
}

// alignedRatio returns (num, den) such that a/b == num/den with den > 0,
// by folding the decimal exponents into the coefficients.
func alignedRatio(a, b decimal.Decimal) (*big.Int, *big.Int) {
	num := new(big.Int).Set(a.Coefficient())
	den := new(big.Int).Set(b.Coefficient())

	shift := a.Exponent() - b.Exponent()
	if shift > 0 {
		num.Mul(num, pow10(shift))
	} else if shift < 0 {
		den.Mul(den, pow10(-shift))
	}
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}
	return num, den
}

func pow10(n int32) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
