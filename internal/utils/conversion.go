/*
This file is the single conversion boundary between arbitrary-precision
integer amounts and float64. Raw on-chain amounts stay sdkmath.Int everywhere
else; floats exist only after normalization to units, weights, or percentages.
*/

package utils

import (
	"errors"
	"math"
	"math/big"
	"strconv"

	sdkmath "cosmossdk.io/math"
)

var ErrNotFinite = errors.New("value is not finite")

// weiPerUnit scales raw 1e18-precision amounts to whole token units.
var weiPerUnit = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// RawToUnits scales a raw 1e18-precision amount down to whole token units.
// This is a unit normalization, not a price conversion: the thresholds fed
// with the result treat token quantity as a stand-in for value. Nil and
// non-positive amounts map to 0 so callers stay total.
func RawToUnits(amount sdkmath.Int) float64 {
	if amount.IsNil() || !amount.IsPositive() {
		return 0
	}
	units := new(big.Float).SetInt(amount.BigInt())
	units.Quo(units, weiPerUnit)
	f, _ := units.Float64()
	return f
}

// Ratio returns num/den as a float64. A nil or non-positive denominator
// yields 0; callers that need a different degenerate value branch first.
func Ratio(num, den sdkmath.Int) float64 {
	if den.IsNil() || !den.IsPositive() || num.IsNil() || num.IsNegative() {
		return 0
	}
	q := new(big.Float).Quo(
		new(big.Float).SetInt(num.BigInt()),
		new(big.Float).SetInt(den.BigInt()),
	)
	f, _ := q.Float64()
	return f
}

// Weight returns part/total as a weight in [0,1]. Zero total yields 0.
func Weight(part, total sdkmath.Int) float64 {
	return Ratio(part, total)
}

// Percentage returns part/total scaled to [0,100].
func Percentage(part, total sdkmath.Int) float64 {
	return Ratio(part, total) * 100
}

// ScaleInt computes floor(total * factor) in decimal space and returns it as
// an arbitrary-precision integer. Negative factors floor toward negative
// infinity, matching integer floor semantics.
func ScaleInt(total sdkmath.Int, factor float64) (sdkmath.Int, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return sdkmath.ZeroInt(), ErrNotFinite
	}
	if total.IsNil() {
		return sdkmath.ZeroInt(), nil
	}
	dec, err := sdkmath.LegacyNewDecFromStr(strconv.FormatFloat(factor, 'f', 18, 64))
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	product := dec.MulInt(total)
	if product.IsNegative() {
		// floor(x) == -ceil(-x) for negative x
		return product.Neg().Ceil().TruncateInt().Neg(), nil
	}
	return product.TruncateInt(), nil
}
