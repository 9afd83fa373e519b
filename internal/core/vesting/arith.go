package vesting

import "math/big"

// ErrOverflow is returned by the checked arithmetic helpers when an
// operation would not fit in a uint64.
var ErrOverflow = errOverflow{}

type errOverflow struct{}

func (errOverflow) Error() string { return "arithmetic overflow" }

// checkedAdd adds a and b, failing if the sum does not fit in uint64.
func checkedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// saturatingSub returns a-b, or 0 if b > a.
//
// Preserves the source's use of saturating subtraction in
// calculate_external_deposit and in ledger progress accounting, where a
// transient negative would otherwise be a false arithmetic overflow.
func saturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}

// percentOf computes floor(amount * factor / 1_000_000) where
// factor = floor(percent/100 * 1_000_000), widening to arbitrary
// precision before multiplying so the intermediate product never
// truncates (spec requires 128-bit widening; big.Int is a strict
// superset of that guarantee).
func percentOf(amount uint64, percent float64) (uint64, error) {
	factor := percentFactor(percent)

	product := new(big.Int).Mul(new(big.Int).SetUint64(amount), big.NewInt(int64(factor)))
	product.Quo(product, big.NewInt(percentScale))

	if !product.IsUint64() {
		return 0, ErrOverflow
	}
	return product.Uint64(), nil
}

// percentScale is the fixed-point denominator specified for percentage
// arithmetic: factor = floor(percent/100 * percentScale).
const percentScale = 1_000_000

func percentFactor(percent float64) int64 {
	return int64(percent / 100 * percentScale)
}
