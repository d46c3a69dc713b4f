package domain

import (
	"math"
	"math/bits"
)

// CheckedAdd returns a+b or ErrMathOverflow when the sum does not fit.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrMathOverflow
	}
	return sum, nil
}

// CheckedMul returns a*b or ErrMathOverflow when the product does not fit.
func CheckedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrMathOverflow
	}
	return lo, nil
}

// CheckedIncrement8 returns v+1 for one-byte counters such as the resale index.
func CheckedIncrement8(v uint8) (uint8, error) {
	if v == math.MaxUint8 {
		return 0, ErrMathOverflow
	}
	return v + 1, nil
}
