package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedArithmetic(t *testing.T) {
	t.Parallel()

	sum, err := CheckedAdd(40, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), sum)

	_, err = CheckedAdd(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrMathOverflow)

	product, err := CheckedMul(1<<32, 1<<31)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<63), product)

	_, err = CheckedMul(1<<32, 1<<32)
	assert.ErrorIs(t, err, ErrMathOverflow)

	next, err := CheckedIncrement8(254)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), next)

	_, err = CheckedIncrement8(255)
	assert.ErrorIs(t, err, ErrMathOverflow)
}
