package vesting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckedAdd(t *testing.T) {
	sum, err := checkedAdd(2, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(5), sum)

	_, err = checkedAdd(^uint64(0), 1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestSaturatingSub(t *testing.T) {
	require.Equal(t, uint64(3), saturatingSub(5, 2))
	require.Equal(t, uint64(0), saturatingSub(2, 5))
	require.Equal(t, uint64(0), saturatingSub(5, 5))
}

func TestCheckedMulU64(t *testing.T) {
	product, err := checkedMulU64(6, 7)
	require.NoError(t, err)
	require.Equal(t, uint64(42), product)

	_, err = checkedMulU64(0, 500)
	require.NoError(t, err)

	_, err = checkedMulU64(^uint64(0), 2)
	require.ErrorIs(t, err, ErrOverflow)
}

// percentOf implements spec.md §4.1.1: factor = floor(percent/100 *
// 1_000_000), result = floor(amount*factor/1_000_000), widened before
// multiplying so large amounts never truncate.
func TestPercentOf(t *testing.T) {
	cases := []struct {
		name    string
		amount  uint64
		percent float64
		want    uint64
	}{
		{"identity", 1_000_000, 100, 1_000_000},
		{"zero percent", 1_000_000, 0, 0},
		{"half percent floor", 5_000_000_000, 0.5, 25_000_000},
		{"quarter percent default", 1_000_000_000, 0.25, 2_500_000},
		{"truncates fractional base units", 3, 33.3333, 0}, // floor(3*0.333333) = 0
		{"large amount widened", 1 << 62, 100, 1 << 62},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := percentOf(tc.amount, tc.percent)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestPercentOf_Overflow(t *testing.T) {
	_, err := percentOf(^uint64(0), 200)
	require.ErrorIs(t, err, ErrOverflow)
}
