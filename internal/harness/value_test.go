package harness

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/factordb/internal/testutil"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want *big.Int
	}{
		{"91", big.NewInt(91)},
		{" 7 * 13 ", big.NewInt(91)},
		{"2^10", big.NewInt(1024)},
		{"M61", testutil.Mersenne(61)},
		{"7*13*19*M89", testutil.Product(big.NewInt(7*13*19), testutil.Mersenne(89))},
		{"2^64*3", new(big.Int).Mul(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(3))},
		{"0", big.NewInt(0)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, 0, tt.want.Cmp(got), "got %s", got)
		})
	}
}

func TestParseValue_Errors(t *testing.T) {
	for _, in := range []string{"", "  ", "abc", "7*", "M", "Mx", "2^", "2^-1", "2^99999999", "-5"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseValue(in)
			assert.Error(t, err)
		})
	}
}

func TestParseValues(t *testing.T) {
	got, err := ParseValues([]string{"7", "M89"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[1].Cmp(testutil.Mersenne(89)))

	_, err = ParseValues([]string{"7", "x"})
	assert.Error(t, err)
}
