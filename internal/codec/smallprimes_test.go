package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackSmallPrimes_Buckets(t *testing.T) {
	p := PackSmallPrimes([]uint64{65537, 3, 2, 4294967311, 65521})

	assert.Equal(t, []byte{0x00, 0x02, 0x00, 0x03, 0xff, 0xf1}, p.Spf2)
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x01}, p.Spf4)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x0f}, p.Spf8)
}

func TestPackSmallPrimes_EmptyBucketsAreNil(t *testing.T) {
	p := PackSmallPrimes([]uint64{2, 2, 3})
	assert.NotNil(t, p.Spf2)
	assert.Nil(t, p.Spf4)
	assert.Nil(t, p.Spf8)

	empty := PackSmallPrimes(nil)
	assert.Nil(t, empty.Spf2)
	assert.Nil(t, empty.Spf4)
	assert.Nil(t, empty.Spf8)
}

func TestUnpackSmallPrimes_RoundTrip(t *testing.T) {
	sets := [][]uint64{
		{},
		{2},
		{2, 2, 3},
		{7, 13},
		{3, 5, 65521, 65537, 4294967291},
		{2, 65537, 65537, 4294967311, 18446744073709551557},
	}
	for _, s := range sets {
		got, err := UnpackSmallPrimes(PackSmallPrimes(s))
		require.NoError(t, err)
		assert.Equal(t, len(s), len(got))
		for i := range s {
			assert.Equal(t, s[i], got[i])
		}
	}
}

func TestUnpackSmallPrimes_Malformed(t *testing.T) {
	_, err := UnpackSmallPrimes(PackedPrimes{Spf2: []byte{0x01}})
	assert.Error(t, err)

	_, err = UnpackSmallPrimes(PackedPrimes{Spf8: make([]byte, 12)})
	assert.Error(t, err)
}

func TestValidateSmallPrimes(t *testing.T) {
	require.NoError(t, ValidateSmallPrimes(PackSmallPrimes([]uint64{2, 3, 65537, 4294967311})))

	// 9 is not prime
	assert.Error(t, ValidateSmallPrimes(PackSmallPrimes([]uint64{2, 9})))

	// hand-built blob out of order
	assert.Error(t, ValidateSmallPrimes(PackedPrimes{Spf2: []byte{0x00, 0x05, 0x00, 0x03}}))

	// 65537 placed in the 2-byte bucket cannot happen via Pack, but a 4-byte
	// entry below 2^16 can be forged
	assert.Error(t, ValidateSmallPrimes(PackedPrimes{Spf4: []byte{0x00, 0x00, 0x00, 0x05}}))
}
