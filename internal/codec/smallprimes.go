package codec

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"slices"
)

// Bucket bounds for packed small primes.
//
//	spf2: p < 2^16          (2-byte entries)
//	spf4: 2^16 <= p < 2^32  (4-byte entries)
//	spf8: 2^32 <= p < 2^64  (8-byte entries)
const (
	bucket2Limit = uint64(1) << 16
	bucket4Limit = uint64(1) << 32
)

// PackedPrimes holds the three bucket blobs of a number row.
// A nil blob means the bucket is empty (stored as NULL).
type PackedPrimes struct {
	Spf2 []byte
	Spf4 []byte
	Spf8 []byte
}

// PackSmallPrimes partitions ps into the three size buckets and serializes
// each as a big-endian fixed-width array. The input is sorted first; callers
// are responsible for only passing primes.
func PackSmallPrimes(ps []uint64) PackedPrimes {
	sorted := slices.Clone(ps)
	slices.Sort(sorted)

	var out PackedPrimes
	for _, p := range sorted {
		switch {
		case p < bucket2Limit:
			out.Spf2 = binary.BigEndian.AppendUint16(out.Spf2, uint16(p))
		case p < bucket4Limit:
			out.Spf4 = binary.BigEndian.AppendUint32(out.Spf4, uint32(p))
		default:
			out.Spf8 = binary.BigEndian.AppendUint64(out.Spf8, p)
		}
	}
	return out
}

// UnpackSmallPrimes is the inverse of PackSmallPrimes. The result is the
// concatenation of the three buckets, which is sorted whenever each bucket
// is sorted. Blob lengths that are not a multiple of the entry width are an
// error.
func UnpackSmallPrimes(p PackedPrimes) ([]uint64, error) {
	if len(p.Spf2)%2 != 0 || len(p.Spf4)%4 != 0 || len(p.Spf8)%8 != 0 {
		return nil, fmt.Errorf("unpack small primes: malformed blob lengths %d/%d/%d",
			len(p.Spf2), len(p.Spf4), len(p.Spf8))
	}
	out := make([]uint64, 0, len(p.Spf2)/2+len(p.Spf4)/4+len(p.Spf8)/8)
	for i := 0; i < len(p.Spf2); i += 2 {
		out = append(out, uint64(binary.BigEndian.Uint16(p.Spf2[i:])))
	}
	for i := 0; i < len(p.Spf4); i += 4 {
		out = append(out, uint64(binary.BigEndian.Uint32(p.Spf4[i:])))
	}
	for i := 0; i < len(p.Spf8); i += 8 {
		out = append(out, binary.BigEndian.Uint64(p.Spf8[i:]))
	}
	return out, nil
}

// ValidateSmallPrimes re-checks the packed-prime invariants: every bucket is
// sorted, every entry lies inside its bucket's range and is prime. It is the
// debug-only pass run when extra checks are enabled.
func ValidateSmallPrimes(p PackedPrimes) error {
	check := func(name string, vals []uint64, lo, hi uint64) error {
		for i, v := range vals {
			if v < lo || (hi != 0 && v >= hi) {
				return fmt.Errorf("%s[%d]=%d outside bucket range", name, i, v)
			}
			if i > 0 && vals[i-1] > v {
				return fmt.Errorf("%s not sorted at index %d", name, i)
			}
			// ProbablyPrime is exact below 2^64.
			if !new(big.Int).SetUint64(v).ProbablyPrime(0) {
				return fmt.Errorf("%s[%d]=%d is not prime", name, i, v)
			}
		}
		return nil
	}

	all, err := UnpackSmallPrimes(p)
	if err != nil {
		return err
	}
	n2, n4 := len(p.Spf2)/2, len(p.Spf4)/4
	if err := check("spf2", all[:n2], 2, bucket2Limit); err != nil {
		return err
	}
	if err := check("spf4", all[n2:n2+n4], bucket2Limit, bucket4Limit); err != nil {
		return err
	}
	return check("spf8", all[n2+n4:], bucket4Limit, 0)
}
