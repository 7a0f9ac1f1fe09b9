// Package codec converts integers to and from their storage encoding.
//
// Values are stored as minimal-length big-endian byte strings: no leading
// zero byte, and zero encodes to the empty string. Because the encoding is
// minimal, ordering rows by (length(value), value) orders them numerically.
//
// Small prime factors (below 2^64) are packed into three fixed-width blobs,
// one per size bucket, see PackSmallPrimes.
package codec

import (
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Encode returns the canonical storage encoding of a nonnegative integer.
// Panics on negative input; the store only holds positive values.
func Encode(n *big.Int) []byte {
	if n.Sign() < 0 {
		panic("codec: cannot encode negative value")
	}
	return n.Bytes()
}

// Decode is the exact inverse of Encode.
func Decode(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// ParseValue parses a decimal integer as typed by a user or read from a file.
// Input is NFKC-normalized first so that full-width digits and similar
// compatibility forms are accepted; surrounding whitespace and a leading '+'
// are ignored. Negative values are rejected.
func ParseValue(s string) (*big.Int, error) {
	t := strings.TrimSpace(norm.NFKC.String(s))
	t = strings.TrimPrefix(t, "+")
	if t == "" {
		return nil, fmt.Errorf("parse value: empty input")
	}
	// big.Int accepts a sign of its own
	if t[0] == '+' {
		return nil, fmt.Errorf("parse value: %q has more than one sign", s)
	}
	n, ok := new(big.Int).SetString(t, 10)
	if !ok {
		return nil, fmt.Errorf("parse value: %q is not a decimal integer", s)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("parse value: %q is negative", s)
	}
	return n, nil
}

// ParseValues parses every element with ParseValue, stopping at the first error.
func ParseValues(ss []string) ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(ss))
	for _, s := range ss {
		n, err := ParseValue(s)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
