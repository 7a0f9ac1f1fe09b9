// Package testutil holds helpers shared by tests and the scenario harness.
package testutil

import (
	"math/big"

	"github.com/roach88/factordb/internal/codec"
)

// Mersenne returns 2^p - 1.
func Mersenne(p uint) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), p)
	return m.Sub(m, big.NewInt(1))
}

// MustParse parses a decimal value and panics on malformed input.
func MustParse(s string) *big.Int {
	v, err := codec.ParseValue(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Product multiplies its arguments. Product() is 1.
func Product(vs ...*big.Int) *big.Int {
	out := big.NewInt(1)
	for _, v := range vs {
		out.Mul(out, v)
	}
	return out
}
