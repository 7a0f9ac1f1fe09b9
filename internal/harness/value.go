package harness

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/roach88/factordb/internal/codec"
)

// maxExponent keeps "b^e" terms from allocating absurd amounts of memory.
const maxExponent = 1 << 20

// ParseValue parses a scenario value: a product of terms joined by '*',
// where a term is a decimal, "b^e", or "M<p>" for 2^p - 1.
func ParseValue(s string) (*big.Int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty value")
	}
	out := big.NewInt(1)
	for _, term := range strings.Split(s, "*") {
		v, err := parseTerm(strings.TrimSpace(term))
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", s, err)
		}
		out.Mul(out, v)
	}
	return out, nil
}

// ParseValues parses every element with ParseValue.
func ParseValues(ss []string) ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(ss))
	for _, s := range ss {
		v, err := ParseValue(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseTerm(t string) (*big.Int, error) {
	if rest, ok := strings.CutPrefix(t, "M"); ok {
		p, err := parseExponent(rest)
		if err != nil {
			return nil, err
		}
		m := new(big.Int).Lsh(big.NewInt(1), uint(p))
		return m.Sub(m, big.NewInt(1)), nil
	}
	if base, exp, ok := strings.Cut(t, "^"); ok {
		b, err := codec.ParseValue(base)
		if err != nil {
			return nil, err
		}
		e, err := parseExponent(exp)
		if err != nil {
			return nil, err
		}
		return new(big.Int).Exp(b, big.NewInt(int64(e)), nil), nil
	}
	return codec.ParseValue(t)
}

func parseExponent(s string) (int, error) {
	e, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || e < 0 || e > maxExponent {
		return 0, fmt.Errorf("bad exponent %q", s)
	}
	return e, nil
}
