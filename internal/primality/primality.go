// Package primality defines the primality states tracked for stored factors
// and the thresholds that decide how a newly registered value is classified.
package primality

import (
	"fmt"
	"math/big"
)

// Status is the primality state of a stored factor. The numeric values are
// what the store persists.
type Status int

const (
	Unknown   Status = -1
	Composite Status = 0
	Probable  Status = 1
	Prime     Status = 2
)

// String returns the lowercase name used in logs and CLI output.
func (s Status) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Composite:
		return "composite"
	case Probable:
		return "probable"
	case Prime:
		return "prime"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Valid reports whether s is one of the four defined states.
func (s Status) Valid() bool {
	return s >= Unknown && s <= Prime
}

// ParseStatus is the inverse of String.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "unknown":
		return Unknown, nil
	case "composite":
		return Composite, nil
	case "probable":
		return Probable, nil
	case "prime":
		return Prime, nil
	}
	return Unknown, fmt.Errorf("unknown primality %q", s)
}

// Tester runs the two primality tests the registry relies on.
//
// Prove must be deterministic for the sizes it is used on (bit length at or
// below the provable limit). Probable is a fast probabilistic test.
type Tester interface {
	Prove(n *big.Int) bool
	Probable(n *big.Int) bool
}

// BPSWTester implements Tester with math/big's Baillie-PSW test.
//
// Below 2^64 ProbablyPrime is exact, so Prove is a real proof there. Above
// 2^64 Prove adds ProofRounds Miller-Rabin rounds with random bases on top
// of BPSW; no BPSW pseudoprime is known, but deployments that need a
// certificate should plug in their own Tester.
type BPSWTester struct {
	ProofRounds int
}

// DefaultProofRounds is the Miller-Rabin round count used by Prove.
const DefaultProofRounds = 32

// Prove implements Tester.
func (t BPSWTester) Prove(n *big.Int) bool {
	if n.BitLen() <= 64 {
		return n.ProbablyPrime(0)
	}
	rounds := t.ProofRounds
	if rounds <= 0 {
		rounds = DefaultProofRounds
	}
	return n.ProbablyPrime(rounds)
}

// Probable implements Tester.
func (t BPSWTester) Probable(n *big.Int) bool {
	return n.ProbablyPrime(0)
}

// Classifier assigns the initial status of a newly registered value.
// The decision depends only on the value's bit length and the two limits:
//
//	bits <= ProvableBits                 -> Prime or Composite (Prove)
//	ProvableBits < bits <= ProbableBits  -> Probable or Composite (Probable)
//	bits > ProbableBits                  -> Unknown
type Classifier struct {
	ProvableBits int
	ProbableBits int
	Tester       Tester
}

// NewClassifier builds a Classifier. A nil tester selects BPSWTester.
func NewClassifier(provableBits, probableBits int, tester Tester) (*Classifier, error) {
	if provableBits < 64 {
		return nil, fmt.Errorf("provable limit %d below 64 bits", provableBits)
	}
	if provableBits > probableBits {
		return nil, fmt.Errorf("provable limit %d exceeds probable limit %d", provableBits, probableBits)
	}
	if tester == nil {
		tester = BPSWTester{}
	}
	return &Classifier{ProvableBits: provableBits, ProbableBits: probableBits, Tester: tester}, nil
}

// Classify returns the initial status for n (n > 1).
func (c *Classifier) Classify(n *big.Int) Status {
	bits := n.BitLen()
	switch {
	case bits <= c.ProvableBits:
		if c.Tester.Prove(n) {
			return Prime
		}
		return Composite
	case bits <= c.ProbableBits:
		if c.Tester.Probable(n) {
			return Probable
		}
		return Composite
	default:
		return Unknown
	}
}

// Provable reports whether n is small enough that its status must come from
// the deterministic path rather than a manual override.
func (c *Classifier) Provable(n *big.Int) bool {
	return n.BitLen() <= c.ProvableBits
}

// IsSmallPrime reports whether p (p < 2^64) is prime. Exact.
func IsSmallPrime(p uint64) bool {
	return new(big.Int).SetUint64(p).ProbablyPrime(0)
}
