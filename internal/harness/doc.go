// Package harness runs scripted sequences of engine operations.
//
// A scenario is a YAML file with a list of steps (add_number, add_factor,
// set_prime, ...) and assertions over the resulting numbers and factors:
//
//	name: split_and_complete
//	description: splitting the cofactor completes the number
//	steps:
//	  - op: add_number
//	    value: "91"
//	    expect: created
//	  - op: add_factor
//	    value: "91"
//	    factor: "7"
//	assertions:
//	  - type: number
//	    value: "91"
//	    complete: true
//	    small_primes: [7, 13]
//
// Values are decimal, or products of terms joined by '*' where a term is a
// decimal, a power "b^e", or a Mersenne number "M<p>" (2^p - 1):
// "7*13*M89".
//
// Files are checked twice on load: field by field in Go, then against the
// CUE definitions in schema.cue, which pin the allowed ops and outcomes.
//
// Run executes a scenario against a fresh database with deterministic
// operation ids, so that the trace and final state can be compared with
// golden files (see RunWithGolden). Runner executes steps against any
// engine and backs the CLI batch command.
package harness
