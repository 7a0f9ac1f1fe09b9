// Package factordb implements the factorization consistency engine.
//
// Values are stored as factors. A factor either has no recorded split, or a
// split (f1, f2) with f1 <= f2 and f1*f2 equal to its value. The stored split
// is always the best known one: a strictly smaller f1 replaces it, and the
// replaced pair is archived. Archived splits are kept forever and feed later
// propagation.
//
// A number is a registered target. Its known prime factors below 2^64 are
// packed into the number row; the rest of its value is a reference to a
// cofactor factor. A number is complete when its expanded factor list is
// entirely proven prime.
//
// OPERATIONS:
//
//	AddNumber          register a value, dividing out small primes and hints
//	AddFactor          offer a divisor of a factor; propagate on acceptance
//	CompleteNumber     expand, consolidate and persist a number's state
//	SetFactorPrime     manual primality changes for values too large to prove
//	SetFactorProbable
//	SetFactorComposite
//
// Propagation after an accepted split is best-effort. Each attempt runs in
// its own connection scope; NOT_BETTER, NOT_FOUND and VALIDATION results of
// an attempt are logged at debug level and dropped. The heuristic does not
// guarantee the globally best layout is reached from partial information.
//
// A crash between steps leaves consistent, partially propagated state.
// Re-running the same call is always safe.
package factordb
