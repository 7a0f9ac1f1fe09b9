package harness

import (
	"context"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/roach88/factordb/internal/factordb"
	"github.com/roach88/factordb/internal/primality"
)

// AssertionError describes one failed assertion.
type AssertionError struct {
	Type     string
	Value    string
	Field    string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Value != "" {
		fmt.Fprintf(&buf, " %s", e.Value)
	}
	if e.Field != "" {
		fmt.Fprintf(&buf, " (%s)", e.Field)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure.
func (r *Runner) EvaluateAssertions(ctx context.Context, assertions []Assertion) []string {
	var msgs []string
	for i, a := range assertions {
		var errs []error
		switch a.Type {
		case AssertNumber:
			errs = r.assertNumber(ctx, a)
		case AssertFactor:
			errs = r.assertFactor(ctx, a)
		case AssertStats:
			errs = r.assertStats(ctx, a)
		default:
			errs = []error{fmt.Errorf("unknown assertion type %q", a.Type)}
		}
		for _, err := range errs {
			msgs = append(msgs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return msgs
}

func mismatch(a Assertion, field string, want, got any) error {
	return &AssertionError{
		Type:     a.Type,
		Value:    a.Value,
		Field:    field,
		Expected: fmt.Sprint(want),
		Actual:   fmt.Sprint(got),
	}
}

func (r *Runner) assertNumber(ctx context.Context, a Assertion) []error {
	v, err := ParseValue(a.Value)
	if err != nil {
		return []error{err}
	}
	row, err := r.eng.NumberByValue(ctx, v)
	if err != nil {
		return []error{mismatch(a, "exists", "stored number", err)}
	}

	var errs []error
	if a.Complete != nil && *a.Complete != row.Complete {
		errs = append(errs, mismatch(a, "complete", *a.Complete, row.Complete))
	}
	if a.SmallPrimes != nil && !slices.Equal(a.SmallPrimes, row.SmallPrimes) {
		errs = append(errs, mismatch(a, "small_primes", a.SmallPrimes, row.SmallPrimes))
	}
	if a.Cofactor != "" {
		want, err := ParseValue(a.Cofactor)
		if err != nil {
			return append(errs, err)
		}
		got := "1"
		if row.CofactorID != 0 {
			cof, err := r.eng.FactorByID(ctx, row.CofactorID)
			if err != nil {
				return append(errs, err)
			}
			got = cof.Value.String()
		}
		if want.String() != got {
			errs = append(errs, mismatch(a, "cofactor", want, got))
		}
	}
	if a.Factorization != nil {
		want, err := ParseValues(a.Factorization)
		if err != nil {
			return append(errs, err)
		}
		entries, err := r.eng.NumberFactorization(ctx, row.ID)
		if err != nil {
			return append(errs, err)
		}
		if !sameValues(want, entries) {
			errs = append(errs, mismatch(a, "factorization", want, entries))
		}
	}
	return errs
}

func sameValues(want []*big.Int, got []factordb.FactorEntry) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i].Cmp(got[i].Value) != 0 {
			return false
		}
	}
	return true
}

func (r *Runner) assertFactor(ctx context.Context, a Assertion) []error {
	v, err := ParseValue(a.Value)
	if err != nil {
		return []error{err}
	}
	row, err := r.eng.FactorByValue(ctx, v)
	if err != nil {
		return []error{mismatch(a, "exists", "stored factor", err)}
	}

	var errs []error
	if a.Primality != "" {
		want, _ := primality.ParseStatus(a.Primality)
		if want != row.Primality {
			errs = append(errs, mismatch(a, "primality", want, row.Primality))
		}
	}
	if a.Split != nil {
		got := []string{}
		if row.HasSplit() {
			f1, err := r.eng.FactorByID(ctx, row.F1ID)
			if err != nil {
				return append(errs, err)
			}
			f2, err := r.eng.FactorByID(ctx, row.F2ID)
			if err != nil {
				return append(errs, err)
			}
			got = []string{f1.Value.String(), f2.Value.String()}
		}
		want, err := ParseValues(a.Split)
		if err != nil {
			return append(errs, err)
		}
		wantStr := make([]string, len(want))
		for i, w := range want {
			wantStr[i] = w.String()
		}
		if !slices.Equal(wantStr, got) {
			errs = append(errs, mismatch(a, "split", wantStr, got))
		}
	}
	if a.Archived != nil {
		archived, err := r.eng.ArchivedSplits(ctx, row.ID)
		if err != nil {
			return append(errs, err)
		}
		if len(archived) != *a.Archived {
			errs = append(errs, mismatch(a, "archived", *a.Archived, len(archived)))
		}
	}
	return errs
}

func (r *Runner) assertStats(ctx context.Context, a Assertion) []error {
	st, err := r.eng.Stats(ctx)
	if err != nil {
		return []error{err}
	}

	var errs []error
	if a.Numbers != nil && *a.Numbers != st.Numbers {
		errs = append(errs, mismatch(a, "numbers", *a.Numbers, st.Numbers))
	}
	if a.CompleteNumbers != nil && *a.CompleteNumbers != st.CompleteNumbers {
		errs = append(errs, mismatch(a, "complete_numbers", *a.CompleteNumbers, st.CompleteNumbers))
	}
	if a.Factors != nil && *a.Factors != st.Factors {
		errs = append(errs, mismatch(a, "factors", *a.Factors, st.Factors))
	}
	return errs
}
