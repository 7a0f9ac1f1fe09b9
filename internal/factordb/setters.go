package factordb

import (
	"context"

	"github.com/roach88/factordb/internal/primality"
	"github.com/roach88/factordb/internal/store"
)

// SetFactorPrime marks a factor as proven prime. With verify, a probable
// prime test must agree first.
//
// Only factors too large for the deterministic proof path may be changed
// by hand, and a factor with a recorded split can never be prime.
func (e *Engine) SetFactorPrime(ctx context.Context, id int64, verify bool) error {
	return e.begin("set_factor_prime").setPrimality(ctx, id, primality.Prime, verify)
}

// SetFactorProbable marks a factor as a probable prime.
func (e *Engine) SetFactorProbable(ctx context.Context, id int64, verify bool) error {
	return e.begin("set_factor_probable").setPrimality(ctx, id, primality.Probable, verify)
}

// SetFactorComposite marks a factor as composite. With verify, a probable
// prime test must fail first; a pass may indicate a BPSW pseudoprime.
func (e *Engine) SetFactorComposite(ctx context.Context, id int64, verify bool) error {
	return e.begin("set_factor_composite").setPrimality(ctx, id, primality.Composite, verify)
}

func (o *operation) setPrimality(ctx context.Context, id int64, to primality.Status, verify bool) error {
	var (
		from primality.Status
		deps []int64
		same bool
	)
	err := o.withConn(ctx, func(c *store.Conn) error {
		row, err := c.FactorByID(ctx, id)
		if store.IsNotFound(err) {
			return &Error{Code: ErrCodeNotFound, Message: "no such factor", FactorID: id}
		}
		if err != nil {
			return err
		}
		if o.classifier.Provable(row.Value) {
			return &Error{
				Code:     ErrCodeValidation,
				Message:  "factor is small enough for primality proving",
				FactorID: id,
			}
		}
		if to != primality.Composite && row.HasSplit() {
			return &Error{
				Code:     ErrCodeValidation,
				Message:  "factor has a recorded split",
				FactorID: id,
			}
		}

		if verify {
			passed := o.tester.Probable(row.Value)
			if passed != (to != primality.Composite) {
				o.log.Warn("primality verification failed",
					"factor", id, "asserted", to, "test_says_probable", passed)
				return &Error{
					Code:     ErrCodeVerificationFailed,
					Message:  "probable prime test disagrees with " + to.String(),
					FactorID: id,
				}
			}
		}

		from = row.Primality
		if from == to {
			same = true
			return nil
		}

		if err := c.SetPrimality(ctx, id, to); err != nil {
			return err
		}

		deps, err = dependentNumbers(ctx, c, id)
		if err != nil {
			return err
		}
		// a completion proof that relied on this factor is void
		if from == primality.Prime {
			if err := c.MarkIncomplete(ctx, deps); err != nil {
				return err
			}
		}
		return c.Commit()
	})
	if err != nil {
		return err
	}
	if same {
		o.log.Debug("primality unchanged", "factor", id, "primality", to)
		return nil
	}

	switch {
	case from == primality.Prime, from == primality.Composite:
		o.log.Warn("primality corrected", "factor", id, "from", from, "to", to, "dependents", len(deps))
	default:
		o.log.Info("primality set", "factor", id, "from", from, "to", to)
	}

	for _, n := range deps {
		if _, err := o.completeNumber(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
