package factordb

import (
	"context"
	"math/big"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/factordb/internal/primality"
	"github.com/roach88/factordb/internal/store"
)

// AddNumber registers value (value >= 1) as a number and returns its row.
//
// Every prime up to the configured trial division limit is divided out,
// then every hint: hints of at most 64 bits must be prime and are divided
// out as often as they divide; larger hints are offered to the cofactor
// after the number is stored. The number is then completed.
//
// If value is already registered, the hints are offered to its unresolved
// factors and the existing row is returned with created == false.
func (e *Engine) AddNumber(ctx context.Context, value *big.Int, hints []*big.Int) (*store.NumberRow, bool, error) {
	if value == nil || value.Sign() <= 0 {
		return nil, false, validationf("numbers must be positive")
	}
	if value.BitLen() > e.cfg.MaxNumberBits {
		return nil, false, validationf("number exceeds size limit (%d > %d bits)", value.BitLen(), e.cfg.MaxNumberBits)
	}
	for _, h := range hints {
		if h == nil || h.Sign() <= 0 {
			return nil, false, validationf("hints must be positive")
		}
	}

	o := e.begin("add_number")

	var (
		row      *store.NumberRow
		existing bool
		large    []*big.Int
	)
	err := o.withConn(ctx, func(c *store.Conn) error {
		var err error
		row, err = c.NumberByValue(ctx, value)
		if err == nil {
			existing = true
			return nil
		}
		if !store.IsNotFound(err) {
			return err
		}

		cof := new(big.Int).Set(value)
		var small []uint64
		for _, p := range o.trialPrimes {
			small = divideOut(cof, p, small)
		}

		sorted := slices.Clone(hints)
		slices.SortFunc(sorted, func(a, b *big.Int) int { return a.Cmp(b) })
		for _, h := range sorted {
			if h.BitLen() > 64 {
				large = append(large, h)
				continue
			}
			if !primality.IsSmallPrime(h.Uint64()) {
				return validationf("hint %s is not prime", h)
			}
			small = divideOut(cof, h.Uint64(), small)
		}

		if cof.Cmp(bigOne) > 0 && cof.BitLen() <= 64 && primality.IsSmallPrime(cof.Uint64()) {
			small = append(small, cof.Uint64())
			cof.SetInt64(1)
		}
		slices.Sort(small)

		var cofID int64
		if cof.Cmp(bigOne) != 0 {
			cr, err := o.getOrCreate(ctx, c, cof)
			if err != nil {
				return err
			}
			cofID = cr.ID
		}

		row, err = c.InsertNumber(ctx, value, store.NumberState{SmallPrimes: small, CofactorID: cofID})
		if err != nil {
			return err
		}
		if err := c.Commit(); err != nil {
			return err
		}
		o.log.Info("added number", "number", row.ID, "bits", value.BitLen(), "cofactor", cofID, "small_primes", len(small))
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if existing {
		if err := o.factorNumber(ctx, row.ID, hints); err != nil {
			return nil, false, err
		}
		row, err = o.reloadNumber(ctx, row.ID)
		return row, false, err
	}

	if err := o.factorNumber(ctx, row.ID, large); err != nil {
		return nil, false, err
	}
	if _, err := o.completeNumber(ctx, row.ID); err != nil {
		return nil, false, err
	}
	row, err = o.reloadNumber(ctx, row.ID)
	return row, true, err
}

// divideOut removes every power of p from cof, appending p to small once
// per division.
func divideOut(cof *big.Int, p uint64, small []uint64) []uint64 {
	bp := new(big.Int).SetUint64(p)
	q, r := new(big.Int), new(big.Int)
	for {
		q.QuoRem(cof, bp, r)
		if r.Sign() != 0 {
			return small
		}
		cof.Set(q)
		small = append(small, p)
	}
}

func (o *operation) reloadNumber(ctx context.Context, id int64) (*store.NumberRow, error) {
	var row *store.NumberRow
	err := o.withConn(ctx, func(c *store.Conn) error {
		var err error
		row, err = c.NumberByID(ctx, id)
		if store.IsNotFound(err) {
			return &Error{Code: ErrCodeNotFound, Message: "no such number", NumberID: id}
		}
		return err
	})
	return row, err
}

// FactorNumberWithFactors offers each of fs, smallest first, to every
// unresolved (unknown or composite) entry of the number's expansion.
// Completed numbers are left alone.
func (e *Engine) FactorNumberWithFactors(ctx context.Context, id int64, fs []*big.Int) error {
	o := e.begin("factor_number")
	row, err := o.reloadNumber(ctx, id)
	if err != nil {
		return err
	}
	if row.Complete {
		return nil
	}
	return o.factorNumber(ctx, id, fs)
}

func (o *operation) factorNumber(ctx context.Context, id int64, fs []*big.Int) error {
	sorted := slices.Clone(fs)
	slices.SortFunc(sorted, func(a, b *big.Int) int { return a.Cmp(b) })

	for _, f := range sorted {
		var targets []*big.Int
		done := false
		err := o.withConn(ctx, func(c *store.Conn) error {
			n, err := c.NumberByID(ctx, id)
			if store.IsNotFound(err) {
				return &Error{Code: ErrCodeNotFound, Message: "no such number", NumberID: id}
			}
			if err != nil {
				return err
			}
			if n.CofactorID == 0 {
				done = true
				return nil
			}
			entries, err := o.expandNumber(ctx, c, n)
			if err != nil {
				return err
			}
			for _, fe := range entries {
				if fe.Primality == primality.Unknown || fe.Primality == primality.Composite {
					targets = append(targets, fe.Value)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		for _, t := range targets {
			err := o.addFactor(ctx, t, f)
			if err != nil && !isRejection(err) {
				return err
			}
			if err != nil {
				o.log.Debug("attempt rejected", "code", CodeOf(err), "number", id, "f", f.String())
			}
		}
	}
	return nil
}

// NumberInput is one entry of a batch import.
type NumberInput struct {
	Value *big.Int
	Hints []*big.Int
}

// AddResult is the outcome of one entry of AddNumbers. Err holds a
// VALIDATION error for a rejected entry; the batch continues past those.
type AddResult struct {
	Row     *store.NumberRow
	Created bool
	Err     error
}

// AddNumbers registers many numbers concurrently, at most one worker per
// pooled connection. Results are in input order. The first error that is
// not a validation rejection cancels the batch and is returned.
func (e *Engine) AddNumbers(ctx context.Context, inputs []NumberInput) ([]AddResult, error) {
	results := make([]AddResult, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.store.Pool().Limit())
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, created, err := e.AddNumber(ctx, in.Value, in.Hints)
			if err != nil && !IsValidation(err) {
				return err
			}
			results[i] = AddResult{Row: row, Created: created, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
