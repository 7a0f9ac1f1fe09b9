package factordb

import (
	"context"
	"math/big"
	"slices"

	"github.com/roach88/factordb/internal/primality"
	"github.com/roach88/factordb/internal/store"
)

// AddFactor offers f as a divisor of the factor whose value is n.
//
// The split (f, n/f), ordered so that f1 <= f2, is stored when n has no
// split yet or when f1 is strictly smaller than the stored f1; the replaced
// split is archived. Otherwise the call fails with NOT_BETTER.
//
// On acceptance the discovery is propagated best-effort through archived
// splits, repeated division and every known multiple of n, and every number
// depending on n is re-completed. Propagation failures other than the
// ordinary rejections are returned.
func (e *Engine) AddFactor(ctx context.Context, n, f *big.Int) error {
	if n == nil || f == nil {
		return validationf("missing value")
	}
	return e.begin("add_factor").addFactor(ctx, n, f)
}

// AddFactorByID is AddFactor with n given as a factor id.
func (e *Engine) AddFactorByID(ctx context.Context, id int64, f *big.Int) error {
	if f == nil {
		return validationf("missing value")
	}
	o := e.begin("add_factor")

	var n *big.Int
	err := o.withConn(ctx, func(c *store.Conn) error {
		row, err := c.FactorByID(ctx, id)
		if store.IsNotFound(err) {
			return &Error{Code: ErrCodeNotFound, Message: "no such factor", FactorID: id}
		}
		if err != nil {
			return err
		}
		n = row.Value
		return nil
	})
	if err != nil {
		return err
	}
	return o.addFactor(ctx, n, f)
}

func (o *operation) addFactor(ctx context.Context, n, f *big.Int) error {
	if f.Cmp(bigOne) <= 0 || f.Cmp(n) >= 0 {
		return validationf("factor must satisfy 1 < f < n")
	}
	g, rem := new(big.Int).QuoRem(n, f, new(big.Int))
	if rem.Sign() != 0 {
		return validationf("%s does not divide n", f)
	}
	if f.Cmp(g) > 0 {
		f, g = g, f
	}

	o.log.Debug("offering split", "n_bits", n.BitLen(), "f", f.String())

	var nRow *store.FactorRow
	err := o.withConn(ctx, func(c *store.Conn) error {
		var err error
		nRow, err = c.FactorByValue(ctx, n)
		if store.IsNotFound(err) {
			return notFoundf("value is not a registered factor")
		}
		if err != nil {
			return err
		}
		if nRow.Primality == primality.Prime || nRow.Primality == primality.Probable {
			return &Error{
				Code:     ErrCodeValidation,
				Message:  "cannot split a " + nRow.Primality.String() + " factor",
				FactorID: nRow.ID,
			}
		}

		if nRow.HasSplit() {
			nf1, err := c.FactorByID(ctx, nRow.F1ID)
			if err != nil {
				return err
			}
			nf2, err := c.FactorByID(ctx, nRow.F2ID)
			if err != nil {
				return err
			}
			if new(big.Int).Mul(nf1.Value, nf2.Value).Cmp(n) != 0 {
				return o.violation(ctx, &Error{
					Code:     ErrCodeInvariant,
					Message:  "stored split does not multiply to value",
					FactorID: nRow.ID,
				})
			}
			if f.Cmp(nf1.Value) >= 0 {
				return &Error{Code: ErrCodeNotBetter, Message: "existing split is at least as good", FactorID: nRow.ID}
			}

			if err := c.ArchiveSplit(ctx, store.ArchivedSplit{FactorID: nRow.ID, F1ID: nf1.ID, F2ID: nf2.ID}); err != nil {
				return err
			}
			o.log.Info("replacing split", "factor", nRow.ID, "old_f1", nf1.ID, "old_f2", nf2.ID)
		}

		fRow, err := o.getOrCreate(ctx, c, f)
		if err != nil {
			return err
		}
		gRow, err := o.getOrCreate(ctx, c, g)
		if err != nil {
			return err
		}
		if err := c.SetSplit(ctx, nRow.ID, fRow.ID, gRow.ID); err != nil {
			return err
		}
		if err := c.Commit(); err != nil {
			return err
		}
		o.log.Info("split factor", "factor", nRow.ID, "f1", fRow.ID, "f2", gRow.ID)
		return nil
	})
	if err != nil {
		return err
	}

	if err := o.propagate(ctx, nRow.ID, f, g); err != nil {
		return err
	}
	return o.completeDependents(ctx, nRow.ID)
}

// propagate retries the new split (f, g) of factor nID against everything
// already known about nID and its multiples.
func (o *operation) propagate(ctx context.Context, nID int64, f, g *big.Int) error {
	type pair struct{ f1, f2 *big.Int }
	var old []pair
	err := o.withConn(ctx, func(c *store.Conn) error {
		splits, err := c.ArchivedSplits(ctx, nID)
		if err != nil {
			return err
		}
		for _, a := range splits {
			f1, err := c.FactorByID(ctx, a.F1ID)
			if err != nil {
				return err
			}
			f2, err := c.FactorByID(ctx, a.F2ID)
			if err != nil {
				return err
			}
			old = append(old, pair{f1.Value, f2.Value})
		}
		return nil
	})
	if err != nil {
		return err
	}

	// earlier f1s may divide the new cofactor
	oldF1s := make([]*big.Int, len(old))
	for i, p := range old {
		oldF1s[i] = p.f1
	}
	if err := o.tryFactorByValue(ctx, g, oldF1s); err != nil {
		return err
	}

	for _, p := range old {
		attempts := []struct {
			n  *big.Int
			fs *big.Int
		}{
			{p.f1, f},
			{p.f2, f},
			{g, p.f1},
			{g, p.f2},
		}
		for _, a := range attempts {
			if err := o.tryFactorByValue(ctx, a.n, []*big.Int{a.fs}); err != nil {
				return err
			}
		}
	}

	// higher multiplicity
	rest := new(big.Int).Set(g)
	mod := new(big.Int)
	for rest.Cmp(f) > 0 && mod.Mod(rest, f).Sign() == 0 {
		if err := o.tryFactorByValue(ctx, rest, []*big.Int{f}); err != nil {
			return err
		}
		rest.Quo(rest, f)
	}

	var mults []factorRef
	err = o.withConn(ctx, func(c *store.Conn) error {
		var err error
		mults, err = multiplesOf(ctx, c, nID)
		return err
	})
	if err != nil {
		return err
	}
	for _, m := range mults {
		if err := o.tryFactorByValue(ctx, m.Value, []*big.Int{f}); err != nil {
			return err
		}
	}
	return nil
}

// tryFactorByValue offers each of fs, smallest first, as a divisor of n.
// After the first accepted one the same list is tried on the quotient.
// Rejections are logged and dropped; anything else is returned.
func (o *operation) tryFactorByValue(ctx context.Context, n *big.Int, fs []*big.Int) error {
	sorted := slices.Clone(fs)
	slices.SortFunc(sorted, func(a, b *big.Int) int { return a.Cmp(b) })

	for _, f := range sorted {
		err := o.addFactor(ctx, n, f)
		if err == nil {
			return o.tryFactorByValue(ctx, new(big.Int).Quo(n, f), fs)
		}
		if !isRejection(err) {
			return err
		}
		o.log.Debug("attempt rejected", "code", CodeOf(err), "n_bits", n.BitLen(), "f", f.String())
	}
	return nil
}

// completeDependents re-completes every number depending on factorID.
func (o *operation) completeDependents(ctx context.Context, factorID int64) error {
	var nums []int64
	err := o.withConn(ctx, func(c *store.Conn) error {
		var err error
		nums, err = dependentNumbers(ctx, c, factorID)
		return err
	})
	if err != nil {
		return err
	}
	for _, id := range nums {
		if _, err := o.completeNumber(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
