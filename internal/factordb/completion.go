package factordb

import (
	"context"
	"fmt"
	"math/big"
	"slices"

	"github.com/roach88/factordb/internal/codec"
	"github.com/roach88/factordb/internal/primality"
	"github.com/roach88/factordb/internal/store"
)

// FactorEntry is one element of an expanded factorization.
type FactorEntry struct {
	Value     *big.Int
	Primality primality.Status

	// FactorID is zero for packed small primes.
	FactorID int64
}

func (fe FactorEntry) String() string {
	return fmt.Sprintf("%s(%s)", fe.Value, fe.Primality)
}

// expandFactor walks a split chain: each split contributes its f1 as an
// entry and the walk continues into f2 until a factor without a split is
// reached, which is the last entry.
func (o *operation) expandFactor(ctx context.Context, c *store.Conn, row *store.FactorRow) ([]FactorEntry, error) {
	var (
		out     []FactorEntry
		visited = map[int64]bool{}
		cur     = row
	)
	for {
		if visited[cur.ID] {
			return nil, o.violation(ctx, &Error{
				Code:     ErrCodeInvariant,
				Message:  "split chain revisits a factor",
				FactorID: cur.ID,
			})
		}
		visited[cur.ID] = true

		if !cur.HasSplit() {
			out = append(out, FactorEntry{Value: cur.Value, Primality: cur.Primality, FactorID: cur.ID})
			return out, nil
		}

		f1, err := c.FactorByID(ctx, cur.F1ID)
		if err != nil {
			return nil, fmt.Errorf("expand factor %d: %w", cur.ID, err)
		}
		f2, err := c.FactorByID(ctx, cur.F2ID)
		if err != nil {
			return nil, fmt.Errorf("expand factor %d: %w", cur.ID, err)
		}
		if o.cfg.ExtraChecks {
			if new(big.Int).Mul(f1.Value, f2.Value).Cmp(cur.Value) != 0 {
				return nil, o.violation(ctx, &Error{
					Code:     ErrCodeInvariant,
					Message:  "split does not multiply to value",
					FactorID: cur.ID,
				})
			}
		}
		out = append(out, FactorEntry{Value: f1.Value, Primality: f1.Primality, FactorID: f1.ID})
		cur = f2
	}
}

// expandNumber returns the number's packed small primes followed by the
// expansion of its cofactor. The product of the result is checked against
// the number's value.
func (o *operation) expandNumber(ctx context.Context, c *store.Conn, n *store.NumberRow) ([]FactorEntry, error) {
	if o.cfg.ExtraChecks {
		if err := codec.ValidateSmallPrimes(codec.PackSmallPrimes(n.SmallPrimes)); err != nil {
			return nil, o.violation(ctx, &Error{
				Code:     ErrCodeInvariant,
				Message:  "stored small primes are invalid",
				NumberID: n.ID,
				Err:      err,
			})
		}
	}

	out := make([]FactorEntry, 0, len(n.SmallPrimes)+1)
	for _, p := range n.SmallPrimes {
		out = append(out, FactorEntry{Value: new(big.Int).SetUint64(p), Primality: primality.Prime})
	}

	if n.CofactorID != 0 {
		cof, err := c.FactorByID(ctx, n.CofactorID)
		if err != nil {
			return nil, fmt.Errorf("expand number %d: %w", n.ID, err)
		}
		rest, err := o.expandFactor(ctx, c, cof)
		if err != nil {
			return nil, err
		}
		out = append(out, rest...)
	}

	if product(out).Cmp(n.Value) != 0 {
		return nil, o.violation(ctx, &Error{
			Code:     ErrCodeInvariant,
			Message:  "expanded factors do not multiply to number value",
			NumberID: n.ID,
		})
	}
	return out, nil
}

func product(entries []FactorEntry) *big.Int {
	p := big.NewInt(1)
	for _, e := range entries {
		p.Mul(p, e.Value)
	}
	return p
}

// CompleteNumber re-derives a number's state from its factor tree. Every
// expanded entry that is a proven prime below 2^64 is packed into the row,
// the rest becomes the cofactor, and the complete flag is set when every
// entry is proven prime. Returns true if the number is complete.
//
// A number already marked complete is left untouched.
func (e *Engine) CompleteNumber(ctx context.Context, id int64) (bool, error) {
	return e.begin("complete_number").completeNumber(ctx, id)
}

func (o *operation) completeNumber(ctx context.Context, id int64) (bool, error) {
	var (
		n       *store.NumberRow
		entries []FactorEntry
	)
	err := o.withConn(ctx, func(c *store.Conn) error {
		var err error
		n, err = c.NumberByID(ctx, id)
		if store.IsNotFound(err) {
			return &Error{Code: ErrCodeNotFound, Message: "no such number", NumberID: id}
		}
		if err != nil {
			return err
		}
		if n.Complete {
			return nil
		}
		entries, err = o.expandNumber(ctx, c, n)
		return err
	})
	if err != nil {
		return false, err
	}
	if n.Complete {
		return true, nil
	}

	complete := true
	var small []uint64
	cof := new(big.Int).Set(n.Value)
	for _, fe := range entries {
		if fe.Primality != primality.Prime {
			complete = false
			continue
		}
		if fe.Value.BitLen() <= 64 {
			small = append(small, fe.Value.Uint64())
			cof.Quo(cof, fe.Value)
		}
	}
	// a smaller prime may have been found after a larger one
	slices.Sort(small)

	var cofID int64
	err = o.withConn(ctx, func(c *store.Conn) error {
		if cof.Cmp(bigOne) != 0 {
			row, err := o.getOrCreate(ctx, c, cof)
			if err != nil {
				return err
			}
			cofID = row.ID
		}
		st := store.NumberState{SmallPrimes: small, CofactorID: cofID, Complete: complete}
		if err := c.UpdateNumber(ctx, id, st); err != nil {
			return err
		}
		return c.Commit()
	})
	if err != nil {
		return false, err
	}

	if complete {
		o.log.Info("completed number", "number", id)
	} else {
		o.log.Debug("number still incomplete", "number", id, "cofactor", cofID, "small_primes", len(small))
	}
	return complete, nil
}
