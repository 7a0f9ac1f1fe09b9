package factordb

import (
	"context"
	"math/big"

	"github.com/roach88/factordb/internal/primality"
	"github.com/roach88/factordb/internal/store"
)

// Read-only lookups. Each runs in a single connection scope.

// NumberByID returns the number with the given id.
func (e *Engine) NumberByID(ctx context.Context, id int64) (*store.NumberRow, error) {
	return e.begin("number_by_id").reloadNumber(ctx, id)
}

// NumberByValue returns the number with the given value.
func (e *Engine) NumberByValue(ctx context.Context, v *big.Int) (*store.NumberRow, error) {
	o := e.begin("number_by_value")
	var row *store.NumberRow
	err := o.withConn(ctx, func(c *store.Conn) error {
		var err error
		row, err = c.NumberByValue(ctx, v)
		if store.IsNotFound(err) {
			return notFoundf("no number with value %s", v)
		}
		return err
	})
	return row, err
}

// FactorByID returns the factor with the given id.
func (e *Engine) FactorByID(ctx context.Context, id int64) (*store.FactorRow, error) {
	o := e.begin("factor_by_id")
	var row *store.FactorRow
	err := o.withConn(ctx, func(c *store.Conn) error {
		var err error
		row, err = c.FactorByID(ctx, id)
		if store.IsNotFound(err) {
			return &Error{Code: ErrCodeNotFound, Message: "no such factor", FactorID: id}
		}
		return err
	})
	return row, err
}

// FactorByValue returns the factor with the given value.
func (e *Engine) FactorByValue(ctx context.Context, v *big.Int) (*store.FactorRow, error) {
	o := e.begin("factor_by_value")
	var row *store.FactorRow
	err := o.withConn(ctx, func(c *store.Conn) error {
		var err error
		row, err = c.FactorByValue(ctx, v)
		if store.IsNotFound(err) {
			return notFoundf("no factor with value %s", v)
		}
		return err
	})
	return row, err
}

// NumberFactorization returns the number's current expanded factorization:
// packed small primes first, then the cofactor's split chain.
func (e *Engine) NumberFactorization(ctx context.Context, id int64) ([]FactorEntry, error) {
	o := e.begin("number_factorization")
	var out []FactorEntry
	err := o.withConn(ctx, func(c *store.Conn) error {
		n, err := c.NumberByID(ctx, id)
		if store.IsNotFound(err) {
			return &Error{Code: ErrCodeNotFound, Message: "no such number", NumberID: id}
		}
		if err != nil {
			return err
		}
		out, err = o.expandNumber(ctx, c, n)
		return err
	})
	return out, err
}

// FactorFactorization returns the split-chain expansion of a factor.
func (e *Engine) FactorFactorization(ctx context.Context, id int64) ([]FactorEntry, error) {
	o := e.begin("factor_factorization")
	var out []FactorEntry
	err := o.withConn(ctx, func(c *store.Conn) error {
		row, err := c.FactorByID(ctx, id)
		if store.IsNotFound(err) {
			return &Error{Code: ErrCodeNotFound, Message: "no such factor", FactorID: id}
		}
		if err != nil {
			return err
		}
		out, err = o.expandFactor(ctx, c, row)
		return err
	})
	return out, err
}

// ArchivedSplits returns the superseded splits of a factor, oldest first.
func (e *Engine) ArchivedSplits(ctx context.Context, factorID int64) ([]store.ArchivedSplit, error) {
	o := e.begin("archived_splits")
	var out []store.ArchivedSplit
	err := o.withConn(ctx, func(c *store.Conn) error {
		var err error
		out, err = c.ArchivedSplits(ctx, factorID)
		return err
	})
	return out, err
}

// QueueLimit bounds a work-queue query. Zero fields mean no bound.
type QueueLimit struct {
	Count   int
	MaxBits int
}

// SmallestUnknowns returns unclassified factors, smallest first.
func (e *Engine) SmallestUnknowns(ctx context.Context, lim QueueLimit) ([]*store.FactorRow, error) {
	return e.smallest(ctx, primality.Unknown, lim)
}

// SmallestComposites returns composite factors with no recorded split,
// smallest first.
func (e *Engine) SmallestComposites(ctx context.Context, lim QueueLimit) ([]*store.FactorRow, error) {
	return e.smallest(ctx, primality.Composite, lim)
}

// SmallestProbablePrimes returns probable primes awaiting proof, smallest
// first.
func (e *Engine) SmallestProbablePrimes(ctx context.Context, lim QueueLimit) ([]*store.FactorRow, error) {
	return e.smallest(ctx, primality.Probable, lim)
}

func (e *Engine) smallest(ctx context.Context, status primality.Status, lim QueueLimit) ([]*store.FactorRow, error) {
	if lim.Count < 0 || lim.MaxBits < 0 {
		return nil, validationf("queue limits must not be negative")
	}
	o := e.begin("smallest_" + status.String())
	var out []*store.FactorRow
	err := o.withConn(ctx, func(c *store.Conn) error {
		var err error
		out, err = c.SmallestFactors(ctx, status, lim.Count, lim.MaxBits)
		return err
	})
	return out, err
}

// Stats returns table counts.
func (e *Engine) Stats(ctx context.Context) (store.Stats, error) {
	o := e.begin("stats")
	var st store.Stats
	err := o.withConn(ctx, func(c *store.Conn) error {
		var err error
		st, err = c.Stats(ctx)
		return err
	})
	return st, err
}
