package factordb

import (
	"context"
	"math/big"

	"github.com/roach88/factordb/internal/store"
)

var bigOne = big.NewInt(1)

// getOrCreate returns the factor with value v, inserting it if absent.
// Runs inside c's current transaction; the caller commits.
func (o *operation) getOrCreate(ctx context.Context, c *store.Conn, v *big.Int) (*store.FactorRow, error) {
	if v.Cmp(bigOne) <= 0 {
		return nil, o.violation(ctx, invariantf("factor value %s must exceed 1", v))
	}

	row, err := c.FactorByValue(ctx, v)
	if err == nil {
		return row, nil
	}
	if !store.IsNotFound(err) {
		return nil, err
	}

	row, err = c.InsertFactor(ctx, v, o.classifier.Classify(v))
	if err != nil {
		return nil, err
	}
	o.log.Info("added factor", "factor", row.ID, "bits", v.BitLen(), "primality", row.Primality)
	if v.BitLen() <= 64 {
		o.log.Warn("registered small factor", "factor", row.ID, "value", v.String(), "bits", v.BitLen())
	}
	return row, nil
}

// GetOrCreateFactor returns the factor with value v, registering it with its
// initial classification if absent. v must exceed 1.
func (e *Engine) GetOrCreateFactor(ctx context.Context, v *big.Int) (*store.FactorRow, error) {
	if v == nil || v.Cmp(bigOne) <= 0 {
		return nil, validationf("factor value must exceed 1")
	}
	if v.BitLen() > e.cfg.MaxNumberBits {
		return nil, validationf("factor exceeds size limit (%d > %d bits)", v.BitLen(), e.cfg.MaxNumberBits)
	}

	o := e.begin("get_or_create_factor")
	var row *store.FactorRow
	err := o.withConn(ctx, func(c *store.Conn) error {
		var err error
		if row, err = o.getOrCreate(ctx, c, v); err != nil {
			return err
		}
		return c.Commit()
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}
