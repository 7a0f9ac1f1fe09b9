package factordb

import (
	"context"
	"math/big"

	"github.com/roach88/factordb/internal/primality"
	"github.com/roach88/factordb/internal/store"
)

// MakeFactorProgress uses a factor's known expansion to split every factor
// reachable below it, current and archived splits alike. For each such
// divisor the first expansion entry dividing it is offered. Best-effort.
func (e *Engine) MakeFactorProgress(ctx context.Context, id int64) error {
	o := e.begin("make_factor_progress")

	var (
		entries []FactorEntry
		divs    []factorRef
	)
	err := o.withConn(ctx, func(c *store.Conn) error {
		row, err := c.FactorByID(ctx, id)
		if store.IsNotFound(err) {
			return &Error{Code: ErrCodeNotFound, Message: "no such factor", FactorID: id}
		}
		if err != nil {
			return err
		}
		if entries, err = o.expandFactor(ctx, c, row); err != nil {
			return err
		}
		divs, err = divisorsOf(ctx, c, id)
		return err
	})
	if err != nil {
		return err
	}

	mod := new(big.Int)
	for _, d := range divs {
		for _, fe := range entries {
			if mod.Mod(d.Value, fe.Value).Sign() != 0 {
				continue
			}
			if fe.Value.BitLen() <= 64 && fe.Primality == primality.Prime {
				o.log.Debug("divisor has small factor", "factor", d.ID, "small", fe.Value.String())
			}
			err := o.addFactor(ctx, d.Value, fe.Value)
			if err != nil && !isRejection(err) {
				return err
			}
			break
		}
	}
	return nil
}
