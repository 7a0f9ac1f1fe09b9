package factordb

import (
	"context"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/factordb/internal/codec"
	"github.com/roach88/factordb/internal/store"
)

func TestCompleteNumber_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	row, _, err := env.e.AddNumber(ctx, mul(bi(2), bi(7), m89), []*big.Int{m89})
	require.NoError(t, err)
	require.True(t, row.Complete)

	for i := 0; i < 2; i++ {
		done, err := env.e.CompleteNumber(ctx, row.ID)
		require.NoError(t, err)
		assert.True(t, done)

		got := env.number(t, row.ID)
		if diff := cmp.Diff(row, got, bigComparer); diff != "" {
			t.Errorf("call %d changed the number (-before +after):\n%s", i, diff)
		}
	}
}

func TestCompleteNumber_IncompleteStaysIncomplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	row, _, err := env.e.AddNumber(ctx, mul(m89, m107), nil)
	require.NoError(t, err)

	done, err := env.e.CompleteNumber(ctx, row.ID)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, row.CofactorID, env.number(t, row.ID).CofactorID)
}

func TestCompleteNumber_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.e.CompleteNumber(context.Background(), 42)
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestCompleteNumber_ProductMismatchIsFatal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	row, _, err := env.e.AddNumber(ctx, bi(12), nil)
	require.NoError(t, err)

	// corrupt the row: 2*2*5 != 12
	err = env.s.WithConn(ctx, func(c *store.Conn) error {
		packed := codec.PackSmallPrimes([]uint64{2, 2, 5})
		if _, err := c.Exec(ctx, "UPDATE numbers SET spf2 = ?, complete = 0 WHERE id = ?", packed.Spf2, row.ID); err != nil {
			return err
		}
		return c.Commit()
	})
	require.NoError(t, err)

	_, err = env.e.CompleteNumber(ctx, row.ID)
	assert.True(t, IsInvariantViolation(err), "got %v", err)
	assert.Contains(t, env.logs.String(), `"level":"ERROR+4"`)

	_, err = env.e.NumberFactorization(ctx, row.ID)
	assert.True(t, IsInvariantViolation(err), "got %v", err)
}

func TestCompleteNumber_ExtraChecksCatchBadSplit(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.ExtraChecks = true })
	ctx := context.Background()

	row, _, err := env.e.AddNumber(ctx, bi(91), []*big.Int{})
	require.NoError(t, err)
	cof := env.factor(t, bi(91))
	seven, err := env.e.GetOrCreateFactor(ctx, bi(7))
	require.NoError(t, err)
	eleven, err := env.e.GetOrCreateFactor(ctx, bi(11))
	require.NoError(t, err)

	// 7*11 != 91
	err = env.s.WithConn(ctx, func(c *store.Conn) error {
		if err := c.SetSplit(ctx, cof.ID, seven.ID, eleven.ID); err != nil {
			return err
		}
		return c.Commit()
	})
	require.NoError(t, err)

	_, err = env.e.CompleteNumber(ctx, row.ID)
	assert.True(t, IsInvariantViolation(err), "got %v", err)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, cof.ID, fe.FactorID)
}

func TestEngine_PoolExhaustion(t *testing.T) {
	env := newTestEnvWithPool(t, 1)
	ctx := context.Background()

	err := env.s.WithConn(ctx, func(*store.Conn) error {
		_, err := env.e.Stats(ctx)
		assert.True(t, IsResourceExhausted(err), "got %v", err)
		assert.ErrorIs(t, err, store.ErrResourceExhausted)
		assert.Equal(t, ErrCodeResourceExhausted, CodeOf(err))

		_, _, err = env.e.AddNumber(ctx, bi(12), nil)
		assert.True(t, IsResourceExhausted(err), "got %v", err)
		return nil
	})
	require.NoError(t, err)

	// freed once the holder returns
	_, _, err = env.e.AddNumber(ctx, bi(12), nil)
	assert.NoError(t, err)
}
