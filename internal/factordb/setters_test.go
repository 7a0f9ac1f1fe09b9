package factordb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/factordb/internal/primality"
)

// twoProbables registers m89*m107 as a number with provable limit 64, so
// that after the split both halves are probable primes awaiting proof.
func twoProbables(t *testing.T, env *testEnv) (numberID, p1, p2 int64) {
	t.Helper()
	ctx := context.Background()

	num, _, err := env.e.AddNumber(ctx, mul(m89, m107), nil)
	require.NoError(t, err)
	require.NoError(t, env.e.AddFactor(ctx, mul(m89, m107), m89))

	a, b := env.factor(t, m89), env.factor(t, m107)
	require.Equal(t, primality.Probable, a.Primality)
	require.Equal(t, primality.Probable, b.Primality)
	require.False(t, env.number(t, num.ID).Complete)
	return num.ID, a.ID, b.ID
}

func TestSetFactorPrime_CompletesDependents(t *testing.T) {
	env := newTestEnv(t, provable64)
	ctx := context.Background()
	num, p1, p2 := twoProbables(t, env)

	require.NoError(t, env.e.SetFactorPrime(ctx, p1, true))
	assert.False(t, env.number(t, num).Complete)

	require.NoError(t, env.e.SetFactorPrime(ctx, p2, true))
	assert.True(t, env.number(t, num).Complete)
	assert.Equal(t, primality.Prime, env.factor(t, m89).Primality)
}

func TestSetFactorComposite_UncompletesDependents(t *testing.T) {
	env := newTestEnv(t, provable64)
	ctx := context.Background()
	num, p1, p2 := twoProbables(t, env)

	require.NoError(t, env.e.SetFactorPrime(ctx, p1, false))
	require.NoError(t, env.e.SetFactorPrime(ctx, p2, false))
	require.True(t, env.number(t, num).Complete)

	// the test disagrees: m89 is prime
	err := env.e.SetFactorComposite(ctx, p1, true)
	assert.True(t, IsVerificationFailed(err), "got %v", err)
	assert.True(t, env.number(t, num).Complete)
	assert.Contains(t, env.logs.String(), "primality verification failed")

	// an explicit correction without verification goes through
	require.NoError(t, env.e.SetFactorComposite(ctx, p1, false))
	assert.Equal(t, primality.Composite, env.factor(t, m89).Primality)
	assert.False(t, env.number(t, num).Complete)
	assert.Contains(t, env.logs.String(), "primality corrected")
}

func TestSetFactorProbable_DemotionUncompletes(t *testing.T) {
	env := newTestEnv(t, provable64)
	ctx := context.Background()
	num, p1, p2 := twoProbables(t, env)

	require.NoError(t, env.e.SetFactorPrime(ctx, p1, false))
	require.NoError(t, env.e.SetFactorPrime(ctx, p2, false))
	require.True(t, env.number(t, num).Complete)

	require.NoError(t, env.e.SetFactorProbable(ctx, p2, true))
	assert.False(t, env.number(t, num).Complete)
}

func TestSetFactor_SameStateIsNoop(t *testing.T) {
	env := newTestEnv(t, provable64)
	ctx := context.Background()
	_, p1, _ := twoProbables(t, env)

	require.NoError(t, env.e.SetFactorProbable(ctx, p1, true))
	assert.Equal(t, primality.Probable, env.factor(t, m89).Primality)
}

func TestSetFactor_SameStateStillVerifies(t *testing.T) {
	env := newTestEnv(t, provable64)
	ctx := context.Background()

	row, err := env.e.GetOrCreateFactor(ctx, mul(m89, m107))
	require.NoError(t, err)

	// wrongly marked prime by hand, then re-checked
	require.NoError(t, env.e.SetFactorPrime(ctx, row.ID, false))
	err = env.e.SetFactorPrime(ctx, row.ID, true)
	assert.True(t, IsVerificationFailed(err), "got %v", err)
	assert.Equal(t, primality.Prime, env.factor(t, mul(m89, m107)).Primality)

	require.NoError(t, env.e.SetFactorComposite(ctx, row.ID, false))
	require.NoError(t, env.e.SetFactorComposite(ctx, row.ID, true))

	m89Row, err := env.e.GetOrCreateFactor(ctx, m89)
	require.NoError(t, err)
	require.NoError(t, env.e.SetFactorComposite(ctx, m89Row.ID, false))
	err = env.e.SetFactorComposite(ctx, m89Row.ID, true)
	assert.True(t, IsVerificationFailed(err), "got %v", err)
}

func TestSetFactor_Rejections(t *testing.T) {
	env := newTestEnv(t, provable64)
	ctx := context.Background()

	small, err := env.e.GetOrCreateFactor(ctx, bi(91))
	require.NoError(t, err)
	composite, err := env.e.GetOrCreateFactor(ctx, mul(m89, m107))
	require.NoError(t, err)
	require.NoError(t, env.e.AddFactor(ctx, mul(m89, m107), m89))

	// small enough to prove
	err = env.e.SetFactorPrime(ctx, small.ID, false)
	assert.True(t, IsValidation(err), "got %v", err)

	// a split factor cannot be prime
	err = env.e.SetFactorPrime(ctx, composite.ID, false)
	assert.True(t, IsValidation(err), "got %v", err)
	err = env.e.SetFactorProbable(ctx, composite.ID, false)
	assert.True(t, IsValidation(err), "got %v", err)

	// already composite
	require.NoError(t, env.e.SetFactorComposite(ctx, composite.ID, true))

	err = env.e.SetFactorPrime(ctx, 12345, false)
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestSetFactorPrime_VerificationRejectsComposite(t *testing.T) {
	env := newTestEnv(t, provable64)
	ctx := context.Background()

	row, err := env.e.GetOrCreateFactor(ctx, mul(m89, m107))
	require.NoError(t, err)

	err = env.e.SetFactorPrime(ctx, row.ID, true)
	assert.True(t, IsVerificationFailed(err), "got %v", err)
	assert.Equal(t, primality.Composite, env.factor(t, mul(m89, m107)).Primality)
}
