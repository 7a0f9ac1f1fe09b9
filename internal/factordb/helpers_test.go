package factordb

import (
	"bytes"
	"context"
	"log/slog"
	"math/big"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/factordb/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mersenne(p uint) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), p)
	return m.Sub(m, big.NewInt(1))
}

var (
	m61  = mersenne(61)
	m89  = mersenne(89)
	m107 = mersenne(107)
	m127 = mersenne(127)
)

func bi(v int64) *big.Int { return big.NewInt(v) }

func mul(vs ...*big.Int) *big.Int {
	p := big.NewInt(1)
	for _, v := range vs {
		p.Mul(p, v)
	}
	return p
}

var bigComparer = cmp.Comparer(func(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})

// syncBuffer is a log sink safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	e    *Engine
	s    *store.Store
	logs *syncBuffer
}

// newTestEnv creates an engine over a fresh database. mods adjust the
// default config before the engine is built.
func newTestEnv(t *testing.T, mods ...func(*Config)) *testEnv {
	t.Helper()
	return newTestEnvWithPool(t, 0, mods...)
}

func newTestEnvWithPool(t *testing.T, maxConns int, mods ...func(*Config)) *testEnv {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "factors.db"), store.Options{MaxConnections: maxConns})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cfg := DefaultConfig()
	for _, m := range mods {
		m(&cfg)
	}

	logs := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e, err := New(s, cfg, WithLogger(logger), WithOpIDGenerator(NewSequenceGenerator("op")))
	require.NoError(t, err)
	return &testEnv{e: e, s: s, logs: logs}
}

func provable64(c *Config) { c.ProvableBits = 64 }

func (env *testEnv) factor(t *testing.T, v *big.Int) *store.FactorRow {
	t.Helper()
	row, err := env.e.FactorByValue(context.Background(), v)
	require.NoError(t, err, "factor %s", v)
	return row
}

func (env *testEnv) number(t *testing.T, id int64) *store.NumberRow {
	t.Helper()
	row, err := env.e.NumberByID(context.Background(), id)
	require.NoError(t, err)
	return row
}

// values returns the values of an expansion.
func values(entries []FactorEntry) []*big.Int {
	out := make([]*big.Int, len(entries))
	for i, fe := range entries {
		out[i] = fe.Value
	}
	return out
}
