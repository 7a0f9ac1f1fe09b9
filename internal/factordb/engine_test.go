package factordb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/factordb/internal/store"
)

func TestNew_Validation(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "factors.db"), store.Options{})
	require.NoError(t, err)
	defer s.Close()

	_, err = New(nil, DefaultConfig())
	assert.Error(t, err)

	tests := map[string]func(*Config){
		"provable below 64":      func(c *Config) { c.ProvableBits = 32 },
		"provable above probable": func(c *Config) { c.ProvableBits = 4096 },
		"zero max bits":          func(c *Config) { c.MaxNumberBits = 0 },
		"huge wheel":             func(c *Config) { c.TrialDivisionLimit = 1 << 30 },
	}
	for name, mod := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mod(&cfg)
			_, err := New(s, cfg)
			assert.Error(t, err)
		})
	}
}

func TestNew_TrialPrimes(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.TrialDivisionLimit = 30 })
	assert.Equal(t, []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}, env.e.trialPrimes)

	none := newTestEnv(t, func(c *Config) { c.TrialDivisionLimit = 0 })
	assert.Empty(t, none.e.trialPrimes)
}

func TestAddNumber_WiderWheel(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.TrialDivisionLimit = 13 })

	row, _, err := env.e.AddNumber(t.Context(), bi(91*4), nil)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 2, 7, 13}, row.SmallPrimes)
	assert.True(t, row.Complete)
}
