package cli

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/factordb/internal/config"
	"github.com/roach88/factordb/internal/factordb"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "factordb", cmd.Use)
	assert.Contains(t, cmd.Long, "completely factored")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{
		"init", "add-number", "add-factor", "complete",
		"set-prime", "set-probable", "set-composite",
		"show", "factor", "progress", "smallest", "stats", "import", "batch",
	}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestAddNumberCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	addCmd, _, err := cmd.Find([]string{"add-number"})
	require.NoError(t, err)

	hintFlag := addCmd.Flags().Lookup("hint")
	require.NotNil(t, hintFlag)
	assert.Equal(t, "stringArray", hintFlag.Value.Type())
}

func TestSetPrimalityCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"set-prime", "set-probable", "set-composite"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)

		verifyFlag := sub.Flags().Lookup("verify")
		require.NotNil(t, verifyFlag, name)
		assert.Equal(t, "false", verifyFlag.DefValue)
	}
}

func TestSetPrimalityCommandUnknownName(t *testing.T) {
	assert.Panics(t, func() { NewSetPrimalityCommand(&RootOptions{}, "set-weird") })
}

func TestSmallestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	smallestCmd, _, err := cmd.Find([]string{"smallest"})
	require.NoError(t, err)

	countFlag := smallestCmd.Flags().Lookup("count")
	require.NotNil(t, countFlag)
	assert.Equal(t, "n", countFlag.Shorthand)
	assert.Equal(t, "10", countFlag.DefValue)

	maxBitsFlag := smallestCmd.Flags().Lookup("max-bits")
	require.NotNil(t, maxBitsFlag)
	assert.Equal(t, "0", maxBitsFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--format", "xml", "stats"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestNewLogger_CriticalLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := config.Default()
	logger := newLogger(cfg, buf)

	logger.Log(t.Context(), factordb.LevelCritical, "invariant violated")
	logger.Debug("hidden")

	assert.Contains(t, buf.String(), "level=CRIT")
	assert.Contains(t, buf.String(), "invariant violated")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewLogger_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := config.Default()
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "warn"
	logger := newLogger(cfg, buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.Int64("factor", 3))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"factor":3`)
}
