package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/factordb/internal/config"
	"github.com/roach88/factordb/internal/factordb"
	"github.com/roach88/factordb/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Database   string
	Verbose    bool
	Format     string // "json" | "text"

	// OpIDs overrides the operation id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	OpIDs factordb.OpIDGenerator

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the factordb CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "factordb",
		Short: "factordb - a consistent store of integer factorizations",
		Long: `factordb keeps, for every registered number, a tree of discovered factors
and derives which numbers are completely factored.

Factors may be reported in any order; every new split is propagated to all
numbers that share the factor.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default $XDG_CONFIG_HOME/factordb/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides database.path)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewAddNumberCommand(opts))
	cmd.AddCommand(NewAddFactorCommand(opts))
	cmd.AddCommand(NewCompleteCommand(opts))
	cmd.AddCommand(NewSetPrimalityCommand(opts, "set-prime"))
	cmd.AddCommand(NewSetPrimalityCommand(opts, "set-probable"))
	cmd.AddCommand(NewSetPrimalityCommand(opts, "set-composite"))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewFactorCommand(opts))
	cmd.AddCommand(NewProgressCommand(opts))
	cmd.AddCommand(NewSmallestCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// config loads the configuration once: defaults, then the config file,
// then FACTORDB_* variables, then flags.
func (o *RootOptions) config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}

	v := config.NewViper()
	if err := config.ReadFile(v, o.ConfigFile); err != nil {
		return nil, err
	}
	if o.Database != "" {
		v.Set("database.path", o.Database)
	}
	if o.Verbose {
		v.Set("logging.level", "debug")
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	o.cfg = cfg
	return cfg, nil
}

// newLogger builds the slog logger described by cfg. Invariant violations
// are rendered with level CRIT.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	hopts := &slog.HandlerOptions{
		Level:       cfg.LogLevel(),
		ReplaceAttr: replaceLevel,
	}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) > 0 {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= factordb.LevelCritical {
		a.Value = slog.StringValue("CRIT")
	}
	return a
}

// session is an open database and engine for the duration of a command.
type session struct {
	eng    *factordb.Engine
	store  *store.Store
	logger *slog.Logger
	out    *OutputFormatter
}

// openSession loads the configuration and opens the engine. Failures are
// reported through the formatter and returned as command errors.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	out := newFormatter(opts, cmd)

	cfg, err := opts.config()
	if err != nil {
		return nil, out.CommandError(ErrCodeConfig, "invalid configuration", err)
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	logger.Debug("opening database", "path", cfg.Database.Path, "max_connections", cfg.Database.MaxConnections)
	st, err := store.Open(cfg.Database.Path, cfg.StoreOptions())
	if err != nil {
		return nil, out.CommandError(ErrCodeDatabase, "failed to open database", err)
	}

	engOpts := []factordb.Option{factordb.WithLogger(logger)}
	if opts.OpIDs != nil {
		engOpts = append(engOpts, factordb.WithOpIDGenerator(opts.OpIDs))
	}
	eng, err := factordb.New(st, cfg.EngineConfig(), engOpts...)
	if err != nil {
		st.Close()
		return nil, out.CommandError(ErrCodeConfig, "failed to create engine", err)
	}

	return &session{eng: eng, store: st, logger: logger, out: out}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}
