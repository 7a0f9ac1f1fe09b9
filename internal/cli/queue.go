package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/factordb/internal/factordb"
	"github.com/roach88/factordb/internal/store"
)

// SmallestOptions holds flags for the smallest command.
type SmallestOptions struct {
	*RootOptions
	Count   int
	MaxBits int
}

// NewSmallestCommand creates the smallest command.
func NewSmallestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SmallestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "smallest <unknown|composite|probable>",
		Short: "List work for factoring and primality workers",
		Long: `List stored factors in one work queue, smallest first:

  unknown    factors too large to classify on registration
  composite  composites with no recorded split
  probable   probable primes awaiting a proof`,
		Args:          cobra.ExactArgs(1),
		ValidArgs:     []string{"unknown", "composite", "probable"},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmallest(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 10, "maximum number of factors (0 for all)")
	cmd.Flags().IntVar(&opts.MaxBits, "max-bits", 0, "only factors of at most this many bits (0 for any)")

	return cmd
}

func runSmallest(opts *SmallestOptions, queue string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	var list func(*factordb.Engine, context.Context, factordb.QueueLimit) ([]*store.FactorRow, error)
	switch queue {
	case "unknown":
		list = (*factordb.Engine).SmallestUnknowns
	case "composite":
		list = (*factordb.Engine).SmallestComposites
	case "probable":
		list = (*factordb.Engine).SmallestProbablePrimes
	default:
		return out.CommandError(ErrCodeBadInput, "unknown queue "+queue, nil)
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	rows, err := list(s.eng, cmd.Context(), factordb.QueueLimit{Count: opts.Count, MaxBits: opts.MaxBits})
	if err != nil {
		return out.Fail(err)
	}
	views := make(FactorList, len(rows))
	for i, r := range rows {
		views[i] = factorView(r)
	}
	return out.Success(views)
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats",
		Short:         "Show database counters",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.eng.Stats(cmd.Context())
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(statsView(st))
		},
	}
}
