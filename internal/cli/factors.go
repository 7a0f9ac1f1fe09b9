package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/factordb/internal/codec"
)

// NewAddFactorCommand creates the add-factor command.
func NewAddFactorCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-factor <composite> <divisor>",
		Short: "Record a divisor of a stored factor",
		Long: `Record that divisor divides the stored factor composite (given by value
or as #id). The split is kept if composite had none or if it has a smaller
first factor than the recorded one; the discovery is then propagated to
every multiple and dependent number.

Exits with code 1 and NOT_BETTER when the recorded split is at least as
good.

Example:
  factordb add-factor 91 7
  factordb add-factor '#12' 65537`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := codec.ParseValue(args[1])
			if err != nil {
				return newFormatter(rootOpts, cmd).CommandError(ErrCodeBadInput, "invalid divisor", err)
			}
			return withFactor(rootOpts, cmd, args[0], func(s *session, id int64) error {
				return s.eng.AddFactorByID(cmd.Context(), id, f)
			})
		},
	}
}

// SetPrimalityOptions holds flags for the set-prime, set-probable and
// set-composite commands.
type SetPrimalityOptions struct {
	*RootOptions
	Verify bool
}

// NewSetPrimalityCommand creates one of set-prime, set-probable or
// set-composite.
func NewSetPrimalityCommand(rootOpts *RootOptions, name string) *cobra.Command {
	opts := &SetPrimalityOptions{RootOptions: rootOpts}

	var state string
	switch name {
	case "set-prime":
		state = "proven prime"
	case "set-probable":
		state = "probable prime"
	case "set-composite":
		state = "composite"
	default:
		panic(fmt.Sprintf("cli: unknown primality command %q", name))
	}

	cmd := &cobra.Command{
		Use:   name + " <factor>",
		Short: "Mark a factor as " + state,
		Long: fmt.Sprintf(`Mark a stored factor (given by value or as #id) as %s.

Only factors above limits.provable_bits may be changed by hand. Numbers that
depend on the factor are re-completed. With --verify a probable-prime test
must agree before the change is made.`, state),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFactor(rootOpts, cmd, args[0], func(s *session, id int64) error {
				ctx := cmd.Context()
				switch name {
				case "set-prime":
					return s.eng.SetFactorPrime(ctx, id, opts.Verify)
				case "set-probable":
					return s.eng.SetFactorProbable(ctx, id, opts.Verify)
				default:
					return s.eng.SetFactorComposite(ctx, id, opts.Verify)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "run a probable-prime test first")

	return cmd
}

// NewProgressCommand creates the progress command.
func NewProgressCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <factor>",
		Short: "Split everything below a factor using its known factorization",
		Long: `Use the known factorization of a stored factor (given by value or as #id)
to split every factor reachable below it through current and archived
splits. Best-effort: divisors that cannot be improved are left alone.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFactor(rootOpts, cmd, args[0], func(s *session, id int64) error {
				return s.eng.MakeFactorProgress(cmd.Context(), id)
			})
		},
	}
}
