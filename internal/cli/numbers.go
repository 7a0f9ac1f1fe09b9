package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/factordb/internal/codec"
)

// AddNumberOptions holds flags for the add-number command.
type AddNumberOptions struct {
	*RootOptions
	Hints []string
}

// NewAddNumberCommand creates the add-number command.
func NewAddNumberCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddNumberOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add-number <value>",
		Short: "Register a number",
		Long: `Register a number, optionally with known factors.

Primes up to limits.trial_division_limit are divided out first. Hints of at
most 64 bits must be prime and are divided out as well; larger hints are
used to split the remaining cofactor. Adding an existing number applies the
hints to it.

Example:
  factordb add-number 91
  factordb add-number 618970019642690137449562111 --hint 7`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddNumber(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Hints, "hint", nil, "known factor (repeatable)")

	return cmd
}

func runAddNumber(opts *AddNumberOptions, arg string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)
	value, err := codec.ParseValue(arg)
	if err != nil {
		return out.CommandError(ErrCodeBadInput, "invalid number", err)
	}
	hints, err := codec.ParseValues(opts.Hints)
	if err != nil {
		return out.CommandError(ErrCodeBadInput, "invalid hint", err)
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := cmd.Context()

	row, created, err := s.eng.AddNumber(ctx, value, hints)
	if err != nil {
		return out.Fail(err)
	}
	view, err := s.showNumber(ctx, row.ID)
	if err != nil {
		return out.Fail(err)
	}
	view.Created = &created
	return out.Success(view)
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <number>",
		Short: "Re-derive a number's completion state",
		Long: `Re-derive a number's packed small primes, cofactor and complete flag from
its factor tree. A number is given by value or as #id.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNumber(rootOpts, cmd, args[0], func(s *session, id int64) error {
				_, err := s.eng.CompleteNumber(cmd.Context(), id)
				return err
			})
		},
	}
}

// NewFactorCommand creates the factor command.
func NewFactorCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "factor <number> <factor>...",
		Short: "Try factors against a number's unresolved parts",
		Long: `Offer each factor, smallest first, to every composite or unclassified
element of the number's factorization. Factors that divide nothing are
ignored.

Example:
  factordb factor '#3' 7 13`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := codec.ParseValues(args[1:])
			if err != nil {
				return newFormatter(rootOpts, cmd).CommandError(ErrCodeBadInput, "invalid factor", err)
			}
			return withNumber(rootOpts, cmd, args[0], func(s *session, id int64) error {
				return s.eng.FactorNumberWithFactors(cmd.Context(), id, fs)
			})
		},
	}
}

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Factor bool
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <number|factor>",
		Short: "Show a number or factor",
		Long: `Show a number and its current factorization, or with --factor a stored
factor with its split and archived splits. Rows are given by value or as #id.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Factor {
				return withFactor(rootOpts, cmd, args[0], nil)
			}
			return withNumber(rootOpts, cmd, args[0], nil)
		},
	}

	cmd.Flags().BoolVar(&opts.Factor, "factor", false, "show a factor instead of a number")

	return cmd
}

// withNumber resolves a number reference, runs fn (if any) and prints the
// number afterwards.
func withNumber(opts *RootOptions, cmd *cobra.Command, arg string, fn func(*session, int64) error) error {
	out := newFormatter(opts, cmd)
	r, err := parseRef(arg)
	if err != nil {
		return out.CommandError(ErrCodeBadInput, "invalid number", err)
	}

	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := cmd.Context()

	id, err := s.numberID(ctx, r)
	if err != nil {
		return out.Fail(err)
	}
	if fn != nil {
		if err := fn(s, id); err != nil {
			return out.Fail(err)
		}
	}
	view, err := s.showNumber(ctx, id)
	if err != nil {
		return out.Fail(err)
	}
	return out.Success(view)
}

// withFactor is withNumber for factors.
func withFactor(opts *RootOptions, cmd *cobra.Command, arg string, fn func(*session, int64) error) error {
	out := newFormatter(opts, cmd)
	r, err := parseRef(arg)
	if err != nil {
		return out.CommandError(ErrCodeBadInput, "invalid factor", err)
	}

	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := cmd.Context()

	id, err := s.factorID(ctx, r)
	if err != nil {
		return out.Fail(err)
	}
	if fn != nil {
		if err := fn(s, id); err != nil {
			return out.Fail(err)
		}
	}
	view, err := s.showFactor(ctx, id)
	if err != nil {
		return out.Fail(err)
	}
	return out.Success(view)
}
