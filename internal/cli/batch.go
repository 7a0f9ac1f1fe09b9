package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/factordb/internal/harness"
)

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <script.yaml>",
		Short: "Run a script of operations",
		Long: `Run a YAML script of operations against the database, in order, and
print the outcome of each step. A step may name the outcome it expects
(ok, created, existing, complete, incomplete or an error code); the command
exits with code 1 if any step does not meet its expectation.

Example script:
  name: mersenne
  steps:
    - op: add_number
      value: "M89 * 7"
    - op: set_probable
      value: M89
      expect: VALIDATION`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			script, err := harness.LoadScript(args[0])
			if err != nil {
				return out.CommandError(ErrCodeBadInput, "invalid script", err)
			}

			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			result := harness.NewResult()
			if err := harness.NewRunner(s.eng, s.logger).Execute(cmd.Context(), script.Steps, result); err != nil {
				return out.CommandError(ErrCodeBadInput, "invalid script", err)
			}

			if err := out.Success(BatchView{Name: script.Name, Result: result}); err != nil {
				return err
			}
			if !result.Pass {
				return NewExitError(ExitFailure, fmt.Sprintf("%d steps failed", len(result.Errors)))
			}
			return nil
		},
	}
}

// BatchView is the output of the batch command.
type BatchView struct {
	Name string `json:"name,omitempty"`
	*harness.Result
}

func (v BatchView) String() string {
	var b strings.Builder
	if v.Name != "" {
		fmt.Fprintf(&b, "%s\n", v.Name)
	}
	for _, ev := range v.Trace {
		arg := ev.Value
		switch {
		case ev.Factor != "":
			arg += " " + ev.Factor
		case len(ev.Factors) > 0:
			arg += " " + strings.Join(ev.Factors, " ")
		}
		fmt.Fprintf(&b, "%3d %-14s %s: %s\n", ev.Seq, ev.Op, arg, ev.Outcome)
	}
	for _, e := range v.Errors {
		fmt.Fprintf(&b, "FAIL %s\n", e)
	}
	if v.Pass {
		b.WriteString("PASS")
	} else {
		b.WriteString("FAIL")
	}
	return b.String()
}
