package cli

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"math/big"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/factordb/internal/codec"
	"github.com/roach88/factordb/internal/factordb"
)

// maxImportLine bounds one line of an import file. A 65536-bit number has
// under 20000 digits.
const maxImportLine = 1 << 20

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Strict bool
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Register numbers from a file",
		Long: `Register every number listed in a file, one per line, optionally followed
by hints separated by whitespace. Blank lines and lines starting with # are
skipped. Use - to read from standard input.

Numbers are added concurrently. A rejected line does not stop the import;
with --strict the command exits with code 1 if any line was rejected.

Example file:
  # Mersenne numbers
  2047 23 89
  8388607`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit with code 1 if any line is rejected")

	return cmd
}

// ImportView summarizes an import.
type ImportView struct {
	Added      int               `json:"added"`
	Existing   int               `json:"existing"`
	Rejected   int               `json:"rejected"`
	Rejections []ImportRejection `json:"rejections,omitempty"`
}

// ImportRejection is one line that could not be imported.
type ImportRejection struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

func (v ImportView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "added %d, existing %d, rejected %d", v.Added, v.Existing, v.Rejected)
	for _, r := range v.Rejections {
		fmt.Fprintf(&b, "\n  line %d: %s", r.Line, r.Error)
	}
	return b.String()
}

// importLine is a parsed line of an import file.
type importLine struct {
	line  int
	input factordb.NumberInput
}

// readImport parses an import file. Lines that fail to parse are returned
// as rejections.
func readImport(r io.Reader) ([]importLine, []ImportRejection, error) {
	var lines []importLine
	var rejected []ImportRejection

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxImportLine)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		value, err := codec.ParseValue(fields[0])
		if err != nil {
			rejected = append(rejected, ImportRejection{Line: n, Error: err.Error()})
			continue
		}
		hints := make([]*big.Int, 0, len(fields)-1)
		if len(fields) > 1 {
			hints, err = codec.ParseValues(fields[1:])
			if err != nil {
				rejected = append(rejected, ImportRejection{Line: n, Error: err.Error()})
				continue
			}
		}
		lines = append(lines, importLine{line: n, input: factordb.NumberInput{Value: value, Hints: hints}})
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return lines, rejected, nil
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	var in io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return out.CommandError(ErrCodeBadInput, "failed to open import file", err)
		}
		defer f.Close()
		in = f
	}

	lines, rejected, err := readImport(in)
	if err != nil {
		return out.CommandError(ErrCodeBadInput, "failed to read import file", err)
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	inputs := make([]factordb.NumberInput, len(lines))
	for i, l := range lines {
		inputs[i] = l.input
	}
	results, err := s.eng.AddNumbers(cmd.Context(), inputs)
	if err != nil {
		return out.Fail(err)
	}

	view := ImportView{}
	for i, res := range results {
		switch {
		case res.Err != nil:
			rejected = append(rejected, ImportRejection{Line: lines[i].line, Error: res.Err.Error()})
		case res.Created:
			view.Added++
		default:
			view.Existing++
		}
	}
	sortRejections(rejected)
	view.Rejected = len(rejected)
	view.Rejections = rejected
	s.logger.Info("import finished", "added", view.Added, "existing", view.Existing, "rejected", view.Rejected)

	if err := out.Success(view); err != nil {
		return err
	}
	if opts.Strict && view.Rejected > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d lines rejected", view.Rejected))
	}
	return nil
}

func sortRejections(rs []ImportRejection) {
	slices.SortFunc(rs, func(a, b ImportRejection) int { return cmp.Compare(a.Line, b.Line) })
}
