package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/factordb/internal/factordb"
	"github.com/roach88/factordb/internal/store"
	"github.com/roach88/factordb/internal/testutil"
)

// Runner executes steps against an engine.
type Runner struct {
	eng    *factordb.Engine
	logger *slog.Logger
}

// NewRunner creates a Runner. A nil logger discards step logs.
func NewRunner(eng *factordb.Engine, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{eng: eng, logger: logger}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh database in a temporary directory, with
// a fixed operation id and engine logs discarded, so that two runs of the
// same scenario produce identical results.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "factordb-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}
	defer os.RemoveAll(dir)

	st, err := store.Open(filepath.Join(dir, "scenario.db"), store.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario store: %w", err)
	}
	defer st.Close()

	eng, err := factordb.New(st, scenario.engineConfig(),
		factordb.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		factordb.WithOpIDGenerator(testutil.NewFixedOpIDGenerator(scenario.OpID)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	r := NewRunner(eng, nil)
	result := NewResult()
	if err := r.Execute(ctx, scenario.Steps, result); err != nil {
		return nil, err
	}

	for _, msg := range r.EvaluateAssertions(ctx, scenario.Assertions) {
		result.AddError(msg)
	}

	state, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	result.State = state
	return result, nil
}

func (s *Scenario) engineConfig() factordb.Config {
	cfg := factordb.DefaultConfig()
	if s.Limits == nil {
		return cfg
	}
	if s.Limits.ProvableBits != 0 {
		cfg.ProvableBits = s.Limits.ProvableBits
	}
	if s.Limits.ProbableBits != 0 {
		cfg.ProbableBits = s.Limits.ProbableBits
	}
	if s.Limits.TrialDivisionLimit != nil {
		cfg.TrialDivisionLimit = *s.Limits.TrialDivisionLimit
	}
	cfg.ExtraChecks = s.Limits.ExtraChecks
	return cfg
}

// Execute runs steps in order, appending one trace event per step.
//
// Engine errors do not stop execution: they are recorded as the step's
// outcome, and a step whose outcome differs from its Expect marks the
// result failed. Malformed steps and context cancellation return an
// error.
func (r *Runner) Execute(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := validateStep(step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		outcome, err := r.execute(ctx, step)
		if err != nil {
			outcome = string(factordb.CodeOf(err))
			if outcome == "" {
				outcome = OutcomeError
			}
		}
		result.addTrace(step, outcome)
		r.logger.Info("step executed", "step", i, "op", step.Op, "value", step.Value, "outcome", outcome)

		switch {
		case step.Expect != "" && step.Expect != outcome:
			result.AddError(fmt.Sprintf("step %d (%s %s): expected %s, got %s", i, step.Op, step.Value, step.Expect, outcome))
		case step.Expect == "" && err != nil:
			result.AddError(fmt.Sprintf("step %d (%s %s): %v", i, step.Op, step.Value, err))
		}
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, step Step) (string, error) {
	// validated by the caller
	value, _ := ParseValue(step.Value)
	factors, _ := ParseValues(step.Factors)

	switch step.Op {
	case OpAddNumber:
		_, created, err := r.eng.AddNumber(ctx, value, factors)
		if err != nil {
			return "", err
		}
		if created {
			return OutcomeCreated, nil
		}
		return OutcomeExisting, nil

	case OpAddFactor:
		f, _ := ParseValue(step.Factor)
		return OutcomeOK, r.eng.AddFactor(ctx, value, f)

	case OpSetPrime, OpSetProbable, OpSetComposite:
		row, err := r.eng.FactorByValue(ctx, value)
		if err != nil {
			return "", err
		}
		return OutcomeOK, r.setPrimality(ctx, step.Op, row.ID, step.Verify)

	case OpComplete:
		row, err := r.eng.NumberByValue(ctx, value)
		if err != nil {
			return "", err
		}
		done, err := r.eng.CompleteNumber(ctx, row.ID)
		if err != nil {
			return "", err
		}
		if done {
			return OutcomeComplete, nil
		}
		return OutcomeIncomplete, nil

	case OpFactorNumber:
		row, err := r.eng.NumberByValue(ctx, value)
		if err != nil {
			return "", err
		}
		return OutcomeOK, r.eng.FactorNumberWithFactors(ctx, row.ID, factors)

	case OpMakeProgress:
		row, err := r.eng.FactorByValue(ctx, value)
		if err != nil {
			return "", err
		}
		return OutcomeOK, r.eng.MakeFactorProgress(ctx, row.ID)
	}
	return "", fmt.Errorf("unknown op %q", step.Op)
}

func (r *Runner) setPrimality(ctx context.Context, op string, id int64, verify bool) error {
	switch op {
	case OpSetPrime:
		return r.eng.SetFactorPrime(ctx, id, verify)
	case OpSetProbable:
		return r.eng.SetFactorProbable(ctx, id, verify)
	default:
		return r.eng.SetFactorComposite(ctx, id, verify)
	}
}

// Snapshot reads every number and factor from the engine's store.
func (r *Runner) Snapshot(ctx context.Context) (*State, error) {
	state := &State{Numbers: []NumberState{}, Factors: []FactorState{}}
	err := r.eng.Store().WithConn(ctx, func(c *store.Conn) error {
		factors, err := c.AllFactors(ctx)
		if err != nil {
			return err
		}
		values := make(map[int64]string, len(factors))
		for _, f := range factors {
			values[f.ID] = f.Value.String()
		}
		for _, f := range factors {
			fs := FactorState{Value: f.Value.String(), Primality: f.Primality.String()}
			if f.HasSplit() {
				fs.Split = []string{values[f.F1ID], values[f.F2ID]}
			}
			state.Factors = append(state.Factors, fs)
		}

		numbers, err := c.AllNumbers(ctx)
		if err != nil {
			return err
		}
		for _, n := range numbers {
			state.Numbers = append(state.Numbers, NumberState{
				Value:       n.Value.String(),
				SmallPrimes: n.SmallPrimes,
				Cofactor:    values[n.CofactorID],
				Complete:    n.Complete,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return state, nil
}

