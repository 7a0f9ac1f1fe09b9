package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/factordb/internal/primality"
)

// Scenario defines a scripted run with assertions on the final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Limits overrides the default engine limits.
	Limits *Limits `yaml:"limits,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`

	// OpID is the fixed operation id stamped on every log line.
	// Defaults to "test-op".
	OpID string `yaml:"op_id,omitempty"`
}

// Script is a list of steps without assertions, as run by the CLI.
type Script struct {
	Name  string `yaml:"name,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Limits overrides engine limits. Zero fields keep the defaults.
type Limits struct {
	ProvableBits       int     `yaml:"provable_bits,omitempty"`
	ProbableBits       int     `yaml:"probable_bits,omitempty"`
	TrialDivisionLimit *uint64 `yaml:"trial_division_limit,omitempty"`
	ExtraChecks        bool    `yaml:"extra_checks,omitempty"`
}

// Step is one engine operation.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Value is the number (add_number, complete, factor_number), the
	// composite being split (add_factor) or the factor (set_*,
	// make_progress).
	Value string `yaml:"value"`

	// Factor is the divisor for add_factor.
	Factor string `yaml:"factor,omitempty"`

	// Factors are hints for add_number and the candidate list for
	// factor_number.
	Factors []string `yaml:"factors,omitempty"`

	// Verify runs the primality test before a set_* step is accepted.
	Verify bool `yaml:"verify,omitempty"`

	// Expect is the expected outcome: one of the Outcome* constants or an
	// error code such as NOT_BETTER. Empty accepts any outcome that is not
	// an error.
	Expect string `yaml:"expect,omitempty"`
}

// Step operations.
const (
	OpAddNumber    = "add_number"
	OpAddFactor    = "add_factor"
	OpSetPrime     = "set_prime"
	OpSetProbable  = "set_probable"
	OpSetComposite = "set_composite"
	OpComplete     = "complete"
	OpFactorNumber = "factor_number"
	OpMakeProgress = "make_progress"
)

// Assertion validates one number, one factor or the global counters.
type Assertion struct {
	// Type is "number", "factor" or "stats".
	Type string `yaml:"type"`

	// Value identifies the number or factor.
	Value string `yaml:"value,omitempty"`

	// number
	Complete    *bool    `yaml:"complete,omitempty"`
	SmallPrimes []uint64 `yaml:"small_primes,omitempty"`
	// Cofactor is the expected cofactor value; "1" asserts there is none.
	Cofactor string `yaml:"cofactor,omitempty"`
	// Factorization lists the expanded values in order.
	Factorization []string `yaml:"factorization,omitempty"`

	// factor
	Primality string   `yaml:"primality,omitempty"`
	Split     []string `yaml:"split,omitempty"`
	Archived  *int     `yaml:"archived,omitempty"`

	// stats
	Numbers         *int64 `yaml:"numbers,omitempty"`
	CompleteNumbers *int64 `yaml:"complete_numbers,omitempty"`
	Factors         *int64 `yaml:"factors,omitempty"`
}

// Assertion types.
const (
	AssertNumber = "number"
	AssertFactor = "factor"
	AssertStats  = "stats"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	var scenario Scenario
	data, err := decodeStrict(path, &scenario)
	if err != nil {
		return nil, err
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if err := checkSchema(path, data, schemaScenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScript reads and parses a script YAML file.
func LoadScript(path string) (*Script, error) {
	var script Script
	data, err := decodeStrict(path, &script)
	if err != nil {
		return nil, err
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("invalid script: steps list is required and must be non-empty")
	}
	if err := validateSteps(script.Steps); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	if err := checkSchema(path, data, schemaScript); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &script, nil
}

func decodeStrict(path string, out any) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// reject unknown fields so that "assertion:" vs "assertions:" is caught
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return data, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if err := validateSteps(s.Steps); err != nil {
		return err
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateSteps(steps []Step) error {
	for i, step := range steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	switch step.Op {
	case OpAddNumber, OpAddFactor, OpSetPrime, OpSetProbable, OpSetComposite,
		OpComplete, OpFactorNumber, OpMakeProgress:
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	if _, err := ParseValue(step.Value); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	if step.Op == OpAddFactor {
		if _, err := ParseValue(step.Factor); err != nil {
			return fmt.Errorf("factor: %w", err)
		}
	} else if step.Factor != "" {
		return fmt.Errorf("factor is only valid for %s", OpAddFactor)
	}
	if step.Op == OpFactorNumber && len(step.Factors) == 0 {
		return fmt.Errorf("factors list is required for %s", OpFactorNumber)
	}
	for j, f := range step.Factors {
		if _, err := ParseValue(f); err != nil {
			return fmt.Errorf("factors[%d]: %w", j, err)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertNumber, AssertFactor:
		if _, err := ParseValue(a.Value); err != nil {
			return fmt.Errorf("assertions[%d]: value: %w", index, err)
		}
	case AssertStats:
		if a.Numbers == nil && a.CompleteNumbers == nil && a.Factors == nil {
			return fmt.Errorf("assertions[%d]: stats assertion checks nothing", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Primality != "" {
		if _, err := primality.ParseStatus(a.Primality); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	}
	if a.Split != nil && len(a.Split) != 2 {
		return fmt.Errorf("assertions[%d]: split must list exactly two values", index)
	}
	return nil
}
