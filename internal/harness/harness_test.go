package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(context.Background(), scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(scenario.Steps))
		})
	}
}

func TestRunWithGolden_SplitAndComplete(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/split_and_complete.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/smaller_split.yaml")
	require.NoError(t, err)

	var snapshots [][]byte
	for i := 0; i < 2; i++ {
		result, err := Run(context.Background(), scenario)
		require.NoError(t, err)
		data, err := MarshalSnapshot(Snapshot{ScenarioName: scenario.Name, Trace: result.Trace, State: result.State})
		require.NoError(t, err)
		snapshots = append(snapshots, data)
	}
	assert.Equal(t, string(snapshots[0]), string(snapshots[1]))
}

func TestRun_UnexpectedOutcomeFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_expectation",
		Description: "expects a repeated split to be accepted",
		Steps: []Step{
			{Op: OpAddNumber, Value: "91"},
			{Op: OpAddFactor, Value: "91", Factor: "7"},
			{Op: OpAddFactor, Value: "91", Factor: "13", Expect: OutcomeOK},
		},
		Assertions: []Assertion{{Type: AssertFactor, Value: "91", Primality: "composite"}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected ok, got NOT_BETTER")
	assert.Equal(t, "NOT_BETTER", result.Trace[2].Outcome)
}

func TestRun_UnexpectedErrorFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing_number",
		Description: "completes a number that was never added",
		Steps:       []Step{{Op: OpComplete, Value: "91"}},
		Assertions:  []Assertion{{Type: AssertStats, Numbers: ptr(int64(0))}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, "NOT_FOUND", result.Trace[0].Outcome)
}

func TestRun_FailedAssertions(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_assertions",
		Description: "asserts the wrong state",
		Steps:       []Step{{Op: OpAddNumber, Value: "91"}},
		Assertions: []Assertion{
			{Type: AssertNumber, Value: "91", Complete: ptr(true), Cofactor: "1"},
			{Type: AssertFactor, Value: "91", Split: []string{"7", "13"}},
			{Type: AssertNumber, Value: "92"},
			{Type: AssertStats, Factors: ptr(int64(5))},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "(complete)")
	assert.Contains(t, result.Errors[1], "(cofactor)")
	assert.Contains(t, result.Errors[2], "(split)")
	assert.Contains(t, result.Errors[3], "(exists)")
	assert.Contains(t, result.Errors[4], "(factors)")
}

func TestRun_Limits(t *testing.T) {
	wheel := uint64(13)
	scenario := &Scenario{
		Name:        "wide_wheel",
		Description: "a wider wheel packs 7 and 13 on entry",
		Limits:      &Limits{TrialDivisionLimit: &wheel},
		Steps:       []Step{{Op: OpAddNumber, Value: "364", Expect: OutcomeCreated}},
		Assertions: []Assertion{
			{Type: AssertNumber, Value: "364", SmallPrimes: []uint64{2, 2, 7, 13}},
			{Type: AssertStats, Factors: ptr(int64(0))},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_BadLimits(t *testing.T) {
	scenario := &Scenario{
		Name:       "bad",
		Limits:     &Limits{ProvableBits: 8},
		Steps:      []Step{{Op: OpAddNumber, Value: "1"}},
		Assertions: []Assertion{{Type: AssertStats, Numbers: ptr(int64(1))}},
	}

	_, err := Run(context.Background(), scenario)
	assert.Error(t, err)
}

func TestExecute_MalformedStep(t *testing.T) {
	scenario := &Scenario{
		Name:       "malformed",
		Steps:      []Step{{Op: "divide", Value: "91"}},
		Assertions: []Assertion{{Type: AssertStats, Numbers: ptr(int64(0))}},
	}

	_, err := Run(context.Background(), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown op "divide"`)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", "name: x\ndescription: y\nstep: []\n", "field step not found"},
		{"missing name", "description: y\nsteps: [{op: add_number, value: '1'}]\nassertions: [{type: stats, numbers: 1}]\n", "name is required"},
		{"no steps", "name: x\ndescription: y\nassertions: [{type: stats, numbers: 1}]\n", "steps list is required"},
		{"no assertions", "name: x\ndescription: y\nsteps: [{op: add_number, value: '1'}]\n", "assertions list is required"},
		{"unknown op", "name: x\ndescription: y\nsteps: [{op: divide, value: '1'}]\nassertions: [{type: stats, numbers: 1}]\n", `unknown op "divide"`},
		{"bad value", "name: x\ndescription: y\nsteps: [{op: add_number, value: 'abc'}]\nassertions: [{type: stats, numbers: 1}]\n", "steps[0]: value"},
		{"missing divisor", "name: x\ndescription: y\nsteps: [{op: add_factor, value: '91'}]\nassertions: [{type: stats, numbers: 1}]\n", "steps[0]: factor"},
		{"empty stats", "name: x\ndescription: y\nsteps: [{op: add_number, value: '1'}]\nassertions: [{type: stats}]\n", "checks nothing"},
		{"bad primality", "name: x\ndescription: y\nsteps: [{op: add_number, value: '1'}]\nassertions: [{type: factor, value: '7', primality: maybe}]\n", "unknown primality"},
		{"short split", "name: x\ndescription: y\nsteps: [{op: add_number, value: '1'}]\nassertions: [{type: factor, value: '91', split: ['7']}]\n", "exactly two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scenario.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	content := "steps:\n  - op: add_number\n    value: \"2^64*3\"\n  - op: complete\n    value: \"2^64*3\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	script, err := LoadScript(path)
	require.NoError(t, err)
	assert.Len(t, script.Steps, 2)

	require.NoError(t, os.WriteFile(path, []byte("name: empty\n"), 0o644))
	_, err = LoadScript(path)
	assert.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
