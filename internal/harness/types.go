package harness

// Step outcomes recorded in the trace. Rejected steps record the error
// code instead (NOT_BETTER, VALIDATION, ...).
const (
	OutcomeOK         = "ok"
	OutcomeCreated    = "created"
	OutcomeExisting   = "existing"
	OutcomeComplete   = "complete"
	OutcomeIncomplete = "incomplete"

	// OutcomeError marks a failure that carries no engine error code.
	OutcomeError = "ERROR"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int      `json:"seq"`
	Op      string   `json:"op"`
	Value   string   `json:"value"`
	Factor  string   `json:"factor,omitempty"`
	Factors []string `json:"factors,omitempty"`
	Outcome string   `json:"outcome"`
}

// NumberState is the snapshot of one number. Cofactor is empty when the
// number has none.
type NumberState struct {
	Value       string   `json:"value"`
	SmallPrimes []uint64 `json:"small_primes,omitempty"`
	Cofactor    string   `json:"cofactor,omitempty"`
	Complete    bool     `json:"complete"`
}

// FactorState is the snapshot of one factor. Split holds the f1 and f2
// values when the factor has been split.
type FactorState struct {
	Value     string   `json:"value"`
	Primality string   `json:"primality"`
	Split     []string `json:"split,omitempty"`
}

// State is the whole database, in numeric order.
type State struct {
	Numbers []NumberState `json:"numbers"`
	Factors []FactorState `json:"factors"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step met its expectation and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace contains all executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final database contents. Set by Run.
	State *State `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addTrace(step Step, outcome string) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     len(r.Trace) + 1,
		Op:      step.Op,
		Value:   step.Value,
		Factor:  step.Factor,
		Factors: step.Factors,
		Outcome: outcome,
	})
}
