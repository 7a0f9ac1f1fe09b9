package testutil

// FixedOpIDGenerator returns the same operation id every time.
//
// Log lines and scenario traces produced with it are byte-identical across
// runs, which golden snapshots depend on.
//
// Thread-safety: FixedOpIDGenerator is stateless and safe for concurrent use.
type FixedOpIDGenerator struct {
	id string
}

// NewFixedOpIDGenerator creates a generator returning id.
// If id is empty, Generate() returns "test-op".
func NewFixedOpIDGenerator(id string) *FixedOpIDGenerator {
	if id == "" {
		id = "test-op"
	}
	return &FixedOpIDGenerator{id: id}
}

// Generate returns the fixed id.
//
// Implements factordb.OpIDGenerator.
func (g *FixedOpIDGenerator) Generate() string {
	return g.id
}
