package harness

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource string

// Schema definitions in schema.cue.
const (
	schemaScenario = "#Scenario"
	schemaScript   = "#Script"
)

// SchemaError is a schema violation with its position in the input file.
type SchemaError struct {
	Message string
	Pos     token.Pos
}

func (e *SchemaError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// checkSchema validates a YAML document against a definition in
// schema.cue.
func checkSchema(path string, data []byte, def string) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("scenario schema: %w", err)
	}

	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return formatSchemaError(err)
	}

	v := schema.LookupPath(cue.ParsePath(def)).Unify(doc)
	return formatSchemaError(v.Validate(cue.Concrete(true)))
}

// formatSchemaError keeps the first CUE error and its input position.
func formatSchemaError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	se := &SchemaError{Message: first.Error()}
	for _, pos := range errors.Positions(first) {
		if pos.Filename() != "schema.cue" {
			se.Pos = pos
			break
		}
	}
	return se
}
