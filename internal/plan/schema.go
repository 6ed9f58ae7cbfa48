package plan

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema for a Plan draft. The generator
// embeds it in the system prompt so the model emits drafts the
// lenient decoder can handle without guesswork.
func Schema() (*jsonschema.Schema, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := r.Reflect(&Plan{})
	if schema == nil {
		return nil, fmt.Errorf("reflecting plan schema")
	}
	return schema, nil
}

// SchemaJSON returns the indented JSON rendering of the Plan schema.
func SchemaJSON() (string, error) {
	schema, err := Schema()
	if err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling plan schema: %w", err)
	}
	return string(out), nil
}
