package resolver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// metaSchema is the target schema of the resolution call: it describes
// extraction requirements themselves, so the backend returns a schema
// instead of data.
var metaSchema = map[string]any{
	"type": "object",

	"properties": map[string]any{
		"use_case_name": map[string]any{
			"type":        "string",
			"description": "Short name for this extraction use case",
		},

		"fields": map[string]any{
			"type":        "array",
			"description": "One entry per datum to extract, in presentation order",

			"items": map[string]any{
				"type": "object",

				"properties": map[string]any{
					"field_name": map[string]any{
						"type":        "string",
						"description": "snake_case identifier for the field",
						"pattern":     "^[A-Za-z_][A-Za-z0-9_]*$",
					},

					"field_type": map[string]any{
						"type": "string",
						"enum": []any{"text", "integer", "decimal", "boolean", "list-of-text", "list-of-number"},
					},

					"description": map[string]any{
						"type":        "string",
						"description": "What the field holds and how to find it",
					},

					"required": map[string]any{
						"type":        "boolean",
						"description": "Whether every document is expected to carry this field",
					},
				},

				"required":             []any{"field_name", "field_type", "description", "required"},
				"additionalProperties": false,
			},
		},
	},

	"required":             []any{"use_case_name", "fields"},
	"additionalProperties": false,
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// validatePayload checks a resolution response against the meta-schema
// before it is decoded. The compiled meta-schema is cached for the process
// lifetime.
func validatePayload(data []byte) error {
	compileOnce.Do(func() {
		raw, err := json.Marshal(metaSchema)

		if err != nil {
			compileErr = err
			return
		}

		compiler := jsonschema.NewCompiler()

		if err := compiler.AddResource("requirements.json", bytes.NewReader(raw)); err != nil {
			compileErr = err
			return
		}

		compiledSchema, compileErr = compiler.Compile("requirements.json")
	})

	if compileErr != nil {
		return fmt.Errorf("compile requirements schema: %w", compileErr)
	}

	var doc any

	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	return compiledSchema.Validate(doc)
}
