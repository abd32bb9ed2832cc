package openai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStrictSchema(t *testing.T) {
	schema := map[string]any{
		"type":  "object",
		"title": "Invoice_Extraction",

		"properties": map[string]any{
			"invoice_number": map[string]any{
				"type": "string",
			},
			"total": map[string]any{
				"type": []any{"number", "null"},
			},
			"lines": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"description": map[string]any{"type": "string"},
				},
			},
		},

		"required": []any{"invoice_number"},
	}

	strict := strictSchema(schema)

	require.Equal(t, []any{"invoice_number", "lines", "total"}, strict["required"])
	require.Equal(t, false, strict["additionalProperties"])

	properties := strict["properties"].(map[string]any)

	nested := properties["lines"].(map[string]any)
	require.Equal(t, []any{"description"}, nested["required"])
	require.Equal(t, false, nested["additionalProperties"])

	// Nullable unions pass through untouched.
	total := properties["total"].(map[string]any)
	require.Equal(t, []any{"number", "null"}, total["type"])

	// The input document is not mutated.
	require.Equal(t, []any{"invoice_number"}, schema["required"])
	require.NotContains(t, schema, "additionalProperties")
}
