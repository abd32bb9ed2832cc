package schema_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/exstruct/exstruct/pkg/schema"

	jsonvalidate "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
)

func invoiceRequirements(t *testing.T) *schema.Requirements {
	t.Helper()

	r, err := schema.NewRequirements("Invoice Processing", []schema.FieldSpec{
		{Name: "invoice_number", Type: "text", Description: "invoice identifier", Required: true},
		{Name: "total", Type: "decimal", Description: "grand total", Required: true},
		{Name: "item_count", Type: "int", Required: false},
		{Name: "paid", Type: "bool", Required: true},
		{Name: "line_items", Type: "list[str]", Required: false},
		{Name: "line_totals", Type: "list[float]", Required: false},
	})
	require.NoError(t, err)

	return r
}

func TestCompile(t *testing.T) {
	recordType := schema.Compile(invoiceRequirements(t))

	require.Equal(t, "Invoice_Processing_Extraction", recordType.Name())

	fields := recordType.Fields()
	require.Len(t, fields, 6)

	require.Equal(t, []string{"invoice_number", "total", "item_count", "paid", "line_items", "line_totals"}, recordType.FieldNames())

	require.Equal(t, schema.FieldTypeText, fields[0].Kind)
	require.Equal(t, schema.FieldTypeDecimal, fields[1].Kind)
	require.Equal(t, schema.FieldTypeInteger, fields[2].Kind)
	require.Equal(t, schema.FieldTypeBoolean, fields[3].Kind)
	require.Equal(t, schema.FieldTypeTextList, fields[4].Kind)
	require.Equal(t, schema.FieldTypeNumberList, fields[5].Kind)

	require.Equal(t, "invoice identifier", fields[0].Description)
	require.False(t, fields[2].Required)
}

func TestCompileIsDeterministic(t *testing.T) {
	r := invoiceRequirements(t)

	first := schema.Compile(r)
	second := schema.Compile(r)

	require.NotSame(t, first, second)
	require.Equal(t, first.Name(), second.Name())
	require.Equal(t, first.Fields(), second.Fields())
}

func TestCompileUnknownTypeDefaultsToText(t *testing.T) {
	r, err := schema.NewRequirements("x", []schema.FieldSpec{
		{Name: "when", Type: "datetime", Required: true},
	})
	require.NoError(t, err)

	recordType := schema.Compile(r)
	require.Equal(t, schema.FieldTypeText, recordType.Fields()[0].Kind)
}

func TestJSONSchema(t *testing.T) {
	recordType := schema.Compile(invoiceRequirements(t))

	document, err := recordType.JSONSchemaMap()
	require.NoError(t, err)

	require.Equal(t, "object", document["type"])
	require.Equal(t, "Invoice_Processing_Extraction", document["title"])

	required, ok := document["required"].([]any)
	require.True(t, ok)
	require.ElementsMatch(t, []any{"invoice_number", "total", "paid"}, required)

	properties, ok := document["properties"].(map[string]any)
	require.True(t, ok)
	require.Len(t, properties, 6)

	itemCount, ok := properties["item_count"].(map[string]any)
	require.True(t, ok)
	require.ElementsMatch(t, []any{"integer", "null"}, itemCount["type"])
}

// Exported schemas must agree with the local validator: payloads the record
// type accepts validate against the exported document, and vice versa.
func TestJSONSchemaMatchesValidator(t *testing.T) {
	recordType := schema.Compile(invoiceRequirements(t))

	document, err := recordType.JSONSchemaMap()
	require.NoError(t, err)

	data, err := json.Marshal(document)
	require.NoError(t, err)

	compiler := jsonvalidate.NewCompiler()
	require.NoError(t, compiler.AddResource("record.json", bytes.NewReader(data)))

	compiled, err := compiler.Compile("record.json")
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload string
		valid   bool
	}{
		{
			name:    "complete record",
			payload: `{"invoice_number":"INV-1","total":12.5,"item_count":3,"paid":true,"line_items":["a"],"line_totals":[1.5]}`,
			valid:   true,
		},
		{
			name:    "optional null",
			payload: `{"invoice_number":"INV-1","total":12.5,"item_count":null,"paid":false,"line_items":null,"line_totals":null}`,
			valid:   true,
		},
		{
			name:    "missing required",
			payload: `{"total":12.5,"paid":true}`,
			valid:   false,
		},
		{
			name:    "unknown property",
			payload: `{"invoice_number":"INV-1","total":12.5,"paid":true,"extra":1}`,
			valid:   false,
		},
		{
			name:    "wrong type",
			payload: `{"invoice_number":42,"total":12.5,"paid":true}`,
			valid:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc any
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &doc))

			err := compiled.Validate(doc)

			_, localErr := recordType.Validate([]byte(tt.payload))

			if tt.valid {
				require.NoError(t, err)
				require.NoError(t, localErr)
			} else {
				require.Error(t, err)
				require.Error(t, localErr)
			}
		})
	}
}
