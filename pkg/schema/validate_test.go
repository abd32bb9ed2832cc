package schema_test

import (
	"testing"

	"github.com/exstruct/exstruct/pkg/schema"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	recordType := schema.Compile(invoiceRequirements(t))

	t.Run("conforming payload", func(t *testing.T) {
		record, err := recordType.Validate([]byte(`{
			"invoice_number": "INV-7",
			"total": 99.95,
			"item_count": 4,
			"paid": true,
			"line_items": ["widget", "gadget"],
			"line_totals": [49.95, 50]
		}`))
		require.NoError(t, err)

		require.Equal(t, "INV-7", record["invoice_number"])
		require.Equal(t, 99.95, record["total"])
		require.Equal(t, int64(4), record["item_count"])
		require.Equal(t, true, record["paid"])
		require.Equal(t, []string{"widget", "gadget"}, record["line_items"])
		require.Equal(t, []float64{49.95, 50}, record["line_totals"])
	})

	t.Run("omitted optional fields map to nil", func(t *testing.T) {
		record, err := recordType.Validate([]byte(`{"invoice_number":"INV-7","total":10,"paid":false}`))
		require.NoError(t, err)

		require.Contains(t, record, "item_count")
		require.Nil(t, record["item_count"])
		require.Nil(t, record["line_items"])
	})

	t.Run("null optional fields map to nil", func(t *testing.T) {
		record, err := recordType.Validate([]byte(`{"invoice_number":"INV-7","total":10,"paid":false,"item_count":null}`))
		require.NoError(t, err)

		require.Nil(t, record["item_count"])
	})

	t.Run("missing required field", func(t *testing.T) {
		_, err := recordType.Validate([]byte(`{"total":10,"paid":false}`))

		var verr *schema.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Issues, `missing required field "invoice_number"`)
	})

	t.Run("null required field", func(t *testing.T) {
		_, err := recordType.Validate([]byte(`{"invoice_number":null,"total":10,"paid":false}`))
		require.Error(t, err)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := recordType.Validate([]byte(`{"invoice_number":"INV-7","total":10,"paid":false,"surprise":1}`))

		var verr *schema.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Issues, `unknown field "surprise"`)
	})

	t.Run("non-object payload", func(t *testing.T) {
		_, err := recordType.Validate([]byte(`[1,2,3]`))
		require.Error(t, err)
	})
}

func TestValidateNoCoercion(t *testing.T) {
	recordType := schema.Compile(invoiceRequirements(t))

	tests := []struct {
		name    string
		payload string
	}{
		{"number as text", `{"invoice_number":42,"total":10,"paid":false}`},
		{"fractional integer", `{"invoice_number":"x","total":10,"paid":false,"item_count":2.5}`},
		{"text as decimal", `{"invoice_number":"x","total":"10","paid":false}`},
		{"text as boolean", `{"invoice_number":"x","total":10,"paid":"yes"}`},
		{"scalar as list", `{"invoice_number":"x","total":10,"paid":false,"line_items":"a"}`},
		{"mixed list element", `{"invoice_number":"x","total":10,"paid":false,"line_items":["a",1]}`},
		{"text in number list", `{"invoice_number":"x","total":10,"paid":false,"line_totals":["1.5"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := recordType.Validate([]byte(tt.payload))

			var verr *schema.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestValidateCollectsAllIssues(t *testing.T) {
	recordType := schema.Compile(invoiceRequirements(t))

	_, err := recordType.Validate([]byte(`{"total":"x","paid":1,"surprise":true}`))

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Issues, 4)
}
