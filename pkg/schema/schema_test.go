package schema_test

import (
	"testing"

	"github.com/exstruct/exstruct/pkg/schema"

	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"My Project! (2024)", "My_Project_2024"},
		{"Test___Name", "Test_Name"},
		{"_Start_End_", "Start_End"},
		{"already_clean", "already_clean"},
		{"!!!", "extraction"},
		{"", "extraction"},
		{"Invoice #42 / EU", "Invoice_42_EU"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, schema.SanitizeName(tt.input))
		})
	}
}

func TestNormalizeFieldType(t *testing.T) {
	tests := []struct {
		tag        string
		expected   schema.FieldType
		recognized bool
	}{
		{"text", schema.FieldTypeText, true},
		{"str", schema.FieldTypeText, true},
		{"STRING", schema.FieldTypeText, true},
		{"int", schema.FieldTypeInteger, true},
		{"integer", schema.FieldTypeInteger, true},
		{"float", schema.FieldTypeDecimal, true},
		{"decimal", schema.FieldTypeDecimal, true},
		{"bool", schema.FieldTypeBoolean, true},
		{"list[str]", schema.FieldTypeTextList, true},
		{"list-of-text", schema.FieldTypeTextList, true},
		{"list[float]", schema.FieldTypeNumberList, true},
		{"list-of-number", schema.FieldTypeNumberList, true},
		{"datetime", schema.FieldTypeText, false},
		{"whatever", schema.FieldTypeText, false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			kind, ok := schema.NormalizeFieldType(tt.tag)

			require.Equal(t, tt.expected, kind)
			require.Equal(t, tt.recognized, ok)
		})
	}
}

func TestNewRequirements(t *testing.T) {
	t.Run("empty fields rejected", func(t *testing.T) {
		_, err := schema.NewRequirements("invoices", nil)
		require.ErrorIs(t, err, schema.ErrNoFields)

		_, err = schema.NewRequirements("invoices", []schema.FieldSpec{})
		require.ErrorIs(t, err, schema.ErrNoFields)
	})

	t.Run("duplicate names collapse to first occurrence", func(t *testing.T) {
		r, err := schema.NewRequirements("invoices", []schema.FieldSpec{
			{Name: "invoice_number", Type: schema.FieldTypeText, Description: "first", Required: true},
			{Name: "amount", Type: schema.FieldTypeDecimal, Description: "total", Required: true},
			{Name: "Invoice_Number", Type: schema.FieldTypeInteger, Description: "second", Required: false},
		})
		require.NoError(t, err)

		fields := r.Fields()
		require.Len(t, fields, 2)

		require.Equal(t, "invoice_number", fields[0].Name)
		require.Equal(t, "first", fields[0].Description)
		require.True(t, fields[0].Required)

		require.Equal(t, []string{"invoice_number", "amount"}, r.FieldNames())
	})

	t.Run("invalid identifiers rejected", func(t *testing.T) {
		tests := []string{"", "9lives", "with space", "hy-phen"}

		for _, name := range tests {
			_, err := schema.NewRequirements("x", []schema.FieldSpec{
				{Name: name, Type: schema.FieldTypeText},
			})
			require.Error(t, err, "name %q", name)
		}
	})

	t.Run("fields are copied out", func(t *testing.T) {
		r, err := schema.NewRequirements("x", []schema.FieldSpec{
			{Name: "a", Type: schema.FieldTypeText},
		})
		require.NoError(t, err)

		fields := r.Fields()
		fields[0].Name = "mutated"

		require.Equal(t, "a", r.Fields()[0].Name)
	})
}
