package schema

import (
	"encoding/json"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
)

// CompiledField is one slot of a compiled record type: a field name bound to
// a tagged value kind plus optionality.
type CompiledField struct {
	Name string

	Kind FieldType

	Description string

	Required bool
}

// RecordType is the runtime-checked type derived from extraction
// requirements. It is compiled once per requirements object and is
// immutable; the same requirements always compile to a structurally equal
// type, though not necessarily the same instance.
type RecordType struct {
	name string

	fields []CompiledField
	index  map[string]int
}

// Compile derives a record type from requirements. Each field's semantic
// type tag is mapped to a value kind; unrecognized tags default to text with
// a logged warning rather than failing, since conformance is re-checked at
// extraction time.
func Compile(r *Requirements) *RecordType {
	fields := make([]CompiledField, 0, len(r.fields))
	index := make(map[string]int, len(r.fields))

	for _, f := range r.fields {
		kind, ok := NormalizeFieldType(string(f.Type))

		if !ok && f.Type != "" {
			slog.Warn("unrecognized field type, defaulting to text", "field", f.Name, "type", f.Type)
		}

		index[f.Name] = len(fields)

		fields = append(fields, CompiledField{
			Name: f.Name,

			Kind: kind,

			Description: f.Description,
			Required:    f.Required,
		})
	}

	return &RecordType{
		name: SanitizeName(r.useCase) + "_Extraction",

		fields: fields,
		index:  index,
	}
}

// Name returns the display name of the record type.
func (t *RecordType) Name() string {
	return t.name
}

// Fields returns the ordered compiled fields. The returned slice is a copy.
func (t *RecordType) Fields() []CompiledField {
	fields := make([]CompiledField, len(t.fields))
	copy(fields, t.fields)

	return fields
}

func (t *RecordType) FieldNames() []string {
	names := make([]string, len(t.fields))

	for i, f := range t.fields {
		names[i] = f.Name
	}

	return names
}

// JSONSchema exports the record type as a standard, tool-agnostic JSON
// Schema document. Optional fields are nullable and omitted from the
// required list; unknown properties are rejected.
func (t *RecordType) JSONSchema() *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(t.fields))

	var required []string

	for _, f := range t.fields {
		property := fieldSchema(f.Kind)
		property.Description = f.Description

		if f.Required {
			required = append(required, f.Name)
		} else {
			property.Types = []string{property.Type, "null"}
			property.Type = ""
		}

		properties[f.Name] = property
	}

	return &jsonschema.Schema{
		Title: t.name,

		Type: "object",

		Properties: properties,
		Required:   required,

		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}

// JSONSchemaMap renders the exported schema as a generic JSON object, the
// form provider SDKs accept.
func (t *RecordType) JSONSchemaMap() (map[string]any, error) {
	data, err := json.Marshal(t.JSONSchema())

	if err != nil {
		return nil, err
	}

	var result map[string]any

	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return result, nil
}

func fieldSchema(kind FieldType) *jsonschema.Schema {
	switch kind {
	case FieldTypeInteger:
		return &jsonschema.Schema{Type: "integer"}

	case FieldTypeDecimal:
		return &jsonschema.Schema{Type: "number"}

	case FieldTypeBoolean:
		return &jsonschema.Schema{Type: "boolean"}

	case FieldTypeTextList:
		return &jsonschema.Schema{
			Type:  "array",
			Items: &jsonschema.Schema{Type: "string"},
		}

	case FieldTypeNumberList:
		return &jsonschema.Schema{
			Type:  "array",
			Items: &jsonschema.Schema{Type: "number"},
		}

	default:
		return &jsonschema.Schema{Type: "string"}
	}
}
