package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoFields is returned when requirements are created without any field
// specification. An extraction contract with zero fields is meaningless.
var ErrNoFields = errors.New("no fields specified")

type FieldType string

const (
	FieldTypeText       FieldType = "text"
	FieldTypeInteger    FieldType = "integer"
	FieldTypeDecimal    FieldType = "decimal"
	FieldTypeBoolean    FieldType = "boolean"
	FieldTypeTextList   FieldType = "list-of-text"
	FieldTypeNumberList FieldType = "list-of-number"
)

// NormalizeFieldType maps a semantic type tag to the fixed enumeration.
// Aliases from other type systems are accepted. Unrecognized tags fall back
// to text; the second return value reports whether the tag was recognized.
func NormalizeFieldType(tag string) (FieldType, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "text", "string", "str":
		return FieldTypeText, true

	case "integer", "int", "int64", "whole":
		return FieldTypeInteger, true

	case "decimal", "float", "float64", "number", "double":
		return FieldTypeDecimal, true

	case "boolean", "bool":
		return FieldTypeBoolean, true

	case "list-of-text", "list[str]", "list[string]", "string[]", "text[]", "array[string]":
		return FieldTypeTextList, true

	case "list-of-number", "list[float]", "list[int]", "list[number]", "number[]", "array[number]":
		return FieldTypeNumberList, true
	}

	return FieldTypeText, false
}

// FieldSpec describes one datum to extract from a document.
type FieldSpec struct {
	Name string `json:"field_name" yaml:"field_name"`

	Type FieldType `json:"field_type" yaml:"field_type"`

	Description string `json:"description" yaml:"description"`

	Required bool `json:"required" yaml:"required"`
}

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (f FieldSpec) validate() error {
	if f.Name == "" {
		return errors.New("field name must not be empty")
	}

	if !identifierRegex.MatchString(f.Name) {
		return fmt.Errorf("field name %q is not a valid identifier", f.Name)
	}

	return nil
}

// Requirements is the full target record schema for one extraction use case.
// It is immutable once created; duplicate field names collapse to the first
// occurrence, compared case-insensitively.
type Requirements struct {
	useCase string
	fields  []FieldSpec
}

func NewRequirements(useCase string, fields []FieldSpec) (*Requirements, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}

	seen := make(map[string]bool, len(fields))

	var unique []FieldSpec

	for _, f := range fields {
		if err := f.validate(); err != nil {
			return nil, err
		}

		key := strings.ToLower(f.Name)

		if seen[key] {
			continue
		}

		seen[key] = true

		unique = append(unique, f)
	}

	return &Requirements{
		useCase: useCase,
		fields:  unique,
	}, nil
}

func (r *Requirements) UseCase() string {
	return r.useCase
}

// Fields returns the ordered field specifications. The returned slice is a
// copy; requirements never change after creation.
func (r *Requirements) Fields() []FieldSpec {
	fields := make([]FieldSpec, len(r.fields))
	copy(fields, r.fields)

	return fields
}

func (r *Requirements) FieldNames() []string {
	names := make([]string, len(r.fields))

	for i, f := range r.fields {
		names[i] = f.Name
	}

	return names
}

const fallbackName = "extraction"

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Za-z0-9]+`)

// SanitizeName collapses runs of non-alphanumeric characters to a single
// underscore and strips leading and trailing underscores.
func SanitizeName(name string) string {
	name = nonAlphanumericRegex.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return fallbackName
	}

	return name
}
