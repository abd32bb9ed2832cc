package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one extracted document: a mapping from field name to a value of
// the declared kind. Optional fields that were absent or null map to nil.
type Record map[string]any

// ValidationError reports a payload that fails the structural check against
// a compiled record type.
type ValidationError struct {
	RecordType string

	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("payload does not conform to %s: %s", e.RecordType, strings.Join(e.Issues, "; "))
}

// Validate walks the compiled field mapping against an untyped JSON payload
// and returns the conforming record. Values are never coerced beyond the
// declared kind mapping: a mismatched value is a validation failure, not a
// best-guess conversion.
func (t *RecordType) Validate(payload []byte) (Record, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var doc map[string]any

	if err := decoder.Decode(&doc); err != nil {
		return nil, &ValidationError{
			RecordType: t.name,
			Issues:     []string{"payload is not a JSON object: " + err.Error()},
		}
	}

	return t.ValidateMap(doc)
}

// ValidateMap is Validate for an already-decoded payload. Number values may
// be json.Number, float64 or integer types.
func (t *RecordType) ValidateMap(doc map[string]any) (Record, error) {
	var issues []string

	record := make(Record, len(t.fields))

	for key := range doc {
		if _, ok := t.index[key]; !ok {
			issues = append(issues, fmt.Sprintf("unknown field %q", key))
		}
	}

	for _, f := range t.fields {
		value, present := doc[f.Name]

		if !present || value == nil {
			if f.Required {
				issues = append(issues, fmt.Sprintf("missing required field %q", f.Name))
				continue
			}

			record[f.Name] = nil
			continue
		}

		checked, err := checkValue(f.Kind, value)

		if err != nil {
			issues = append(issues, fmt.Sprintf("field %q: %v", f.Name, err))
			continue
		}

		record[f.Name] = checked
	}

	if len(issues) > 0 {
		return nil, &ValidationError{
			RecordType: t.name,
			Issues:     issues,
		}
	}

	return record, nil
}

func checkValue(kind FieldType, value any) (any, error) {
	switch kind {
	case FieldTypeText:
		s, ok := value.(string)

		if !ok {
			return nil, fmt.Errorf("expected text, got %T", value)
		}

		return s, nil

	case FieldTypeInteger:
		return integerValue(value)

	case FieldTypeDecimal:
		return decimalValue(value)

	case FieldTypeBoolean:
		b, ok := value.(bool)

		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", value)
		}

		return b, nil

	case FieldTypeTextList:
		items, ok := value.([]any)

		if !ok {
			return nil, fmt.Errorf("expected list of text, got %T", value)
		}

		result := make([]string, len(items))

		for i, item := range items {
			s, ok := item.(string)

			if !ok {
				return nil, fmt.Errorf("element %d: expected text, got %T", i, item)
			}

			result[i] = s
		}

		return result, nil

	case FieldTypeNumberList:
		items, ok := value.([]any)

		if !ok {
			return nil, fmt.Errorf("expected list of number, got %T", value)
		}

		result := make([]float64, len(items))

		for i, item := range items {
			n, err := decimalValue(item)

			if err != nil {
				return nil, fmt.Errorf("element %d: %v", i, err)
			}

			result[i] = n
		}

		return result, nil
	}

	return nil, fmt.Errorf("unsupported kind %q", kind)
}

func integerValue(value any) (int64, error) {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}

		return 0, fmt.Errorf("expected whole number, got %s", v.String())

	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("expected whole number, got %v", v)
		}

		return int64(v), nil

	case int:
		return int64(v), nil

	case int64:
		return v, nil
	}

	return 0, fmt.Errorf("expected whole number, got %T", value)
}

func decimalValue(value any) (float64, error) {
	switch v := value.(type) {
	case json.Number:
		n, err := v.Float64()

		if err != nil {
			return 0, fmt.Errorf("expected number, got %s", v.String())
		}

		return n, nil

	case float64:
		return v, nil

	case int:
		return float64(v), nil

	case int64:
		return float64(v), nil
	}

	return 0, fmt.Errorf("expected number, got %T", value)
}
