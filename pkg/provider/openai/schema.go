package openai

import (
	"errors"
	"sort"

	"github.com/exstruct/exstruct/pkg/provider"

	"github.com/openai/openai-go/v3"
)

// strictSchema adapts a canonical schema document for OpenAI strict
// structured outputs, which require every property to be listed as required
// (optionality is expressed by a null type union) and additional properties
// to be disallowed. The canonical schema stays untouched for local
// validation.
func strictSchema(schema map[string]any) map[string]any {
	result := make(map[string]any, len(schema))

	for k, v := range schema {
		result[k] = strictValue(v)
	}

	if t, _ := result["type"].(string); t == "object" {
		properties, _ := result["properties"].(map[string]any)

		names := make([]string, 0, len(properties))

		for name := range properties {
			names = append(names, name)
		}

		sort.Strings(names)

		required := make([]any, len(names))

		for i, name := range names {
			required[i] = name
		}

		result["required"] = required
		result["additionalProperties"] = false
	}

	return result
}

func strictValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return strictSchema(v)

	case []any:
		result := make([]any, len(v))

		for i, item := range v {
			result[i] = strictValue(item)
		}

		return result
	}

	return value
}

func convertError(err error) error {
	var apierr *openai.Error

	if errors.As(err, &apierr) {
		return provider.NewError("openai", apierr.StatusCode, err)
	}

	return provider.NewError("openai", 0, err)
}
