package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/exstruct/exstruct/pkg/provider"
	"github.com/exstruct/exstruct/pkg/schema"
)

// ParseError reports that a free-text description could not be turned into
// usable extraction requirements, either because the provider call failed or
// because it produced no usable field list. It aborts resolution and is not
// retried.
type ParseError struct {
	Message string

	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse requirements: %s: %v", e.Message, e.Err)
	}

	return "parse requirements: " + e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const instructions = `You derive extraction contracts from informal descriptions.
Given a description of what data to pull out of documents, produce the field
specifications a structured extraction should use. Field names are snake_case
identifiers. Choose the most specific field type that fits. Mark a field
required only when every document is expected to carry it.`

// Resolver turns a natural-language description of what to extract into
// structured extraction requirements, using one structured call against a
// model backend: the backend is asked to produce a schema, not data.
type Resolver struct {
	completer provider.Completer
}

func New(completer provider.Completer) *Resolver {
	return &Resolver{
		completer: completer,
	}
}

type requirementsPayload struct {
	UseCaseName string `json:"use_case_name"`

	Fields []fieldPayload `json:"fields"`
}

type fieldPayload struct {
	FieldName   string `json:"field_name"`
	FieldType   string `json:"field_type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

func (r *Resolver) Resolve(ctx context.Context, description string) (*schema.Requirements, error) {
	description = strings.TrimSpace(description)

	if description == "" {
		return nil, &ParseError{Message: "empty description"}
	}

	completion, err := r.completer.Complete(ctx, description, &provider.CompleteOptions{
		Instructions: instructions,

		Schema: &provider.Schema{
			Name:        "extraction_requirements",
			Description: "Field specifications for a structured extraction use case",

			Schema: metaSchema,
		},
	})

	if err != nil {
		return nil, &ParseError{Message: "provider call failed", Err: err}
	}

	if err := validatePayload(completion.Data); err != nil {
		return nil, &ParseError{Message: "malformed response", Err: err}
	}

	var payload requirementsPayload

	if err := json.Unmarshal(completion.Data, &payload); err != nil {
		return nil, &ParseError{Message: "malformed response", Err: err}
	}

	if len(payload.Fields) == 0 {
		return nil, &ParseError{Message: "no fields identified"}
	}

	fields := make([]schema.FieldSpec, len(payload.Fields))

	for i, f := range payload.Fields {
		fields[i] = schema.FieldSpec{
			Name: f.FieldName,

			Type: schema.FieldType(f.FieldType),

			Description: f.Description,
			Required:    f.Required,
		}
	}

	requirements, err := schema.NewRequirements(payload.UseCaseName, fields)

	if err != nil {
		return nil, &ParseError{Message: "unusable field list", Err: err}
	}

	return requirements, nil
}
