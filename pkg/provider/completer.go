package provider

import (
	"context"
)

// Completer is the structured-completion capability every backend exposes:
// one blocking call that turns a document into a JSON payload conforming to
// the supplied schema. Implementations differ only in client construction;
// the contract is provider-agnostic.
type Completer interface {
	Complete(ctx context.Context, document string, options *CompleteOptions) (*Completion, error)
}

// Schema is the caller-supplied target the response payload must conform
// to, rendered as a generic JSON Schema object.
type Schema struct {
	Name        string
	Description string

	Schema map[string]any
}

type CompleteOptions struct {
	Schema *Schema

	Instructions string

	Model string

	MaxTokens   *int
	Temperature *float32
}

// Completion carries the raw structured payload returned by a backend. The
// payload is validated locally against the compiled record type by the
// caller; backend guarantees are trusted but not assumed infallible.
type Completion struct {
	ID string

	Model string

	Data []byte

	Usage *Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}
