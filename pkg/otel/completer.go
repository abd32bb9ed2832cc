package otel

import (
	"context"

	"github.com/exstruct/exstruct/pkg/provider"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ provider.Completer = (*Completer)(nil)

// Completer wraps a backend client with a span per structured-completion
// call.
type Completer struct {
	vendor string
	model  string

	completer provider.Completer

	tracer trace.Tracer
}

func NewCompleter(vendor, model string, completer provider.Completer) *Completer {
	return &Completer{
		vendor: vendor,
		model:  model,

		completer: completer,

		tracer: otel.Tracer("exstruct"),
	}
}

func (c *Completer) Complete(ctx context.Context, document string, options *provider.CompleteOptions) (*provider.Completion, error) {
	ctx, span := c.tracer.Start(ctx, "structured-completion",
		trace.WithAttributes(
			attribute.String("provider", c.vendor),
			attribute.String("model", c.model),
		),
	)

	defer span.End()

	result, err := c.completer.Complete(ctx, document, options)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	if result.Usage != nil {
		span.SetAttributes(
			attribute.Int("usage.input_tokens", result.Usage.InputTokens),
			attribute.Int("usage.output_tokens", result.Usage.OutputTokens),
		)
	}

	return result, nil
}
