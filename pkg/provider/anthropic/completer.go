package anthropic

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/exstruct/exstruct/pkg/provider"

	"github.com/anthropics/anthropic-sdk-go"
)

var _ provider.Completer = (*Completer)(nil)

type Completer struct {
	*Config
	messages anthropic.MessageService
}

func NewCompleter(url, model string, options ...Option) (*Completer, error) {
	cfg := &Config{
		url:   url,
		model: model,
	}

	for _, option := range options {
		option(cfg)
	}

	return &Completer{
		Config:   cfg,
		messages: anthropic.NewMessageService(cfg.Options()...),
	}, nil
}

func (c *Completer) Complete(ctx context.Context, document string, options *provider.CompleteOptions) (*provider.Completion, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	req, err := c.convertMessageRequest(document, options)

	if err != nil {
		return nil, err
	}

	resp, err := c.messages.New(ctx, *req)

	if err != nil {
		return nil, convertError(err)
	}

	data, err := extractPayload(resp, options)

	if err != nil {
		return nil, err
	}

	return &provider.Completion{
		ID:    resp.ID,
		Model: string(resp.Model),

		Data: data,

		Usage: toUsage(resp.Usage),
	}, nil
}

// extractPayload pulls the structured payload out of the response. The
// schema rides on a forced tool call, so the payload is the tool input;
// without a schema the payload is the concatenated text.
func extractPayload(resp *anthropic.Message, options *provider.CompleteOptions) ([]byte, error) {
	if options.Schema != nil {
		for _, block := range resp.Content {
			if variant, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
				if len(variant.Input) == 0 {
					return []byte("{}"), nil
				}

				return []byte(variant.Input), nil
			}
		}

		return nil, provider.NewError("anthropic", 0, errors.New("response carries no structured payload"))
	}

	var text string

	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += variant.Text
		}
	}

	return []byte(text), nil
}

func (c *Completer) convertMessageRequest(document string, options *provider.CompleteOptions) (*anthropic.MessageNewParams, error) {
	model := c.model

	if options.Model != "" {
		model = options.Model
	}

	req := &anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(8192),

		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(document)),
		},
	}

	if options.Instructions != "" {
		req.System = []anthropic.TextBlockParam{
			{Text: options.Instructions},
		}
	}

	if options.MaxTokens != nil {
		req.MaxTokens = int64(*options.MaxTokens)
	}

	if options.Temperature != nil {
		req.Temperature = anthropic.Float(float64(*options.Temperature))
	}

	if options.Schema != nil {
		var schema anthropic.ToolInputSchemaParam

		schemaData, _ := json.Marshal(options.Schema.Schema)

		if err := json.Unmarshal(schemaData, &schema); err != nil {
			return nil, errors.New("invalid target schema")
		}

		tool := anthropic.ToolParam{
			Name: options.Schema.Name,

			InputSchema: schema,
		}

		if options.Schema.Description != "" {
			tool.Description = anthropic.String(options.Schema.Description)
		}

		req.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{
				Name: options.Schema.Name,
			},
		}

		req.Tools = []anthropic.ToolUnionParam{
			{OfTool: &tool},
		}
	}

	return req, nil
}

func convertError(err error) error {
	var apierr *anthropic.Error

	if errors.As(err, &apierr) {
		return provider.NewError("anthropic", apierr.StatusCode, err)
	}

	return provider.NewError("anthropic", 0, err)
}

func toUsage(usage anthropic.Usage) *provider.Usage {
	if usage.InputTokens == 0 && usage.OutputTokens == 0 {
		return nil
	}

	return &provider.Usage{
		InputTokens:  int(usage.InputTokens),
		OutputTokens: int(usage.OutputTokens),
	}
}
