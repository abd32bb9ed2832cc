package openai

import (
	"context"
	"errors"

	"github.com/exstruct/exstruct/pkg/provider"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

var _ provider.Completer = (*Completer)(nil)

type Completer struct {
	*Config
	client openai.Client
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
		Config: cfg,
		client: openai.NewClient(cfg.Options()...),
	}, nil
}

func (c *Completer) Complete(ctx context.Context, document string, options *provider.CompleteOptions) (*provider.Completion, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	req, err := c.convertCompletionRequest(document, options)

	if err != nil {
		return nil, err
	}

	resp, err := c.client.Chat.Completions.New(ctx, *req)

	if err != nil {
		return nil, convertError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, provider.NewError("openai", 0, errors.New("empty completion response"))
	}

	choice := resp.Choices[0]

	if choice.Message.Refusal != "" {
		return nil, provider.NewError("openai", 0, errors.New("model refused: "+choice.Message.Refusal))
	}

	result := &provider.Completion{
		ID:    resp.ID,
		Model: resp.Model,

		Data: []byte(choice.Message.Content),
	}

	if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
		result.Usage = &provider.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		}
	}

	return result, nil
}

func (c *Completer) convertCompletionRequest(document string, options *provider.CompleteOptions) (*openai.ChatCompletionNewParams, error) {
	model := c.model

	if options.Model != "" {
		model = options.Model
	}

	// Azure routes by deployment name, not model identifier.
	if c.deployment != "" {
		model = c.deployment
	}

	var messages []openai.ChatCompletionMessageParamUnion

	if options.Instructions != "" {
		messages = append(messages, openai.SystemMessage(options.Instructions))
	}

	messages = append(messages, openai.UserMessage(document))

	req := &openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),

		Messages: messages,
	}

	if options.MaxTokens != nil {
		req.MaxCompletionTokens = openai.Int(int64(*options.MaxTokens))
	}

	if options.Temperature != nil {
		req.Temperature = openai.Float(float64(*options.Temperature))
	}

	if options.Schema != nil {
		schema := shared.ResponseFormatJSONSchemaJSONSchemaParam{
			Name: options.Schema.Name,

			Schema: strictSchema(options.Schema.Schema),
			Strict: openai.Bool(true),
		}

		if options.Schema.Description != "" {
			schema.Description = openai.String(options.Schema.Description)
		}

		req.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: schema,
			},
		}
	}

	return req, nil
}
