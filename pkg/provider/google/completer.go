package google

import (
	"context"
	"errors"

	"github.com/exstruct/exstruct/pkg/provider"

	"google.golang.org/genai"
)

var _ provider.Completer = (*Completer)(nil)

type Completer struct {
	*Config
	client *genai.Client
}

func NewCompleter(model string, options ...Option) (*Completer, error) {
	cfg := &Config{
		model: model,
	}

	for _, option := range options {
		option(cfg)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.token,
		Backend: genai.BackendGeminiAPI,

		HTTPClient: cfg.client,
	})

	if err != nil {
		return nil, err
	}

	return &Completer{
		Config: cfg,
		client: client,
	}, nil
}

func (c *Completer) Complete(ctx context.Context, document string, options *provider.CompleteOptions) (*provider.Completion, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	model := c.model

	if options.Model != "" {
		model = options.Model
	}

	config := &genai.GenerateContentConfig{}

	if options.Instructions != "" {
		config.SystemInstruction = genai.NewContentFromText(options.Instructions, genai.RoleUser)
	}

	if options.MaxTokens != nil {
		config.MaxOutputTokens = int32(*options.MaxTokens)
	}

	if options.Temperature != nil {
		config.Temperature = genai.Ptr(*options.Temperature)
	}

	if options.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseJsonSchema = options.Schema.Schema
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(document), config)

	if err != nil {
		return nil, convertError(err)
	}

	text := resp.Text()

	if text == "" {
		return nil, provider.NewError("google", 0, errors.New("empty completion response"))
	}

	result := &provider.Completion{
		Model: model,

		Data: []byte(text),
	}

	if resp.UsageMetadata != nil {
		result.Usage = &provider.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	return result, nil
}

func convertError(err error) error {
	var apierr genai.APIError

	if errors.As(err, &apierr) {
		return provider.NewError("google", apierr.Code, err)
	}

	return provider.NewError("google", 0, err)
}
