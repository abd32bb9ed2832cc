package config

import (
	"fmt"

	"github.com/exstruct/exstruct/pkg/otel"
	"github.com/exstruct/exstruct/pkg/provider"
	"github.com/exstruct/exstruct/pkg/provider/anthropic"
	"github.com/exstruct/exstruct/pkg/provider/google"
	"github.com/exstruct/exstruct/pkg/provider/openai"
)

// Provider identifies a model backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
	ProviderAzure     Provider = "azure"
)

// Default is the backend used when none is selected.
const Default = ProviderOpenAI

// Descriptor describes one backend: its key, its default model and a
// factory constructing a ready client. The descriptor table is static and
// read-only; selection happens through an explicit factory, not implicit
// registration.
type Descriptor struct {
	Key Provider

	DefaultModel string

	New func(c *Config, model string) (provider.Completer, error)
}

var descriptors = map[Provider]Descriptor{
	ProviderOpenAI: {
		Key:          ProviderOpenAI,
		DefaultModel: "gpt-4o",
		New:          newOpenAI,
	},

	ProviderAnthropic: {
		Key:          ProviderAnthropic,
		DefaultModel: "claude-sonnet-4-5",
		New:          newAnthropic,
	},

	ProviderGoogle: {
		Key:          ProviderGoogle,
		DefaultModel: "gemini-2.5-flash",
		New:          newGoogle,
	},

	ProviderAzure: {
		Key:          ProviderAzure,
		DefaultModel: "gpt-4o",
		New:          newAzure,
	},
}

// Describe returns the descriptor for a backend key.
func Describe(key Provider) (Descriptor, error) {
	if key == "" {
		key = Default
	}

	descriptor, ok := descriptors[key]

	if !ok {
		return Descriptor{}, fmt.Errorf("unknown provider %q", key)
	}

	return descriptor, nil
}

// Completer resolves a backend into a ready structured-completion client.
// Missing credentials fail here, before any network call. The returned
// client is wrapped for tracing.
func (c *Config) Completer(key Provider, model string) (provider.Completer, error) {
	descriptor, err := Describe(key)

	if err != nil {
		return nil, err
	}

	if model == "" {
		model = c.providerConfig(descriptor.Key).Model
	}

	if model == "" {
		model = descriptor.DefaultModel
	}

	completer, err := descriptor.New(c, model)

	if err != nil {
		return nil, err
	}

	return otel.NewCompleter(string(descriptor.Key), model, completer), nil
}

func newOpenAI(c *Config, model string) (provider.Completer, error) {
	token, envName := c.token(ProviderOpenAI, "OPENAI_API_KEY")

	if token == "" {
		return nil, &provider.ConfigurationError{
			Provider: "openai",
			Message:  "missing API key, set " + envName,
		}
	}

	options := []openai.Option{
		openai.WithToken(token),
	}

	if c.client != nil {
		options = append(options, openai.WithClient(c.client))
	}

	return openai.NewCompleter(c.providerConfig(ProviderOpenAI).URL, model, options...)
}

func newAnthropic(c *Config, model string) (provider.Completer, error) {
	token, envName := c.token(ProviderAnthropic, "ANTHROPIC_API_KEY")

	if token == "" {
		return nil, &provider.ConfigurationError{
			Provider: "anthropic",
			Message:  "missing API key, set " + envName,
		}
	}

	options := []anthropic.Option{
		anthropic.WithToken(token),
	}

	if c.client != nil {
		options = append(options, anthropic.WithClient(c.client))
	}

	return anthropic.NewCompleter(c.providerConfig(ProviderAnthropic).URL, model, options...)
}

func newGoogle(c *Config, model string) (provider.Completer, error) {
	token, envName := c.token(ProviderGoogle, "GOOGLE_API_KEY", "GEMINI_API_KEY")

	if token == "" {
		return nil, &provider.ConfigurationError{
			Provider: "google",
			Message:  "missing API key, set " + envName,
		}
	}

	options := []google.Option{
		google.WithToken(token),
	}

	if c.client != nil {
		options = append(options, google.WithClient(c.client))
	}

	return google.NewCompleter(model, options...)
}

func newAzure(c *Config, model string) (provider.Completer, error) {
	token, envName := c.token(ProviderAzure, "AZURE_OPENAI_API_KEY")

	if token == "" {
		return nil, &provider.ConfigurationError{
			Provider: "azure",
			Message:  "missing API key, set " + envName,
		}
	}

	cfg := c.providerConfig(ProviderAzure)

	endpoint := cfg.URL

	if endpoint == "" {
		endpoint = c.env("AZURE_OPENAI_ENDPOINT")
	}

	if endpoint == "" {
		return nil, &provider.ConfigurationError{
			Provider: "azure",
			Message:  "missing endpoint, set AZURE_OPENAI_ENDPOINT",
		}
	}

	deployment := cfg.Deployment

	if deployment == "" {
		deployment = c.env("AZURE_OPENAI_DEPLOYMENT")
	}

	if deployment == "" {
		return nil, &provider.ConfigurationError{
			Provider: "azure",
			Message:  "missing deployment name, set AZURE_OPENAI_DEPLOYMENT",
		}
	}

	apiVersion := cfg.APIVersion

	if apiVersion == "" {
		apiVersion = c.env("AZURE_OPENAI_API_VERSION")
	}

	if apiVersion == "" {
		apiVersion = "2024-10-21"
	}

	options := []openai.Option{
		openai.WithToken(token),
		openai.WithDeployment(deployment, apiVersion),
	}

	if c.client != nil {
		options = append(options, openai.WithClient(c.client))
	}

	return openai.NewCompleter(endpoint, model, options...)
}
