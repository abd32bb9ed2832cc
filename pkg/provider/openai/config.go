package openai

import (
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
)

type Config struct {
	url string

	token string
	model string

	// Gateway routing. When deployment is set, requests go through an Azure
	// OpenAI deployment instead of the direct API.
	deployment string
	apiVersion string

	client *http.Client
}

type Option func(*Config)

func WithClient(client *http.Client) Option {
	return func(c *Config) {
		c.client = client
	}
}

func WithToken(token string) Option {
	return func(c *Config) {
		c.token = token
	}
}

func WithDeployment(deployment, apiVersion string) Option {
	return func(c *Config) {
		c.deployment = deployment
		c.apiVersion = apiVersion
	}
}

func (cfg *Config) Options() []option.RequestOption {
	var options []option.RequestOption

	if cfg.deployment != "" {
		options = append(options,
			azure.WithEndpoint(cfg.url, cfg.apiVersion),
			azure.WithAPIKey(cfg.token),
		)

		if cfg.client != nil {
			options = append(options, option.WithHTTPClient(cfg.client))
		}

		return options
	}

	if cfg.url != "" {
		url := strings.TrimRight(cfg.url, "/") + "/"
		options = append(options, option.WithBaseURL(url))
	}

	if cfg.token != "" {
		options = append(options, option.WithAPIKey(cfg.token))
	}

	if cfg.client != nil {
		options = append(options, option.WithHTTPClient(cfg.client))
	}

	return options
}
