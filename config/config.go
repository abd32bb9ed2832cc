package config

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"gopkg.in/yaml.v3"
)

// Config resolves provider clients from the environment and an optional
// configuration file. It holds no mutable state after construction and is
// safe for concurrent use.
type Config struct {
	env func(string) string

	client *http.Client

	file *configFile
}

type Option func(*Config)

// WithEnvironment overrides environment lookup, mainly for tests.
func WithEnvironment(env func(string) string) Option {
	return func(c *Config) {
		c.env = env
	}
}

func WithClient(client *http.Client) Option {
	return func(c *Config) {
		c.client = client
	}
}

func New(options ...Option) *Config {
	c := &Config{
		env: os.Getenv,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// LoadEnv loads variables from a .env file into the process environment if
// one exists. A missing file is not an error.
func LoadEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}

	return godotenv.Load()
}

type configFile struct {
	Providers map[string]providerConfig `yaml:"providers"`
}

type providerConfig struct {
	URL string `yaml:"url"`

	Model string `yaml:"model"`

	// TokenEnv names the environment variable holding the credential,
	// overriding the provider's default variable.
	TokenEnv string `yaml:"token_env"`

	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"api_version"`
}

// LoadFile reads provider overrides from a YAML configuration file.
func LoadFile(path string, options ...Option) (*Config, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	var file configFile

	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	c := New(options...)
	c.file = &file

	return c, nil
}

func (c *Config) providerConfig(key Provider) providerConfig {
	if c.file == nil {
		return providerConfig{}
	}

	return c.file.Providers[string(key)]
}

func (c *Config) token(key Provider, defaultEnv ...string) (string, string) {
	vars := defaultEnv

	if override := c.providerConfig(key).TokenEnv; override != "" {
		vars = []string{override}
	}

	for _, name := range vars {
		if val := c.env(name); val != "" {
			return val, name
		}
	}

	if len(vars) > 0 {
		return "", vars[0]
	}

	return "", ""
}
