package extract

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/exstruct/exstruct/config"
	"github.com/exstruct/exstruct/pkg/provider"
	"github.com/exstruct/exstruct/pkg/resolver"
	"github.com/exstruct/exstruct/pkg/schema"

	"github.com/google/jsonschema-go/jsonschema"
	"golang.org/x/time/rate"
)

// Session binds one compiled record type to one provider client and
// executes extraction calls against it. The record type is compiled exactly
// once per session (compile once, extract many); after construction the
// session holds no mutable state and may serve any number of documents,
// concurrently if desired.
type Session struct {
	requirements *schema.Requirements
	recordType   *schema.RecordType

	completer provider.Completer
	target    *provider.Schema

	model string

	attempts    uint
	concurrency int
	callTimeout time.Duration

	limiter *rate.Limiter

	logger *slog.Logger
}

type sessionOptions struct {
	description  string
	requirements *schema.Requirements

	provider config.Provider
	model    string

	config    *config.Config
	completer provider.Completer

	attempts    uint
	concurrency int
	callTimeout time.Duration

	requestsPerMinute int

	logger *slog.Logger
}

type Option func(*sessionOptions)

// WithDescription resolves requirements from an informal description of
// what to extract, at the cost of one extra provider call.
func WithDescription(description string) Option {
	return func(o *sessionOptions) {
		o.description = description
	}
}

// WithRequirements supplies pre-built requirements directly, skipping the
// resolution round-trip and its cost.
func WithRequirements(requirements *schema.Requirements) Option {
	return func(o *sessionOptions) {
		o.requirements = requirements
	}
}

func WithProvider(key config.Provider) Option {
	return func(o *sessionOptions) {
		o.provider = key
	}
}

func WithModel(model string) Option {
	return func(o *sessionOptions) {
		o.model = model
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(o *sessionOptions) {
		o.config = cfg
	}
}

// WithCompleter injects a ready client, bypassing provider resolution.
func WithCompleter(completer provider.Completer) Option {
	return func(o *sessionOptions) {
		o.completer = completer
	}
}

func WithMaxAttempts(attempts uint) Option {
	return func(o *sessionOptions) {
		o.attempts = attempts
	}
}

// WithConcurrency bounds how many documents a batch processes in parallel.
// Values below two keep batches sequential.
func WithConcurrency(n int) Option {
	return func(o *sessionOptions) {
		o.concurrency = n
	}
}

// WithCallTimeout bounds each provider call with a deadline.
func WithCallTimeout(d time.Duration) Option {
	return func(o *sessionOptions) {
		o.callTimeout = d
	}
}

func WithRequestsPerMinute(rpm int) Option {
	return func(o *sessionOptions) {
		o.requestsPerMinute = rpm
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *sessionOptions) {
		o.logger = logger
	}
}

// New builds a ready session. Construction walks the full setup in order:
// requirements are resolved (or taken as supplied), the record type is
// compiled once, and the provider client is bound. Every failure along the
// way surfaces before any document is processed.
func New(ctx context.Context, options ...Option) (*Session, error) {
	o := &sessionOptions{
		attempts: 3,

		logger: slog.Default(),
	}

	for _, option := range options {
		option(o)
	}

	if o.description == "" && o.requirements == nil {
		return nil, errors.New("either a description or requirements must be supplied")
	}

	completer := o.completer

	if completer == nil {
		cfg := o.config

		if cfg == nil {
			cfg = config.New()
		}

		var err error

		if completer, err = cfg.Completer(o.provider, o.model); err != nil {
			return nil, err
		}
	}

	requirements := o.requirements

	if requirements == nil {
		var err error

		if requirements, err = resolver.New(completer).Resolve(ctx, o.description); err != nil {
			return nil, err
		}
	}

	o.logger.Debug("requirements resolved", "use_case", requirements.UseCase(), "fields", len(requirements.Fields()))

	recordType := schema.Compile(requirements)

	schemaMap, err := recordType.JSONSchemaMap()

	if err != nil {
		return nil, err
	}

	o.logger.Debug("record type compiled", "name", recordType.Name())

	s := &Session{
		requirements: requirements,
		recordType:   recordType,

		completer: completer,

		target: &provider.Schema{
			Name:        recordType.Name(),
			Description: "Structured extraction of " + requirements.UseCase(),

			Schema: schemaMap,
		},

		model: o.model,

		attempts:    o.attempts,
		concurrency: o.concurrency,
		callTimeout: o.callTimeout,

		logger: o.logger,
	}

	if o.requestsPerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(o.requestsPerMinute)), 1)
	}

	s.logger.Debug("session ready", "record_type", recordType.Name())

	return s, nil
}

// Requirements returns the requirements this session extracts against.
func (s *Session) Requirements() *schema.Requirements {
	return s.requirements
}

// FieldNames returns the names of the fields that will be extracted, in
// order.
func (s *Session) FieldNames() []string {
	return s.recordType.FieldNames()
}

// RecordType returns the compiled record type bound to this session.
func (s *Session) RecordType() *schema.RecordType {
	return s.recordType
}

// JSONSchema exports the bound record type as a tool-agnostic JSON Schema
// document.
func (s *Session) JSONSchema() *jsonschema.Schema {
	return s.recordType.JSONSchema()
}
